package parser

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"
)

// Highlight renders the line of input that err points at, with carets under
// its span:
//
//	   2 | "Boozle" <http://boozle.sgoetter.com/feed/> @ on wendsday
//	     |                                                  ^^^^^^^^
//	a weekday expected at line 2, columns 49-56
func Highlight(input string, err *ParseError) string {
	var b strings.Builder

	line, ok := lineAt(input, err.Row)
	if ok {
		fmt.Fprintf(&b, "%4d | %s\n", err.Row, line)
		if err.Span != nil {
			b.WriteString("     | ")
			b.WriteString(strings.Repeat(" ", displayWidth(line, 0, err.Span.Start)))
			carets := displayWidth(line, err.Span.Start, err.Span.End)
			b.WriteString(strings.Repeat("^", max(carets, 1)))
			b.WriteString("\n")
		}
	}
	b.WriteString(err.Error())
	return b.String()
}

func lineAt(input string, row int) (string, bool) {
	n := 0
	for line := range strings.Lines(input) {
		n++
		if n == row {
			return strings.TrimRight(line, "\r\n"), true
		}
	}
	return "", false
}

// displayWidth is the number of terminal cells used by characters
// [from, to) of line. Characters past the end of the line count as one cell.
func displayWidth(line string, from, to int) int {
	cells, i := 0, 0
	for _, r := range line {
		if i >= to {
			return cells
		}
		if i >= from {
			cells += runeWidth(r)
		}
		i++
	}
	if to > i {
		cells += to - max(i, from)
	}
	return cells
}

func runeWidth(r rune) int {
	if r == '\t' {
		return 1
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}
