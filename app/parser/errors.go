package parser

import (
	"fmt"
	"strconv"
)

// Span is a character range within one row. End is exclusive; a span with
// Start == End points between two characters.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string {
	if s.End <= s.Start+1 {
		return "column " + strconv.Itoa(s.Start)
	}
	return fmt.Sprintf("columns %d-%d", s.Start, s.End-1)
}

// ParseError describes the first construct that failed to match.
// Exactly one of Char and Msg is set.
type ParseError struct {
	Char rune   // a specific character was expected
	Msg  string // a described construct was expected
	Row  int
	Span *Span // nil when no precise location is known
}

func expectedChar(char rune, row int, span *Span) *ParseError {
	return &ParseError{Char: char, Row: row, Span: span}
}

func expected(msg string, row int, span *Span) *ParseError {
	return &ParseError{Msg: msg, Row: row, Span: span}
}

func pointSpan(col int) *Span {
	return &Span{Start: col, End: col}
}

// What names the thing that was expected.
func (e *ParseError) What() string {
	if e.Msg != "" {
		return e.Msg
	}
	return strconv.QuoteRune(e.Char)
}

func (e *ParseError) Error() string {
	if e.Span == nil {
		return fmt.Sprintf("%s expected at line %d", e.What(), e.Row)
	}
	return fmt.Sprintf("%s expected at line %d, %s", e.What(), e.Row, e.Span)
}
