package parser

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

var weekdays = []struct {
	name string
	day  time.Weekday
}{
	{"sunday", time.Sunday},
	{"monday", time.Monday},
	{"tuesday", time.Tuesday},
	{"wednesday", time.Wednesday},
	{"thursday", time.Thursday},
	{"friday", time.Friday},
	{"saturday", time.Saturday},
}

// parseNumber reads a run of decimal digits.
func parseNumber(c Cursor) (Cursor, int, error) {
	c = c.TrimStart()
	end := strings.IndexFunc(c.Text, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(c.Text)
	}
	if end == 0 {
		return c, 0, c.Expected("digit")
	}
	n, err := strconv.Atoi(c.Text[:end])
	if err != nil {
		return c, 0, c.ExpectedWord("a number that fits in an int")
	}
	return c.Advance(end), n, nil
}

// parseWeekday matches a full English day name. On failure the span runs to
// the end of the line.
func parseWeekday(c Cursor) (Cursor, time.Weekday, error) {
	for _, wd := range weekdays {
		if c.StartsWithNoCase(wd.name) {
			return c.Advance(len(wd.name)), wd.day, nil
		}
	}
	return c, 0, c.ExpectedRest("a weekday")
}

func parseName(c Cursor) (Cursor, string, error) {
	c = c.TrimStart()
	if r, ok := c.Peek(); ok && r == '\'' {
		return c.ReadBetween('\'', '\'')
	}
	return c.ReadBetween('"', '"')
}

func parseURL(c Cursor) (Cursor, string, error) {
	return c.TrimStart().ReadBetween('<', '>')
}

// ParseCommand splits input into arguments on whitespace. Text wrapped in
// single or double quotes is kept together with the quotes removed.
func ParseCommand(input string) ([]string, error) {
	_, args, err := parseCommand(NewCursor(1, input))
	return args, err
}

func parseCommand(c Cursor) (Cursor, []string, error) {
	var args []string
	c = c.Trim()
	for !c.Empty() {
		rest, arg, err := parseCommandPart(c)
		if err != nil {
			return c, nil, err
		}
		args = append(args, arg)
		c = rest.TrimStart()
	}
	return c, args, nil
}

func parseCommandPart(c Cursor) (Cursor, string, error) {
	r, _ := c.Peek()
	switch r {
	case '\'', '"':
		return c.ReadBetween(r, r)
	}
	end := strings.IndexFunc(c.Text, unicode.IsSpace)
	if end < 0 {
		end = len(c.Text)
	}
	return c.Advance(end), c.Text[:end], nil
}
