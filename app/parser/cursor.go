package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Cursor is an immutable view of the unconsumed part of one line. Every
// recognizer takes a Cursor by value and returns a new one for what remains.
type Cursor struct {
	Row  int    // 1-based line number
	Col  int    // characters consumed from the start of the line
	Text string // remaining text
}

func NewCursor(row int, text string) Cursor {
	return Cursor{Row: row, Text: text}
}

func (c Cursor) Empty() bool {
	return c.Text == ""
}

func (c Cursor) TrimStart() Cursor {
	rest := strings.TrimLeftFunc(c.Text, unicode.IsSpace)
	return c.Advance(len(c.Text) - len(rest))
}

func (c Cursor) Trim() Cursor {
	c = c.TrimStart()
	c.Text = strings.TrimRightFunc(c.Text, unicode.IsSpace)
	return c
}

// Peek returns the next character without consuming it.
func (c Cursor) Peek() (rune, bool) {
	if c.Text == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(c.Text)
	return r, true
}

// Advance consumes n bytes. n must fall on a character boundary and must not
// exceed len(c.Text).
func (c Cursor) Advance(n int) Cursor {
	return Cursor{
		Row:  c.Row,
		Col:  c.Col + utf8.RuneCountInString(c.Text[:n]),
		Text: c.Text[n:],
	}
}

func (c Cursor) StartsWith(lit string) bool {
	return strings.HasPrefix(c.Text, lit)
}

// StartsWithNoCase compares with ASCII case folding only.
func (c Cursor) StartsWithNoCase(lit string) bool {
	if len(c.Text) < len(lit) {
		return false
	}
	for i := 0; i < len(lit); i++ {
		if lowerASCII(c.Text[i]) != lowerASCII(lit[i]) {
			return false
		}
	}
	return true
}

func (c Cursor) Token(lit string) (Cursor, error) {
	if !c.StartsWith(lit) {
		return c, c.expectedLiteral(lit)
	}
	return c.Advance(len(lit)), nil
}

func (c Cursor) TokenNoCase(lit string) (Cursor, error) {
	if !c.StartsWithNoCase(lit) {
		return c, c.expectedLiteral(lit)
	}
	return c.Advance(len(lit)), nil
}

// Space consumes one run of whitespace, which must not be empty.
func (c Cursor) Space() (Cursor, error) {
	r, ok := c.Peek()
	if !ok || !unicode.IsSpace(r) {
		return c, c.Expected("whitespace")
	}
	return c.TrimStart(), nil
}

// SpaceOrEnd succeeds at the end of the line or before whitespace, so a
// token is never glued to trailing characters it did not consume.
func (c Cursor) SpaceOrEnd() (Cursor, error) {
	if c.Empty() {
		return c, nil
	}
	return c.Space()
}

// ReadBetween consumes open, then everything up to and including the next
// close, and returns the text in between.
func (c Cursor) ReadBetween(open, close rune) (Cursor, string, error) {
	if r, ok := c.Peek(); !ok || r != open {
		return c, "", expectedChar(open, c.Row, pointSpan(c.Col))
	}
	inner := c.Advance(utf8.RuneLen(open))
	end := strings.IndexRune(inner.Text, close)
	if end < 0 {
		eol := inner.Col + utf8.RuneCountInString(inner.Text)
		return c, "", expectedChar(close, c.Row, pointSpan(eol))
	}
	value := inner.Text[:end]
	return inner.Advance(end + utf8.RuneLen(close)), value, nil
}

// FirstTokenOfNoCase tries candidates in order and consumes the first one
// that matches. The matched candidate is returned as given, not as written.
func (c Cursor) FirstTokenOfNoCase(candidates ...string) (Cursor, string, error) {
	for _, cand := range candidates {
		if c.StartsWithNoCase(cand) {
			return c.Advance(len(cand)), cand, nil
		}
	}
	quoted := make([]string, len(candidates))
	for i, cand := range candidates {
		quoted[i] = `"` + cand + `"`
	}
	return c, "", c.Expected("one of " + strings.Join(quoted, ", "))
}

// Expected reports msg at the cursor position.
func (c Cursor) Expected(msg string) error {
	return expected(msg, c.Row, pointSpan(c.Col))
}

// ExpectedRest reports msg with a span covering all remaining text.
func (c Cursor) ExpectedRest(msg string) error {
	return expected(msg, c.Row, &Span{Start: c.Col, End: c.Col + utf8.RuneCountInString(c.Text)})
}

// ExpectedWord reports msg with a span covering the next whitespace-delimited word.
func (c Cursor) ExpectedWord(msg string) error {
	word := c.Text
	if i := strings.IndexFunc(word, unicode.IsSpace); i >= 0 {
		word = word[:i]
	}
	return expected(msg, c.Row, &Span{Start: c.Col, End: c.Col + utf8.RuneCountInString(word)})
}

func (c Cursor) expectedLiteral(lit string) error {
	if utf8.RuneCountInString(lit) == 1 {
		r, _ := utf8.DecodeRuneInString(lit)
		return expectedChar(r, c.Row, pointSpan(c.Col))
	}
	return c.Expected(`"` + lit + `"`)
}

func lowerASCII(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
