package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestHighlight(t *testing.T) {
	input := `"Eth's Skin" <http://www.eths-skin.com/rss> @ on friday
"Boozle" <http://boozle.sgoetter.com/feed/> @ on wendsday
`
	_, err := ParseConfig(input)

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}

	want := strings.Join([]string{
		`   2 | "Boozle" <http://boozle.sgoetter.com/feed/> @ on wendsday`,
		`     | ` + strings.Repeat(" ", 49) + `^^^^^^^^`,
		`a weekday expected at line 2, columns 49-56`,
	}, "\n")
	if got := Highlight(input, perr); got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestHighlight_WideCharacters(t *testing.T) {
	input := `"漫画" <http://x> @ on noday`
	_, err := ParseConfig(input)

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}

	lines := strings.Split(Highlight(input, perr), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %d", len(lines))
	}
	// the two wide characters take two cells each
	caret := strings.Index(lines[1], "^") - len("     | ")
	if caret != perr.Span.Start+2 {
		t.Errorf("Expected caret at cell %d, got %d", perr.Span.Start+2, caret)
	}
	if n := strings.Count(lines[1], "^"); n != len("noday") {
		t.Errorf("Expected %d carets, got %d", len("noday"), n)
	}
}

func TestHighlight_WithoutSpan(t *testing.T) {
	input := "<http://x>\nnonsense\n"
	_, err := ParseEvents(input)

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}

	got := Highlight(input, perr)
	if !strings.HasPrefix(got, "   2 | nonsense\n") {
		t.Errorf("Expected offending line first, got:\n%s", got)
	}
	if strings.Contains(got, "^") {
		t.Errorf("Expected no carets without a span, got:\n%s", got)
	}
	if !strings.HasSuffix(got, perr.Error()) {
		t.Errorf("Expected error message last, got:\n%s", got)
	}
}

func TestHighlight_PointAtEndOfLine(t *testing.T) {
	input := `"Name" <http://x/rss`
	_, err := ParseConfig(input)

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}

	lines := strings.Split(Highlight(input, perr), "\n")
	want := "     | " + strings.Repeat(" ", len(input)) + "^"
	if lines[1] != want {
		t.Errorf("Expected '%s', got '%s'", want, lines[1])
	}
}
