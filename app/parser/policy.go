package parser

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

const policyForms = `a policy definition. One of:
 - "@ on WEEKDAY"
 - "@ every # day(s)"
 - "@ overlap # comic(s)"
 - "@ keep title|url /pattern/"
 - "@ ignore title|url /pattern/"
 - "@ open all"
 - "@ # new comic(s)"`

func parsePolicies(c Cursor) (Cursor, Policies, error) {
	policies := make(Policies)
	c = c.TrimStart()
	for c.StartsWith("@") {
		rest, spec, err := parsePolicy(c)
		if err != nil {
			return c, nil, err
		}
		policies.Add(spec)
		c = rest.TrimStart()
	}
	return c, policies, nil
}

// parsePolicy reads one "@ ..." clause. Keywords are tried in a fixed order
// because their prefixes are checked one after another.
func parsePolicy(c Cursor) (Cursor, UpdateSpec, error) {
	c, err := c.TrimStart().Token("@")
	if err != nil {
		return c, nil, err
	}
	if c, err = c.Space(); err != nil {
		return c, nil, err
	}

	switch {
	case c.StartsWithNoCase("on"):
		return parseOn(c)
	case c.StartsWithNoCase("every"):
		return parseCounted(c, "every", []string{"days", "day"}, func(n int) UpdateSpec { return Every{Days: n} })
	case c.StartsWithNoCase("overlap"):
		return parseCounted(c, "overlap", []string{"comics", "comic"}, func(n int) UpdateSpec { return Overlap{Comics: n} })
	case c.StartsWithNoCase("keep"), c.StartsWithNoCase("ignore"):
		return parseFilter(c)
	case c.StartsWithNoCase("open"):
		return parseOpenAll(c)
	case startsWithDigit(c):
		return parseNewComics(c)
	default:
		return c, nil, expected(policyForms, c.Row, &Span{Start: c.Col, End: c.Col + utf8.RuneCountInString(c.Text)})
	}
}

func parseOn(c Cursor) (Cursor, UpdateSpec, error) {
	c, err := c.TokenNoCase("on")
	if err != nil {
		return c, nil, err
	}
	if c, err = c.Space(); err != nil {
		return c, nil, err
	}
	c, day, err := parseWeekday(c)
	if err != nil {
		return c, nil, err
	}
	if c, err = c.SpaceOrEnd(); err != nil {
		return c, nil, err
	}
	return c, On{Day: day}, nil
}

// parseCounted handles "<keyword> <n> <noun>" clauses.
func parseCounted(c Cursor, keyword string, nouns []string, build func(int) UpdateSpec) (Cursor, UpdateSpec, error) {
	c, err := c.TokenNoCase(keyword)
	if err != nil {
		return c, nil, err
	}
	if c, err = c.Space(); err != nil {
		return c, nil, err
	}
	c, n, err := parseNumber(c)
	if err != nil {
		return c, nil, err
	}
	if c, err = c.Space(); err != nil {
		return c, nil, err
	}
	if c, _, err = c.FirstTokenOfNoCase(nouns...); err != nil {
		return c, nil, err
	}
	if c, err = c.SpaceOrEnd(); err != nil {
		return c, nil, err
	}
	return c, build(n), nil
}

func parseFilter(c Cursor) (Cursor, UpdateSpec, error) {
	c, action, err := c.FirstTokenOfNoCase("keep", "ignore")
	if err != nil {
		return c, nil, err
	}
	if c, err = c.Space(); err != nil {
		return c, nil, err
	}
	c, target, err := c.FirstTokenOfNoCase("url", "title")
	if err != nil {
		return c, nil, err
	}
	if c, err = c.Space(); err != nil {
		return c, nil, err
	}

	delim, ok := c.Peek()
	if !ok {
		return c, nil, c.Expected("a pattern")
	}
	start := c
	c, pattern, err := c.ReadBetween(delim, delim)
	if err != nil {
		return c, nil, err
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return c, nil, expected(fmt.Sprintf("/%s/ to be a valid pattern: %v", pattern, err),
			start.Row, &Span{Start: start.Col, End: c.Col})
	}
	if c, err = c.SpaceOrEnd(); err != nil {
		return c, nil, err
	}
	return c, Filter{Type: filterType(action, target), Pattern: pattern}, nil
}

func filterType(action, target string) FilterType {
	switch {
	case action == "keep" && target == "title":
		return KeepTitle
	case action == "keep" && target == "url":
		return KeepURL
	case action == "ignore" && target == "title":
		return IgnoreTitle
	case action == "ignore" && target == "url":
		return IgnoreURL
	}
	panic("parser: invalid filter type " + action + " " + target)
}

func parseOpenAll(c Cursor) (Cursor, UpdateSpec, error) {
	c, err := c.TokenNoCase("open")
	if err != nil {
		return c, nil, err
	}
	if c, err = c.Space(); err != nil {
		return c, nil, err
	}
	if c, err = c.TokenNoCase("all"); err != nil {
		return c, nil, err
	}
	if c, err = c.SpaceOrEnd(); err != nil {
		return c, nil, err
	}
	return c, OpenAll{}, nil
}

func parseNewComics(c Cursor) (Cursor, UpdateSpec, error) {
	c, n, err := parseNumber(c)
	if err != nil {
		return c, nil, err
	}
	if c, err = c.Space(); err != nil {
		return c, nil, err
	}
	if c, err = c.TokenNoCase("new"); err != nil {
		return c, nil, err
	}
	if c, err = c.Space(); err != nil {
		return c, nil, err
	}
	if c, _, err = c.FirstTokenOfNoCase("comics", "comic"); err != nil {
		return c, nil, err
	}
	if c, err = c.SpaceOrEnd(); err != nil {
		return c, nil, err
	}
	return c, Comics{Count: n}, nil
}

func startsWithDigit(c Cursor) bool {
	r, ok := c.Peek()
	return ok && '0' <= r && r <= '9'
}
