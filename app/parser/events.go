package parser

import (
	"strings"
	"time"
)

const eventForms = `a feed event. One of:
 - "<url>"
 - "read DATE"`

// ParseEvents reads a whole event log.
func ParseEvents(input string) ([]FeedEvent, error) {
	var (
		events []FeedEvent
		row    int
	)
	for line := range strings.Lines(input) {
		row++
		c := NewCursor(row, line).Trim()
		if c.Empty() {
			continue
		}

		event, err := parseEvent(c)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func parseEvent(c Cursor) (FeedEvent, error) {
	switch {
	case c.StartsWithNoCase("read"):
		c, err := c.TokenNoCase("read")
		if err != nil {
			return nil, err
		}
		if c, err = c.Space(); err != nil {
			return nil, err
		}
		at, err := time.Parse(time.RFC3339Nano, c.Text)
		if err != nil {
			return nil, c.ExpectedRest("a valid date")
		}
		return Read{At: at}, nil
	case c.StartsWith("<"):
		c, url, err := c.ReadBetween('<', '>')
		if err != nil {
			return nil, err
		}
		if !c.Trim().Empty() {
			return nil, c.TrimStart().ExpectedRest("the end of the line")
		}
		return ComicURL{URL: url}, nil
	default:
		return nil, expected(eventForms, c.Row, nil)
	}
}
