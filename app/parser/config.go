package parser

import (
	"slices"
	"strings"
)

// directives holds the sticky "root" and "command" values while a config
// file is read top to bottom.
type directives struct {
	root    string
	command []string
}

// ParseConfig reads a whole configuration file. Feeds are returned in file
// order and carry the directives active at their line.
func ParseConfig(input string) ([]FeedInfo, error) {
	var (
		feeds []FeedInfo
		state directives
		row   int
	)
	for line := range strings.Lines(input) {
		row++
		c := NewCursor(row, line).Trim()
		if c.Empty() || c.StartsWith("#") {
			continue
		}

		var err error
		switch {
		case isDirective(c, "root"):
			state, err = state.withRoot(c)
		case isDirective(c, "command"):
			state, err = state.withCommand(c)
		default:
			var feed FeedInfo
			feed, err = parseFeedLine(c)
			if err == nil {
				feed.Root = state.root
				feed.Command = slices.Clone(state.command)
				feeds = append(feeds, feed)
			}
		}
		if err != nil {
			return nil, err
		}
	}
	return feeds, nil
}

// isDirective matches keyword followed by whitespace or the end of the line.
func isDirective(c Cursor, keyword string) bool {
	if !c.StartsWithNoCase(keyword) {
		return false
	}
	_, err := c.Advance(len(keyword)).SpaceOrEnd()
	return err == nil
}

func (d directives) withRoot(c Cursor) (directives, error) {
	c, err := c.TokenNoCase("root")
	if err != nil {
		return d, err
	}
	if c.Trim().Empty() {
		d.root = ""
		return d, nil
	}
	if c, err = c.Space(); err != nil {
		return d, err
	}
	d.root = c.Trim().Text
	return d, nil
}

func (d directives) withCommand(c Cursor) (directives, error) {
	c, err := c.TokenNoCase("command")
	if err != nil {
		return d, err
	}
	if c.Trim().Empty() {
		d.command = nil
		return d, nil
	}
	_, args, err := parseCommand(c)
	if err != nil {
		return d, err
	}
	d.command = args
	return d, nil
}

func parseFeedLine(c Cursor) (FeedInfo, error) {
	c, name, err := parseName(c)
	if err != nil {
		return FeedInfo{}, err
	}
	c, url, err := parseURL(c)
	if err != nil {
		return FeedInfo{}, err
	}
	c, policies, err := parsePolicies(c)
	if err != nil {
		return FeedInfo{}, err
	}
	if !c.Empty() {
		return FeedInfo{}, c.ExpectedRest(`a policy clause starting with "@" or the end of the line`)
	}
	return FeedInfo{Name: name, URL: url, Policies: policies}, nil
}
