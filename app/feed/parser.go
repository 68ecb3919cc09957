package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

// Run parses RSS, Atom or JSON feed data. Items come back oldest first, the
// order in which they are appended to an event log.
func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       strings.TrimSpace(feed.Title),
		Link:        feed.Link,
		Description: feed.Description,
		UpdatedAt:   cmp.Or(feed.UpdatedParsed, feed.PublishedParsed),
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		items = append(items, p.normalizeItem(item))
	}

	return metadata, oldestFirst(items), nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:  cmp.Or(item.GUID, item.Link),
		Title: strings.TrimSpace(item.Title),
		Link:  strings.TrimSpace(item.Link),
	}

	if published := cmp.Or(item.PublishedParsed, item.UpdatedParsed); published != nil {
		normalized.PublishedAt = published.UTC()
	}

	return normalized
}

// oldestFirst sorts by date when every item has one. Otherwise document
// order is assumed to be newest first, as feeds are usually written.
func oldestFirst(items []Item) []Item {
	dated := !slices.ContainsFunc(items, func(item Item) bool {
		return item.PublishedAt.IsZero()
	})
	if dated {
		slices.SortStableFunc(items, func(a, b Item) int {
			return a.PublishedAt.Compare(b.PublishedAt)
		})
		return items
	}
	slices.Reverse(items)
	return items
}
