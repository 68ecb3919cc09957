package feed

import (
	"testing"

	"github.com/lysyi3m/comic-watch/app/parser"
)

func titles(items []Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestFilterer_NoFilters(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Page 1", Link: "https://example.com/1"},
		{Title: "Page 2", Link: "https://example.com/2"},
	}

	result := filterer.Run(items, parser.NewPolicies(parser.On{}, parser.OpenAll{}))

	if len(result) != 2 {
		t.Errorf("Expected 2 items, got %d", len(result))
	}
}

func TestFilterer_KeepTitle(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Chapter 3 Page 10", Link: "https://example.com/a"},
		{Title: "Announcement: hiatus", Link: "https://example.com/b"},
		{Title: "Chapter 3 Page 11", Link: "https://example.com/c"},
	}

	policies := parser.NewPolicies(parser.Filter{Type: parser.KeepTitle, Pattern: `^Chapter \d+`})
	result := filterer.Run(items, policies)

	if len(result) != 2 {
		t.Fatalf("Expected 2 items, got %d: %v", len(result), titles(result))
	}
	if result[0].Title != "Chapter 3 Page 10" || result[1].Title != "Chapter 3 Page 11" {
		t.Errorf("Expected chapter pages in order, got %v", titles(result))
	}
}

func TestFilterer_KeepAnyOfSeveral(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "comic", Link: "https://example.com/comic/1"},
		{Title: "bonus", Link: "https://example.com/bonus/1"},
		{Title: "blog", Link: "https://example.com/blog/1"},
	}

	policies := parser.NewPolicies(
		parser.Filter{Type: parser.KeepURL, Pattern: "/comic/"},
		parser.Filter{Type: parser.KeepURL, Pattern: "/bonus/"},
	)
	result := filterer.Run(items, policies)

	if len(result) != 2 {
		t.Fatalf("Expected 2 items, got %d: %v", len(result), titles(result))
	}
	if result[0].Title != "comic" || result[1].Title != "bonus" {
		t.Errorf("Expected comic and bonus, got %v", titles(result))
	}
}

func TestFilterer_IgnoreURL(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Page 1", Link: "https://example.com/comic/1"},
		{Title: "Shop", Link: "https://example.com/shop/new-prints"},
	}

	policies := parser.NewPolicies(parser.Filter{Type: parser.IgnoreURL, Pattern: "/shop/"})
	result := filterer.Run(items, policies)

	if len(result) != 1 || result[0].Title != "Page 1" {
		t.Errorf("Expected only 'Page 1', got %v", titles(result))
	}
}

func TestFilterer_IgnoreWinsOverKeep(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Page 1", Link: "https://example.com/1"},
		{Title: "Page 2 (rerun)", Link: "https://example.com/2"},
	}

	policies := parser.NewPolicies(
		parser.Filter{Type: parser.KeepTitle, Pattern: "^Page"},
		parser.Filter{Type: parser.IgnoreTitle, Pattern: `(?i)rerun`},
	)
	result := filterer.Run(items, policies)

	if len(result) != 1 || result[0].Title != "Page 1" {
		t.Errorf("Expected only 'Page 1', got %v", titles(result))
	}
}

func TestFilterer_KeepTargetsAreIndependent(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{Title: "Page", Link: "https://example.com/comic/1"},
		{Title: "Page", Link: "https://example.com/news/1"},
		{Title: "News", Link: "https://example.com/comic/2"},
	}

	policies := parser.NewPolicies(
		parser.Filter{Type: parser.KeepTitle, Pattern: "Page"},
		parser.Filter{Type: parser.KeepURL, Pattern: "/comic/"},
	)
	result := filterer.Run(items, policies)

	if len(result) != 1 || result[0].Link != "https://example.com/comic/1" {
		t.Errorf("Expected only the item matching both targets, got %v", result)
	}
}

func TestFilterer_PreservesOriginalData(t *testing.T) {
	filterer := NewFilterer()

	items := []Item{
		{GUID: "g1", Title: "Page 1", Link: "https://example.com/1"},
	}

	policies := parser.NewPolicies(parser.Filter{Type: parser.IgnoreTitle, Pattern: "nothing"})
	result := filterer.Run(items, policies)

	if len(result) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(result))
	}
	if result[0] != items[0] {
		t.Errorf("Expected item unchanged, got %+v", result[0])
	}
}
