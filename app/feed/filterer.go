package feed

import (
	"log/slog"
	"regexp"

	"github.com/lysyi3m/comic-watch/app/parser"
)

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

type compiledFilter struct {
	filter parser.Filter
	re     *regexp.Regexp
}

// Run applies the keep and ignore clauses of policies. For each target
// (title or url) that has keep clauses, an item must match at least one of
// them. An item matching any ignore clause is dropped.
func (f *Filterer) Run(items []Item, policies parser.Policies) []Item {
	filters := f.compile(policies)
	if len(filters) == 0 {
		return items
	}

	kept := make([]Item, 0, len(items))
	for _, item := range items {
		if f.accepts(item, filters) {
			kept = append(kept, item)
		}
	}
	return kept
}

func (f *Filterer) accepts(item Item, filters []compiledFilter) bool {
	keepTitle, keepURL := false, false
	matchedTitle, matchedURL := false, false

	for _, cf := range filters {
		value := item.Link
		if cf.filter.Type.MatchesTitle() {
			value = item.Title
		}
		matched := cf.re.MatchString(value)

		switch cf.filter.Type {
		case parser.IgnoreTitle, parser.IgnoreURL:
			if matched {
				return false
			}
		case parser.KeepTitle:
			keepTitle = true
			matchedTitle = matchedTitle || matched
		case parser.KeepURL:
			keepURL = true
			matchedURL = matchedURL || matched
		}
	}

	if keepTitle && !matchedTitle {
		return false
	}
	if keepURL && !matchedURL {
		return false
	}
	return true
}

func (f *Filterer) compile(policies parser.Policies) []compiledFilter {
	var filters []compiledFilter
	for spec := range policies {
		filter, ok := spec.(parser.Filter)
		if !ok {
			continue
		}
		re, err := regexp.Compile(filter.Pattern)
		if err != nil {
			// Policies come from the parser, which already compiled every pattern.
			slog.Warn("Skipping invalid filter pattern", "filter", filter.String(), "error", err)
			continue
		}
		filters = append(filters, compiledFilter{filter: filter, re: re})
	}
	return filters
}
