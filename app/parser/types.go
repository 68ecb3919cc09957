package parser

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// FeedInfo is one feed definition line of the configuration file.
type FeedInfo struct {
	Name     string
	URL      string
	Policies Policies
	Root     string   // empty when no root directive was active
	Command  []string // nil when no command directive was active
}

// UpdateSpec is a single "@ ..." clause. The concrete types are all
// comparable, so two structurally identical clauses are the same set member.
type UpdateSpec interface {
	fmt.Stringer
	updateSpec()
}

// On restricts checks to the given weekday.
type On struct {
	Day time.Weekday
}

// Every requires at least Days days between reads.
type Every struct {
	Days int
}

// Overlap re-opens that many already read comics before the first unread one.
type Overlap struct {
	Comics int
}

// Comics waits until Count new comics are available.
type Comics struct {
	Count int
}

// Filter keeps or ignores items whose title or URL matches Pattern.
type Filter struct {
	Type    FilterType
	Pattern string
}

// OpenAll opens every unread comic instead of only the first one.
type OpenAll struct{}

func (On) updateSpec()      {}
func (Every) updateSpec()   {}
func (Overlap) updateSpec() {}
func (Comics) updateSpec()  {}
func (Filter) updateSpec()  {}
func (OpenAll) updateSpec() {}

func (s On) String() string {
	return "on " + strings.ToLower(s.Day.String())
}

func (s Every) String() string {
	return fmt.Sprintf("every %d %s", s.Days, plural(s.Days, "day"))
}

func (s Overlap) String() string {
	return fmt.Sprintf("overlap %d %s", s.Comics, plural(s.Comics, "comic"))
}

func (s Comics) String() string {
	return fmt.Sprintf("%d new %s", s.Count, plural(s.Count, "comic"))
}

func (s Filter) String() string {
	return fmt.Sprintf("%s %s", s.Type, delimit(s.Pattern))
}

func (OpenAll) String() string {
	return "open all"
}

type FilterType int

const (
	KeepTitle FilterType = iota
	KeepURL
	IgnoreTitle
	IgnoreURL
)

func (t FilterType) String() string {
	switch t {
	case KeepTitle:
		return "keep title"
	case KeepURL:
		return "keep url"
	case IgnoreTitle:
		return "ignore title"
	case IgnoreURL:
		return "ignore url"
	default:
		return fmt.Sprintf("FilterType(%d)", int(t))
	}
}

// Keep reports whether matching items are kept rather than dropped.
func (t FilterType) Keep() bool {
	return t == KeepTitle || t == KeepURL
}

// MatchesTitle reports whether the filter applies to item titles.
func (t FilterType) MatchesTitle() bool {
	return t == KeepTitle || t == IgnoreTitle
}

// Policies is the unordered, deduplicating set of a feed's update specs.
type Policies map[UpdateSpec]struct{}

// NewPolicies builds a set from specs, collapsing duplicates.
func NewPolicies(specs ...UpdateSpec) Policies {
	p := make(Policies, len(specs))
	for _, spec := range specs {
		p.Add(spec)
	}
	return p
}

func (p Policies) Add(spec UpdateSpec) {
	p[spec] = struct{}{}
}

func (p Policies) Has(spec UpdateSpec) bool {
	_, ok := p[spec]
	return ok
}

// Strings renders the set as config clauses in a stable order.
func (p Policies) Strings() []string {
	out := make([]string, 0, len(p))
	for spec := range p {
		out = append(out, spec.String())
	}
	slices.Sort(out)
	return out
}

// FeedEvent is one line of a feed's event log.
type FeedEvent interface {
	fmt.Stringer
	feedEvent()
}

// Read marks every comic before it as read.
type Read struct {
	At time.Time
}

// ComicURL records a discovered comic.
type ComicURL struct {
	URL string
}

func (Read) feedEvent()     {}
func (ComicURL) feedEvent() {}

// TimestampLayout matches the timestamps written to event logs.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

func (e Read) String() string {
	return "read " + e.At.UTC().Format(TimestampLayout)
}

func (e ComicURL) String() string {
	return "<" + e.URL + ">"
}

func plural(n int, noun string) string {
	if n == 1 {
		return noun
	}
	return noun + "s"
}

// delimit wraps a pattern in the first delimiter it does not contain.
func delimit(pattern string) string {
	for _, d := range []string{"/", "\"", "'", "|", "#", "!", "%"} {
		if !strings.Contains(pattern, d) {
			return d + pattern + d
		}
	}
	return "§" + pattern + "§"
}
