package feed

import (
	"slices"
	"time"

	"github.com/lysyi3m/comic-watch/app/parser"
)

// Schedule evaluates a feed's update policies against its event history.
type Schedule struct {
	Policies parser.Policies
	Events   []parser.FeedEvent
}

func (s Schedule) lastReadIndex() int {
	for i := len(s.Events) - 1; i >= 0; i-- {
		if _, ok := s.Events[i].(parser.Read); ok {
			return i
		}
	}
	return -1
}

// Unread returns the comic URLs recorded after the last read, oldest first.
func (s Schedule) Unread() []string {
	var urls []string
	for _, event := range s.Events[s.lastReadIndex()+1:] {
		if comic, ok := event.(parser.ComicURL); ok {
			urls = append(urls, comic.URL)
		}
	}
	return urls
}

// Known reports whether url was ever recorded.
func (s Schedule) Known(url string) bool {
	for _, event := range s.Events {
		if comic, ok := event.(parser.ComicURL); ok && comic.URL == url {
			return true
		}
	}
	return false
}

// LastRead is the zero time when the feed was never read.
func (s Schedule) LastRead() time.Time {
	if i := s.lastReadIndex(); i >= 0 {
		return s.Events[i].(parser.Read).At
	}
	return time.Time{}
}

// Due reports whether unread comics should be opened at now. now's location
// decides which weekday it is.
func (s Schedule) Due(now time.Time) bool {
	unread := len(s.Unread())
	if unread == 0 {
		return false
	}

	var (
		days      []time.Weekday
		minEvery  = -1
		minComics = -1
	)
	for spec := range s.Policies {
		switch p := spec.(type) {
		case parser.On:
			days = append(days, p.Day)
		case parser.Every:
			if minEvery < 0 || p.Days < minEvery {
				minEvery = p.Days
			}
		case parser.Comics:
			if minComics < 0 || p.Count < minComics {
				minComics = p.Count
			}
		}
	}

	if len(days) > 0 && !slices.Contains(days, now.Weekday()) {
		return false
	}
	if minEvery >= 0 {
		last := s.LastRead()
		if !last.IsZero() && now.Sub(last) < time.Duration(minEvery)*24*time.Hour {
			return false
		}
	}
	if minComics >= 0 && unread < minComics {
		return false
	}
	return true
}

// ToOpen lists what a reader should open next: the first unread comic, or
// all of them with "open all", preceded by up to n already read comics when
// an overlap of n is set.
func (s Schedule) ToOpen() []string {
	var all []string
	firstUnread := -1
	lastRead := s.lastReadIndex()
	for i, event := range s.Events {
		comic, ok := event.(parser.ComicURL)
		if !ok {
			continue
		}
		if i > lastRead && firstUnread < 0 {
			firstUnread = len(all)
		}
		all = append(all, comic.URL)
	}
	if firstUnread < 0 {
		return nil
	}

	overlap := 0
	openAll := false
	for spec := range s.Policies {
		switch p := spec.(type) {
		case parser.Overlap:
			overlap = max(overlap, p.Comics)
		case parser.OpenAll:
			openAll = true
		}
	}

	start := max(firstUnread-overlap, 0)
	end := firstUnread + 1
	if openAll {
		end = len(all)
	}
	return all[start:end:end]
}
