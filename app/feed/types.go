package feed

import (
	"time"
)

type Metadata struct {
	Title       string
	Link        string
	Description string
	UpdatedAt   *time.Time
}

// Item is one entry of a fetched feed. Link is what ends up in the event log.
type Item struct {
	GUID        string
	Title       string
	Link        string
	PublishedAt time.Time // zero when the feed has no date for it
}
