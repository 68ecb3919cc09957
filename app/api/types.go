package api

import (
	"time"

	"github.com/lysyi3m/comic-watch/app/database"
	"github.com/lysyi3m/comic-watch/app/feed"
	"github.com/lysyi3m/comic-watch/app/tasks"
)

type Handler struct {
	feedRepo    database.FeedRepository
	configCache *feed.ConfigCache
	eventLog    *feed.EventLog
	scheduler   tasks.TaskSchedulerInterface
	now         func() time.Time
}

type FeedResponse struct {
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Policies      []string   `json:"policies"`
	Root          string     `json:"root,omitempty"`
	Command       []string   `json:"command,omitempty"`
	Title         string     `json:"title,omitempty"`
	Unread        int        `json:"unread"`
	LastReadAt    *time.Time `json:"last_read_at,omitempty"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

type EventResponse struct {
	Type string     `json:"type"` // "comic" or "read"
	URL  string     `json:"url,omitempty"`
	At   *time.Time `json:"at,omitempty"`
}

type ParseErrorResponse struct {
	Row       int    `json:"row"`
	Span      *Span  `json:"span,omitempty"`
	Message   string `json:"message"`
	Highlight string `json:"highlight"`
}

type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}
