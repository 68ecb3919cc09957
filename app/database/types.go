package database

import (
	"time"
)

type Feed struct {
	Name          string // feed name from the configuration file
	URL           string
	Title         string // title reported by the feed itself
	Link          string // homepage from the feed's <link>
	UnreadCount   int
	LastCheckedAt *time.Time
	LastError     string // empty after a successful check
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CheckResult struct {
	Title       string
	Link        string
	UnreadCount int
	CheckedAt   time.Time
	Error       string
}
