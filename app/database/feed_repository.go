package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var _ FeedRepository = (*FeedRepo)(nil)

// FeedRepo stores the last known state of every configured feed.
type FeedRepo struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepo {
	return &FeedRepo{db: db}
}

const feedColumns = `name, url, title, link, unread_count, last_checked_at, last_error, created_at, updated_at`

// UpsertFeed registers a feed. A changed URL forgets the previous check so
// the feed is fetched again on the next scheduler tick.
func (r *FeedRepo) UpsertFeed(feedName, feedURL string) error {
	now := time.Now().UTC()
	_, err := r.db.Exec(`
		INSERT INTO feeds (name, url, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			url = excluded.url,
			last_checked_at = CASE WHEN feeds.url = excluded.url THEN feeds.last_checked_at ELSE NULL END,
			updated_at = excluded.updated_at
	`, feedName, feedURL, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}
	return nil
}

func (r *FeedRepo) UpdateCheckResult(feedName string, result CheckResult) error {
	res, err := r.db.Exec(`
		UPDATE feeds
		SET title = CASE WHEN ? = '' THEN title ELSE ? END,
		    link = CASE WHEN ? = '' THEN link ELSE ? END,
		    unread_count = ?,
		    last_checked_at = ?,
		    last_error = ?,
		    updated_at = ?
		WHERE name = ?
	`, result.Title, result.Title, result.Link, result.Link, result.UnreadCount,
		result.CheckedAt.UTC(), result.Error, time.Now().UTC(), feedName)
	if err != nil {
		return fmt.Errorf("failed to update check result: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update check result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("feed '%s' not found", feedName)
	}
	return nil
}

// GetFeed returns nil without error when the feed is unknown.
func (r *FeedRepo) GetFeed(feedName string) (*Feed, error) {
	row := r.db.QueryRow(`SELECT `+feedColumns+` FROM feeds WHERE name = ?`, feedName)

	feed, err := scanFeed(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	return feed, nil
}

func (r *FeedRepo) GetFeeds() ([]Feed, error) {
	rows, err := r.db.Query(`SELECT ` + feedColumns + ` FROM feeds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to get feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}
	return feeds, nil
}

func (r *FeedRepo) GetFeedCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM feeds").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get feed count: %w", err)
	}
	return count, nil
}

// PruneFeeds deletes every feed whose name is not in keep and returns how
// many were removed.
func (r *FeedRepo) PruneFeeds(keep []string) (int, error) {
	query := `DELETE FROM feeds`
	args := make([]any, len(keep))
	if len(keep) > 0 {
		query += ` WHERE name NOT IN (?` + strings.Repeat(", ?", len(keep)-1) + `)`
		for i, name := range keep {
			args[i] = name
		}
	}

	res, err := r.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to prune feeds: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune feeds: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFeed(s scanner) (*Feed, error) {
	var (
		feed        Feed
		lastChecked sql.NullTime
	)
	err := s.Scan(
		&feed.Name, &feed.URL, &feed.Title, &feed.Link, &feed.UnreadCount,
		&lastChecked, &feed.LastError, &feed.CreatedAt, &feed.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastChecked.Valid {
		feed.LastCheckedAt = &lastChecked.Time
	}
	return &feed, nil
}
