package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/comic-watch/app/database"
	"github.com/lysyi3m/comic-watch/app/feed"
	"github.com/lysyi3m/comic-watch/app/parser"
)

const fetchTimeout = 30 * time.Second

// CheckFeedTask fetches a feed, records new comics in its event log and,
// when the feed's policies say so, opens them with the configured command.
type CheckFeedTask struct {
	Task
	FeedConfig *parser.FeedInfo
	httpClient *http.Client
	parser     *feed.Parser
	filterer   *feed.Filterer
	opener     *feed.Opener
	eventLog   *feed.EventLog
	feedRepo   database.FeedRepository
	userAgent  string
	now        func() time.Time
}

func NewCheckFeedTask(feedConfig *parser.FeedInfo, httpClient *http.Client, parser *feed.Parser,
	filterer *feed.Filterer, opener *feed.Opener, eventLog *feed.EventLog,
	feedRepo database.FeedRepository, userAgent string) *CheckFeedTask {
	return &CheckFeedTask{
		Task:       NewTask(TaskTypeCheckFeed, feedConfig.Name),
		FeedConfig: feedConfig,
		httpClient: httpClient,
		parser:     parser,
		filterer:   filterer,
		opener:     opener,
		eventLog:   eventLog,
		feedRepo:   feedRepo,
		userAgent:  userAgent,
		now:        time.Now,
	}
}

func (t *CheckFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	now := t.now()

	data, err := t.fetchFeed(ctx, t.FeedConfig.URL)
	if err != nil {
		return t.fail(now, fmt.Errorf("failed to fetch feed: %w", err))
	}

	metadata, items, err := t.parser.Run(data)
	if err != nil {
		return t.fail(now, fmt.Errorf("failed to parse feed: %w", err))
	}

	kept := t.filterer.Run(items, t.FeedConfig.Policies)

	events, err := t.eventLog.Read(t.FeedConfig)
	if err != nil {
		return t.fail(now, fmt.Errorf("failed to read event log: %w", err))
	}
	schedule := feed.Schedule{Policies: t.FeedConfig.Policies, Events: events}

	var fresh []parser.FeedEvent
	seen := make(map[string]bool)
	for _, item := range kept {
		link, ok := eventURL(item.Link)
		if !ok {
			slog.Warn("Skipping comic with unusable link", "feed", t.FeedName, "link", item.Link)
			continue
		}
		if seen[link] || schedule.Known(link) {
			continue
		}
		seen[link] = true
		fresh = append(fresh, parser.ComicURL{URL: link})
	}

	if err := t.eventLog.Append(t.FeedConfig, fresh...); err != nil {
		return t.fail(now, fmt.Errorf("failed to record new comics: %w", err))
	}
	schedule.Events = append(schedule.Events, fresh...)

	opened := 0
	if t.FeedConfig.Command != nil && schedule.Due(now) {
		urls := schedule.ToOpen()
		if err := t.opener.Run(ctx, t.FeedConfig.Command, urls); err != nil {
			return t.fail(now, fmt.Errorf("failed to open comics: %w", err))
		}

		read := parser.Read{At: now.UTC()}
		if err := t.eventLog.Append(t.FeedConfig, read); err != nil {
			return t.fail(now, fmt.Errorf("failed to record read: %w", err))
		}
		schedule.Events = append(schedule.Events, read)
		opened = len(urls)
	}

	err = t.feedRepo.UpdateCheckResult(t.FeedName, database.CheckResult{
		Title:       metadata.Title,
		Link:        metadata.Link,
		UnreadCount: len(schedule.Unread()),
		CheckedAt:   now,
	})
	if err != nil {
		return fmt.Errorf("failed to store check result: %w", err)
	}

	slog.Info("Task completed",
		"type", "CheckFeed",
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", len(items),
		"filtered", len(items)-len(kept),
		"new", len(fresh),
		"opened", opened)

	return nil
}

// eventURL normalises link so it can be written between the angle brackets
// of an event log line and read back unchanged.
func eventURL(link string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.String() == "" {
		return "", false
	}
	// Query strings are kept verbatim by url.URL.
	normalised := strings.ReplaceAll(u.String(), ">", "%3E")
	if strings.ContainsFunc(normalised, func(r rune) bool { return r < ' ' || r == 0x7f }) {
		return "", false
	}
	return normalised, true
}

// fail records err as the feed's last error and returns it.
func (t *CheckFeedTask) fail(now time.Time, err error) error {
	result := database.CheckResult{CheckedAt: now, Error: err.Error()}
	if previous, getErr := t.feedRepo.GetFeed(t.FeedName); getErr == nil && previous != nil {
		result.UnreadCount = previous.UnreadCount
	}
	if recordErr := t.feedRepo.UpdateCheckResult(t.FeedName, result); recordErr != nil {
		slog.Warn("Failed to record check failure", "feed", t.FeedName, "error", recordErr)
	}
	return err
}

func (t *CheckFeedTask) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
