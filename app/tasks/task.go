package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const (
	TaskTypeCheckFeed      TaskType = "check_feed"
	TaskTypeSyncFeedConfig TaskType = "sync_feed_config"
)

const (
	DefaultMaxRetries = 3
	maxRetryDelay     = 30 * time.Second
)

type TaskInterface interface {
	Execute(ctx context.Context) error
	GetID() string
	GetType() TaskType
	GetFeedName() string
	GetRetryCount() int
	GetMaxRetries() int
	// NextRetry records another attempt and returns how long to wait before
	// it, or false once the retries are used up.
	NextRetry() (time.Duration, bool)
	// PendingKey names the feed whose check this task is, or "" for tasks
	// that may be queued any number of times.
	PendingKey() string
	Start()
	GetDuration() time.Duration
}

// Task carries the bookkeeping shared by every feed task.
type Task struct {
	ID         string
	Type       TaskType
	FeedName   string
	RetryCount int
	MaxRetries int
	StartedAt  *time.Time
}

func NewTask(taskType TaskType, feedName string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		FeedName:   feedName,
		MaxRetries: DefaultMaxRetries,
	}
}

func (t *Task) GetID() string       { return t.ID }
func (t *Task) GetType() TaskType   { return t.Type }
func (t *Task) GetFeedName() string { return t.FeedName }
func (t *Task) GetRetryCount() int  { return t.RetryCount }
func (t *Task) GetMaxRetries() int  { return t.MaxRetries }

// NextRetry backs off exponentially from one second, capped at thirty.
func (t *Task) NextRetry() (time.Duration, bool) {
	if t.RetryCount >= t.MaxRetries {
		return 0, false
	}
	t.RetryCount++
	return min(time.Second<<(t.RetryCount-1), maxRetryDelay), true
}

// PendingKey deduplicates checks: a feed has at most one check queued,
// waiting for a retry or running.
func (t *Task) PendingKey() string {
	if t.Type != TaskTypeCheckFeed {
		return ""
	}
	return t.FeedName
}

func (t *Task) Start() {
	now := time.Now()
	t.StartedAt = &now
}

func (t *Task) GetDuration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}
