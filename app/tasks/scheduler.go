package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/lysyi3m/comic-watch/app/cfg"
	"github.com/lysyi3m/comic-watch/app/database"
	"github.com/lysyi3m/comic-watch/app/feed"
	"github.com/lysyi3m/comic-watch/app/parser"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	feedRepo      database.FeedRepository
	configCache   *feed.ConfigCache
	eventLog      *feed.EventLog
	httpClient    *http.Client
	parser        *feed.Parser
	filterer      *feed.Filterer
	opener        *feed.Opener
	userAgent     string
	interval      time.Duration
	checkInterval time.Duration
	workerCount   int
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	taskQueue     chan TaskInterface

	mu      sync.Mutex
	pending map[string]bool // feeds with a CheckFeedTask queued or running
}

func NewScheduler(configCache *feed.ConfigCache, feedRepo database.FeedRepository, eventLog *feed.EventLog,
	httpClient *http.Client, parser *feed.Parser, filterer *feed.Filterer, opener *feed.Opener) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		feedRepo:      feedRepo,
		configCache:   configCache,
		eventLog:      eventLog,
		httpClient:    httpClient,
		parser:        parser,
		filterer:      filterer,
		opener:        opener,
		userAgent:     cfg.UserAgent,
		interval:      time.Duration(cfg.SchedulerInterval) * time.Second,
		checkInterval: cfg.CheckEvery(),
		workerCount:   cfg.WorkerCount,
		ctx:           ctx,
		cancel:        cancel,
		taskQueue:     make(chan TaskInterface, 300),
		pending:       make(map[string]bool),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.SyncConfigs()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// SyncConfigs registers every configured feed, forgets removed ones and
// schedules checks for feeds that are due. Called at startup and after the
// configuration file changed.
func (s *Scheduler) SyncConfigs() {
	feedConfigs := s.configCache.GetConfigs()

	names := make([]string, 0, len(feedConfigs))
	for _, feedConfig := range feedConfigs {
		names = append(names, feedConfig.Name)
	}
	if removed, err := s.feedRepo.PruneFeeds(names); err != nil {
		slog.Warn("Failed to prune removed feeds", "error", err)
	} else if removed > 0 {
		slog.Info("Removed feeds no longer configured", "count", removed)
	}

	if len(feedConfigs) == 0 {
		slog.Debug("No feed configurations found")
		return
	}

	slog.Debug("Processing feed configurations", "count", len(feedConfigs))

	// Synced inline: checks need the feed rows to exist.
	for _, feedConfig := range feedConfigs {
		syncTask := NewSyncFeedConfigTask(feedConfig, s.feedRepo)
		syncTask.Start()
		if err := syncTask.Execute(s.ctx); err != nil {
			slog.Warn("SyncFeedConfigTask failed", "feed", feedConfig.Name, "error", err)
		}
	}

	s.enqueueTasks()
}

func (s *Scheduler) enqueueTasks() {
	feedConfigs := s.configCache.GetConfigs()
	now := time.Now().UTC()

	for _, feedConfig := range feedConfigs {
		feed, err := s.feedRepo.GetFeed(feedConfig.Name)
		if err != nil {
			slog.Warn("Failed to get feed from database, skipping", "feed", feedConfig.Name, "error", err)
			continue
		}

		if feed != nil && feed.URL == feedConfig.URL && feed.LastCheckedAt != nil &&
			now.Sub(*feed.LastCheckedAt) < s.checkInterval {
			slog.Debug("Feed not due for a check yet", "feed", feedConfig.Name, "last_checked_at", feed.LastCheckedAt)
			continue
		}

		if err := s.EnqueueCheck(feedConfig); err != nil {
			slog.Warn("Failed to enqueue CheckFeedTask", "feed", feedConfig.Name, "error", err)
		}
	}
}

// EnqueueCheck queues a check of feedConfig unless one is already pending.
func (s *Scheduler) EnqueueCheck(feedConfig *parser.FeedInfo) error {
	task := NewCheckFeedTask(feedConfig, s.httpClient, s.parser, s.filterer, s.opener, s.eventLog, s.feedRepo, s.userAgent)

	key := task.PendingKey()
	s.mu.Lock()
	if s.pending[key] {
		s.mu.Unlock()
		slog.Debug("Check already pending", "feed", feedConfig.Name)
		return nil
	}
	s.pending[key] = true
	s.mu.Unlock()

	if err := s.EnqueueTask(task); err != nil {
		s.done(task)
		return err
	}
	return nil
}

func (s *Scheduler) done(task TaskInterface) {
	key := task.PendingKey()
	if key == "" {
		return
	}
	s.mu.Lock()
	delete(s.pending, key)
	s.mu.Unlock()
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)
	if err == nil {
		s.done(task)
		return
	}

	slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

	retryDelay, ok := task.NextRetry()
	if !ok {
		s.done(task)
		slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		return
	}

	slog.Warn("Task retry scheduled", "type", string(task.GetType()), "feed", task.GetFeedName(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

	go func() {
		select {
		case <-time.After(retryDelay):
		case <-s.ctx.Done():
			slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
			return
		}
		if retryErr := s.EnqueueTask(task); retryErr != nil {
			s.done(task)
			slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
		}
	}()
}
