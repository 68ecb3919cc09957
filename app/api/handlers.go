package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/comic-watch/app/database"
	"github.com/lysyi3m/comic-watch/app/feed"
	"github.com/lysyi3m/comic-watch/app/parser"
	"github.com/lysyi3m/comic-watch/app/tasks"
)

const maxConfigSize = 1 << 20

func NewHandler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	eventLog *feed.EventLog, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		feedRepo:    feedRepo,
		configCache: configCache,
		eventLog:    eventLog,
		scheduler:   scheduler,
		now:         time.Now,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": h.now().In(time.Local).Format(time.RFC3339),
	}

	if feedCount, err := h.feedRepo.GetFeedCount(); err == nil {
		health["feeds"] = feedCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListFeeds(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	feeds := make([]FeedResponse, 0, len(configs))
	for _, feedConfig := range configs {
		response := newFeedResponse(feedConfig)

		if stored, err := h.feedRepo.GetFeed(feedConfig.Name); err == nil && stored != nil {
			response.Title = stored.Title
			response.LastCheckedAt = stored.LastCheckedAt
			response.LastError = stored.LastError
		}

		if events, err := h.eventLog.Read(feedConfig); err == nil {
			schedule := feed.Schedule{Policies: feedConfig.Policies, Events: events}
			response.Unread = len(schedule.Unread())
			if last := schedule.LastRead(); !last.IsZero() {
				response.LastReadAt = &last
			}
		} else {
			slog.Warn("Failed to read event log", "feed", feedConfig.Name, "error", err)
		}

		feeds = append(feeds, response)
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) GetEvents(c *gin.Context) {
	feedConfig, events, ok := h.loadEvents(c)
	if !ok {
		return
	}

	response := make([]EventResponse, 0, len(events))
	for _, event := range events {
		switch e := event.(type) {
		case parser.ComicURL:
			response = append(response, EventResponse{Type: "comic", URL: e.URL})
		case parser.Read:
			at := e.At
			response = append(response, EventResponse{Type: "read", At: &at})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"feed":   feedConfig.Name,
		"events": response,
	})
}

func (h *Handler) GetUnread(c *gin.Context) {
	feedConfig, events, ok := h.loadEvents(c)
	if !ok {
		return
	}

	schedule := feed.Schedule{Policies: feedConfig.Policies, Events: events}
	unread := schedule.Unread()
	if unread == nil {
		unread = []string{}
	}
	toOpen := schedule.ToOpen()
	if toOpen == nil {
		toOpen = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"feed":    feedConfig.Name,
		"unread":  unread,
		"to_open": toOpen,
		"due":     schedule.Due(h.now()),
	})
}

// MarkRead appends a read event, so everything recorded so far counts as read.
func (h *Handler) MarkRead(c *gin.Context) {
	feedConfig, ok := h.feedConfig(c)
	if !ok {
		return
	}

	read := parser.Read{At: h.now().UTC()}
	if err := h.eventLog.Append(feedConfig, read); err != nil {
		slog.Error("Failed to append read event", "feed", feedConfig.Name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record read"})
		return
	}

	slog.Info("Feed marked as read", "feed", feedConfig.Name)
	c.JSON(http.StatusOK, gin.H{
		"feed": feedConfig.Name,
		"read": read.At,
	})
}

func (h *Handler) CheckFeed(c *gin.Context) {
	feedConfig, ok := h.feedConfig(c)
	if !ok {
		return
	}

	if err := h.scheduler.EnqueueCheck(feedConfig); err != nil {
		slog.Error("Error enqueueing check task", "feed", feedConfig.Name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Failed to enqueue check task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"feed":    feedConfig.Name,
	})
}

// ValidateConfig parses the request body as a configuration file without
// applying it.
func (h *Handler) ValidateConfig(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxConfigSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}
	if len(body) > maxConfigSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Configuration too large"})
		return
	}

	input := string(body)
	feeds, err := parser.ParseConfig(input)
	if err != nil {
		var perr *parser.ParseError
		if !errors.As(err, &perr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		response := ParseErrorResponse{
			Row:       perr.Row,
			Message:   perr.Error(),
			Highlight: parser.Highlight(input, perr),
		}
		if perr.Span != nil {
			response.Span = &Span{Start: perr.Span.Start, End: perr.Span.End}
		}
		c.JSON(http.StatusUnprocessableEntity, response)
		return
	}

	response := make([]FeedResponse, 0, len(feeds))
	for i := range feeds {
		response = append(response, newFeedResponse(&feeds[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"feeds": response,
		"total": len(response),
	})
}

func (h *Handler) feedConfig(c *gin.Context) (*parser.FeedInfo, bool) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed name parameter"})
		return nil, false
	}

	feedConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Debug("Feed configuration not found", "feed", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed configuration not found"})
		return nil, false
	}
	return feedConfig, true
}

func (h *Handler) loadEvents(c *gin.Context) (*parser.FeedInfo, []parser.FeedEvent, bool) {
	feedConfig, ok := h.feedConfig(c)
	if !ok {
		return nil, nil, false
	}

	events, err := h.eventLog.Read(feedConfig)
	if err != nil {
		slog.Error("Failed to read event log", "feed", feedConfig.Name, "error", err)

		var perr *parser.ParseError
		if errors.As(err, &perr) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Event log is corrupt",
				"row":     perr.Row,
				"details": err.Error(),
			})
			return nil, nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read event log"})
		return nil, nil, false
	}
	return feedConfig, events, true
}

func newFeedResponse(feedConfig *parser.FeedInfo) FeedResponse {
	return FeedResponse{
		Name:     feedConfig.Name,
		URL:      feedConfig.URL,
		Policies: feedConfig.Policies.Strings(),
		Root:     feedConfig.Root,
		Command:  feedConfig.Command,
	}
}
