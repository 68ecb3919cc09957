package feed

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lysyi3m/comic-watch/app/parser"
)

const eventLogExt = ".events"

// EventLog stores each feed's history as a line-based file under the feed's
// root directory, falling back to dataDir.
type EventLog struct {
	dataDir string
	mu      sync.Mutex
}

func NewEventLog(dataDir string) *EventLog {
	return &EventLog{dataDir: dataDir}
}

func (l *EventLog) Path(feed *parser.FeedInfo) string {
	root := feed.Root
	if root == "" {
		root = l.dataDir
	}
	name := strings.ReplaceAll(feed.Name, string(filepath.Separator), "_")
	name = strings.ReplaceAll(name, "/", "_")
	return filepath.Join(root, name+eventLogExt)
}

// Read returns no events for a feed that has no log yet.
func (l *EventLog) Read(feed *parser.FeedInfo) ([]parser.FeedEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	path := l.Path(feed)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}

	events, err := parser.ParseEvents(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return events, nil
}

func (l *EventLog) Append(feed *parser.FeedInfo, events ...parser.FeedEvent) error {
	if len(events) == 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	path := l.Path(feed)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create event log directory: %w", err)
	}

	var b strings.Builder
	for _, event := range events {
		b.WriteString(event.String())
		b.WriteString("\n")
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	if _, err := file.WriteString(b.String()); err != nil {
		file.Close()
		return fmt.Errorf("failed to append to event log: %w", err)
	}
	return file.Close()
}
