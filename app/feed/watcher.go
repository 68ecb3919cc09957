package feed

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// ConfigWatcher reloads a ConfigCache when its file changes on disk.
type ConfigWatcher struct {
	configCache *ConfigCache
	onChange    func()
	watcher     *fsnotify.Watcher
}

// NewConfigWatcher calls onChange after every successful reload. onChange
// may be nil.
func NewConfigWatcher(configCache *ConfigCache, onChange func()) *ConfigWatcher {
	return &ConfigWatcher{
		configCache: configCache,
		onChange:    onChange,
	}
}

// Run watches the directory of the configuration file, so editors that
// replace the file by renaming are followed. It blocks until ctx is done.
func (w *ConfigWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	path := filepath.Clean(w.configCache.Path())
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	slog.Info("Watching configuration", "path", path)

	debounce := time.NewTimer(watchDebounce)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				debounce.Reset(watchDebounce)
			}

		case <-debounce.C:
			if err := w.configCache.Reload(); err != nil {
				continue
			}
			if w.onChange != nil {
				w.onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", "error", err)
		}
	}
}
