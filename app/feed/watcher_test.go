package feed

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestConfigWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds")
	writeConfig(t, path, `"First" <http://first/rss>`)

	configCache := NewConfigCache(path)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	changed := make(chan struct{}, 1)
	watcher := NewConfigWatcher(configCache, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Keep writing until the watcher has picked the change up; the
	// directory watch may not be registered yet on the first write.
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-changed:
			if configCache.GetConfigCount() != 2 {
				t.Errorf("Expected 2 feeds after reload, got %d", configCache.GetConfigCount())
			}
			return
		case <-tick.C:
			writeConfig(t, path, "\"First\" <http://first/rss>\n\"Second\" <http://second/rss>\n")
		case <-deadline:
			t.Fatal("Timed out waiting for reload")
		}
	}
}
