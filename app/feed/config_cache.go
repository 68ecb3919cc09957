package feed

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/lysyi3m/comic-watch/app/parser"
)

// ConfigCache holds the feeds of the configuration file, keyed by name.
type ConfigCache struct {
	configPath string
	cache      map[string]*parser.FeedInfo
	order      []string
	mu         sync.RWMutex
}

func NewConfigCache(configPath string) *ConfigCache {
	return &ConfigCache{
		configPath: configPath,
		cache:      make(map[string]*parser.FeedInfo),
	}
}

func (cc *ConfigCache) Path() string {
	return cc.configPath
}

// Run loads the configuration file. A missing file means no feeds.
func (cc *ConfigCache) Run() error {
	feeds, err := cc.LoadConfig()
	if err != nil {
		return err
	}
	cc.store(feeds)

	for _, feed := range feeds {
		slog.Debug("Configuration loaded", "feed", feed.Name, "url", feed.URL, "policies", feed.Policies.Strings())
	}
	return nil
}

// Reload re-reads the configuration file. On error the previous feeds stay
// in place and the diagnostic is logged.
func (cc *ConfigCache) Reload() error {
	feeds, err := cc.LoadConfig()
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			data, _ := os.ReadFile(cc.configPath)
			slog.Error("Configuration rejected, keeping previous feeds", "path", cc.configPath, "error", err)
			fmt.Fprintln(os.Stderr, parser.Highlight(string(data), perr))
		} else {
			slog.Error("Configuration reload failed, keeping previous feeds", "path", cc.configPath, "error", err)
		}
		return err
	}

	cc.store(feeds)
	slog.Info("Configuration reloaded", "path", cc.configPath, "feeds", len(feeds))
	return nil
}

// LoadConfig parses the configuration file without touching the cache.
func (cc *ConfigCache) LoadConfig() ([]parser.FeedInfo, error) {
	data, err := os.ReadFile(cc.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	feeds, err := parser.ParseConfig(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", cc.configPath, err)
	}

	if err := cc.validateConfig(feeds); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cc.configPath, err)
	}
	return feeds, nil
}

func (cc *ConfigCache) GetConfig(feedName string) (*parser.FeedInfo, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	feedConfig, ok := cc.cache[feedName]
	if !ok {
		return nil, fmt.Errorf("feed config with name '%s' not found", feedName)
	}
	return feedConfig, nil
}

// GetConfigs returns the feeds in file order.
func (cc *ConfigCache) GetConfigs() []*parser.FeedInfo {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configs := make([]*parser.FeedInfo, 0, len(cc.order))
	for _, name := range cc.order {
		configs = append(configs, cc.cache[name])
	}
	return configs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) store(feeds []parser.FeedInfo) {
	cache := make(map[string]*parser.FeedInfo, len(feeds))
	order := make([]string, 0, len(feeds))
	for i := range feeds {
		cache[feeds[i].Name] = &feeds[i]
		order = append(order, feeds[i].Name)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache = cache
	cc.order = order
}

func (cc *ConfigCache) validateConfig(feeds []parser.FeedInfo) error {
	seen := make(map[string]bool, len(feeds))
	for _, feed := range feeds {
		if feed.Name == "" {
			return fmt.Errorf("feed name is required (url %s)", feed.URL)
		}
		if feed.URL == "" {
			return fmt.Errorf("feed URL is required for '%s'", feed.Name)
		}
		if seen[feed.Name] {
			return fmt.Errorf("duplicate feed name '%s'", feed.Name)
		}
		seen[feed.Name] = true
	}
	return nil
}
