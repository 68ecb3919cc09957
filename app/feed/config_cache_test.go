package feed

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lysyi3m/comic-watch/app/parser"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCacheLoadValidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds")
	writeConfig(t, path, `
command firefox --new-tab
"Eth's Skin" <http://www.eths-skin.com/rss> @ on friday @ every 1 day
"Goodbye to Halos" <http://www.goodbyetohalos.com/feed/> @ 3 new comics @ open all
`)

	configCache := NewConfigCache(path)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	if configCache.GetConfigCount() != 2 {
		t.Errorf("Expected 2 feeds, got %d", configCache.GetConfigCount())
	}

	feedConfig, err := configCache.GetConfig("Goodbye to Halos")
	if err != nil {
		t.Fatal(err)
	}

	if feedConfig.URL != "http://www.goodbyetohalos.com/feed/" {
		t.Errorf("Expected URL 'http://www.goodbyetohalos.com/feed/', got '%s'", feedConfig.URL)
	}
	if !feedConfig.Policies.Has(parser.Comics{Count: 3}) || !feedConfig.Policies.Has(parser.OpenAll{}) {
		t.Errorf("Expected '3 new comics' and 'open all', got %v", feedConfig.Policies.Strings())
	}
	if len(feedConfig.Command) != 2 || feedConfig.Command[0] != "firefox" {
		t.Errorf("Expected firefox command, got %v", feedConfig.Command)
	}
}

func TestConfigCacheMissingFile(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "nonexistent"))
	if err := configCache.Run(); err != nil {
		t.Fatalf("Expected no error for missing file, got: %v", err)
	}

	if configCache.GetConfigCount() != 0 {
		t.Errorf("Expected 0 feeds, got %d", configCache.GetConfigCount())
	}
}

func TestConfigCacheInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds")
	writeConfig(t, path, `"Boozle" <http://boozle.sgoetter.com/feed/> @ on wendsday`)

	err := NewConfigCache(path).Run()
	if err == nil {
		t.Fatal("Expected error for invalid config")
	}

	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected wrapped *parser.ParseError, got %v", err)
	}
	if perr.Msg != "a weekday" {
		t.Errorf("Expected 'a weekday', got '%s'", perr.Msg)
	}
}

func TestConfigCacheDuplicateNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds")
	writeConfig(t, path, `
"Same" <http://a/rss>
"Same" <http://b/rss>
`)

	if err := NewConfigCache(path).Run(); err == nil {
		t.Error("Expected error for duplicate feed names")
	}
}

func TestConfigCacheReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds")
	writeConfig(t, path, `"First" <http://first/rss>`)

	configCache := NewConfigCache(path)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	writeConfig(t, path, `
"First" <http://first/rss> @ overlap 1 comic
"Second" <http://second/rss>
`)
	if err := configCache.Reload(); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if configCache.GetConfigCount() != 2 {
		t.Errorf("Expected 2 feeds after reload, got %d", configCache.GetConfigCount())
	}
	first, err := configCache.GetConfig("First")
	if err != nil {
		t.Fatal(err)
	}
	if !first.Policies.Has(parser.Overlap{Comics: 1}) {
		t.Errorf("Expected updated policies, got %v", first.Policies.Strings())
	}
}

func TestConfigCacheReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds")
	writeConfig(t, path, `"First" <http://first/rss>`)

	configCache := NewConfigCache(path)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	writeConfig(t, path, `"First" <http://first/rss> @ bogus`)
	if err := configCache.Reload(); err == nil {
		t.Fatal("Expected reload error")
	}

	if _, err := configCache.GetConfig("First"); err != nil {
		t.Errorf("Expected previous feed to survive, got: %v", err)
	}
}

func TestConfigCacheGetConfigs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds")
	writeConfig(t, path, `
"Zeta" <http://z/rss>
"Alpha" <http://a/rss>
"Mu" <http://m/rss>
`)

	configCache := NewConfigCache(path)
	if err := configCache.Run(); err != nil {
		t.Fatal(err)
	}

	configs := configCache.GetConfigs()
	if len(configs) != 3 {
		t.Fatalf("Expected 3 feeds, got %d", len(configs))
	}
	for i, want := range []string{"Zeta", "Alpha", "Mu"} {
		if configs[i].Name != want {
			t.Errorf("Expected feed %d to be '%s', got '%s'", i, want, configs[i].Name)
		}
	}
}

func TestConfigCacheGetConfigNotFound(t *testing.T) {
	configCache := NewConfigCache(filepath.Join(t.TempDir(), "feeds"))

	if _, err := configCache.GetConfig("nonexistent"); err == nil {
		t.Error("Expected error for nonexistent feed")
	}
}
