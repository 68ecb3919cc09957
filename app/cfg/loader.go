package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const appName = "comic-watch"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Files
	ConfigPath string `long:"config" short:"c" env:"COMIC_WATCH_CONFIG" description:"Feed configuration file (default: $XDG_CONFIG_HOME/comic-watch/feeds)"`
	DataDir    string `long:"data-dir" env:"COMIC_WATCH_DATA_DIR" description:"Directory for event logs of feeds without a root directive (default: $XDG_DATA_HOME/comic-watch)"`
	DBPath     string `long:"db-path" env:"COMIC_WATCH_DB_PATH" description:"SQLite database for feed state (default: $XDG_STATE_HOME/comic-watch/state.db)"`

	// Server
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background workers for feed checks"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"60" description:"Scheduler interval in seconds"`
	CheckInterval     int    `long:"check-interval" env:"CHECK_INTERVAL" default:"3600" description:"Minimum seconds between two checks of the same feed"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for write endpoints (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Comic Watch/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" description:"Timezone deciding the weekday of 'on' policies (e.g., Europe/Berlin)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	Check     bool   `long:"check" description:"Parse the configuration and event logs, print the result and exit"`
}

var globalCfg *Cfg

// Load parses the command line and environment. It returns nil, nil when
// help was requested.
func Load() (*Cfg, error) {
	return load(nil)
}

func load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ConfigPath:        cmp.Or(raw.ConfigPath, filepath.Join(xdg.ConfigHome, appName, "feeds")),
		DataDir:           cmp.Or(raw.DataDir, filepath.Join(xdg.DataHome, appName)),
		DBPath:            cmp.Or(raw.DBPath, filepath.Join(xdg.StateHome, appName, "state.db")),
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		CheckInterval:     raw.CheckInterval,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Check:             raw.Check,
		Version:           GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// Set replaces the global configuration. Tests use it instead of Load.
func Set(cfg *Cfg) {
	globalCfg = cfg
}

func validate(cfg *Cfg) error {
	positive := []struct {
		name  string
		value int
	}{
		{"worker count", cfg.WorkerCount},
		{"scheduler interval", cfg.SchedulerInterval},
		{"check interval", cfg.CheckInterval},
	}
	for _, field := range positive {
		if field.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", field.name, field.value)
		}
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	return nil
}
