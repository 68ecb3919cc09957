package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lysyi3m/comic-watch/app/cfg"
	"github.com/lysyi3m/comic-watch/app/feed"
	"github.com/lysyi3m/comic-watch/app/parser"
	"gopkg.in/yaml.v3"
)

type checkReport struct {
	Config string      `yaml:"config"`
	Feeds  []checkFeed `yaml:"feeds"`
}

type checkFeed struct {
	Name     string     `yaml:"name"`
	URL      string     `yaml:"url"`
	Policies []string   `yaml:"policies,omitempty"`
	Root     string     `yaml:"root,omitempty"`
	Command  []string   `yaml:"command,omitempty,flow"`
	EventLog string     `yaml:"event_log"`
	Unread   int        `yaml:"unread"`
	LastRead *time.Time `yaml:"last_read,omitempty"`
	Due      bool       `yaml:"due"`
}

// runCheck parses the configuration and every feed's event log. Diagnostics
// go to errOut; on success the parsed state is written to out as YAML.
func runCheck(appCfg *cfg.Cfg, out, errOut io.Writer) int {
	data, err := os.ReadFile(appCfg.ConfigPath)
	if err != nil {
		fmt.Fprintf(errOut, "failed to read %s: %v\n", appCfg.ConfigPath, err)
		return 1
	}

	feeds, err := parser.ParseConfig(string(data))
	if err != nil {
		reportParseError(errOut, appCfg.ConfigPath, string(data), err)
		return 1
	}

	eventLog := feed.NewEventLog(appCfg.DataDir)
	report := checkReport{Config: appCfg.ConfigPath}
	failed := false
	now := time.Now()

	for i := range feeds {
		feedConfig := &feeds[i]
		path := eventLog.Path(feedConfig)

		events, err := eventLog.Read(feedConfig)
		if err != nil {
			input, _ := os.ReadFile(path)
			reportParseError(errOut, path, string(input), err)
			failed = true
			continue
		}

		schedule := feed.Schedule{Policies: feedConfig.Policies, Events: events}
		entry := checkFeed{
			Name:     feedConfig.Name,
			URL:      feedConfig.URL,
			Policies: feedConfig.Policies.Strings(),
			Root:     feedConfig.Root,
			Command:  feedConfig.Command,
			EventLog: path,
			Unread:   len(schedule.Unread()),
			Due:      schedule.Due(now),
		}
		if last := schedule.LastRead(); !last.IsZero() {
			entry.LastRead = &last
		}
		report.Feeds = append(report.Feeds, entry)
	}

	if failed {
		return 1
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		fmt.Fprintf(errOut, "failed to encode report: %v\n", err)
		return 1
	}
	if err := encoder.Close(); err != nil {
		fmt.Fprintf(errOut, "failed to encode report: %v\n", err)
		return 1
	}
	return 0
}

func reportParseError(w io.Writer, path, input string, err error) {
	var perr *parser.ParseError
	if !errors.As(err, &perr) {
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return
	}
	fmt.Fprintf(w, "%s:\n%s\n", path, parser.Highlight(input, perr))
}
