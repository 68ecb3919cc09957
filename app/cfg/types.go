package cfg

import "time"

type Cfg struct {
	// Files
	ConfigPath string
	DataDir    string
	DBPath     string

	// Server
	Port              string
	WorkerCount       int
	SchedulerInterval int
	CheckInterval     int
	APIAccessKey      string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Check     bool
	Version   string
}

func (c *Cfg) CheckEvery() time.Duration {
	return time.Duration(c.CheckInterval) * time.Second
}
