package tasks

import "github.com/lysyi3m/comic-watch/app/parser"

// TaskSchedulerInterface is what the HTTP API and the config watcher need
// from the scheduler.
//
//	scheduler := NewScheduler(configCache, feedRepo, eventLog, httpClient, parser, filterer, opener)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueCheck(feedConfig)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueCheck(feedConfig *parser.FeedInfo) error
	SyncConfigs()
}
