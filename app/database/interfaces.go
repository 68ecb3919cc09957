package database

type FeedRepository interface {
	GetFeed(feedName string) (*Feed, error)
	GetFeeds() ([]Feed, error)
	GetFeedCount() (int, error)

	UpsertFeed(feedName, feedURL string) error
	UpdateCheckResult(feedName string, result CheckResult) error
	PruneFeeds(keep []string) (int, error)
}
