package database

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestRepository(t *testing.T) *FeedRepo {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "state", "comic-watch.db"))
	if err != nil {
		t.Fatalf("Expected no error opening database, got: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected no error running migrations, got: %v", err)
	}
	if version != 1 || dirty {
		t.Fatalf("Expected clean version 1, got %d (dirty=%v)", version, dirty)
	}

	return NewFeedRepository(db)
}

func TestRunMigrationsTwice(t *testing.T) {
	db, err := NewConnection(filepath.Join(t.TempDir(), "comic-watch.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Expected second run to be a no-op, got: %v", err)
	}
}

func TestFeedRepo_UpsertAndGet(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.UpsertFeed("Boozle", "http://boozle.sgoetter.com/feed/"); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	feed, err := repo.GetFeed("Boozle")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed == nil {
		t.Fatal("Expected feed to exist")
	}
	if feed.URL != "http://boozle.sgoetter.com/feed/" {
		t.Errorf("Expected URL 'http://boozle.sgoetter.com/feed/', got '%s'", feed.URL)
	}
	if feed.LastCheckedAt != nil {
		t.Errorf("Expected feed never checked, got %v", feed.LastCheckedAt)
	}
	if feed.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}
}

func TestFeedRepo_GetFeedUnknown(t *testing.T) {
	repo := newTestRepository(t)

	feed, err := repo.GetFeed("nonexistent")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if feed != nil {
		t.Errorf("Expected nil feed, got %+v", feed)
	}
}

func TestFeedRepo_UpdateCheckResult(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.UpsertFeed("Boozle", "http://boozle/feed"); err != nil {
		t.Fatal(err)
	}

	checkedAt := time.Date(2017, 7, 17, 3, 21, 21, 0, time.UTC)
	err := repo.UpdateCheckResult("Boozle", CheckResult{
		Title:       "Boozle",
		Link:        "http://boozle",
		UnreadCount: 3,
		CheckedAt:   checkedAt,
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// A failed check keeps title and link
	err = repo.UpdateCheckResult("Boozle", CheckResult{
		UnreadCount: 3,
		CheckedAt:   checkedAt.Add(time.Hour),
		Error:       "HTTP error: 503",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	feed, err := repo.GetFeed("Boozle")
	if err != nil {
		t.Fatal(err)
	}
	if feed.Title != "Boozle" || feed.Link != "http://boozle" {
		t.Errorf("Expected title and link to be kept, got '%s' '%s'", feed.Title, feed.Link)
	}
	if feed.UnreadCount != 3 {
		t.Errorf("Expected 3 unread, got %d", feed.UnreadCount)
	}
	if feed.LastError != "HTTP error: 503" {
		t.Errorf("Expected last error to be recorded, got '%s'", feed.LastError)
	}
	if feed.LastCheckedAt == nil || !feed.LastCheckedAt.Equal(checkedAt.Add(time.Hour)) {
		t.Errorf("Expected last checked %v, got %v", checkedAt.Add(time.Hour), feed.LastCheckedAt)
	}
}

func TestFeedRepo_UpdateCheckResultUnknownFeed(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.UpdateCheckResult("nonexistent", CheckResult{CheckedAt: time.Now()}); err == nil {
		t.Error("Expected error for unknown feed")
	}
}

func TestFeedRepo_UpsertChangedURLResetsCheck(t *testing.T) {
	repo := newTestRepository(t)

	if err := repo.UpsertFeed("Boozle", "http://old/feed"); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateCheckResult("Boozle", CheckResult{CheckedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	if err := repo.UpsertFeed("Boozle", "http://old/feed"); err != nil {
		t.Fatal(err)
	}
	feed, _ := repo.GetFeed("Boozle")
	if feed.LastCheckedAt == nil {
		t.Error("Expected unchanged URL to keep the last check")
	}

	if err := repo.UpsertFeed("Boozle", "http://new/feed"); err != nil {
		t.Fatal(err)
	}
	feed, _ = repo.GetFeed("Boozle")
	if feed.URL != "http://new/feed" {
		t.Errorf("Expected new URL, got '%s'", feed.URL)
	}
	if feed.LastCheckedAt != nil {
		t.Errorf("Expected changed URL to reset the last check, got %v", feed.LastCheckedAt)
	}
}

func TestFeedRepo_GetFeedsAndPrune(t *testing.T) {
	repo := newTestRepository(t)

	for _, name := range []string{"Zeta", "Alpha", "Mu"} {
		if err := repo.UpsertFeed(name, "http://"+name); err != nil {
			t.Fatal(err)
		}
	}

	feeds, err := repo.GetFeeds()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(feeds) != 3 || feeds[0].Name != "Alpha" {
		t.Errorf("Expected 3 feeds sorted by name, got %+v", feeds)
	}

	removed, err := repo.PruneFeeds([]string{"Mu"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if removed != 2 {
		t.Errorf("Expected 2 feeds removed, got %d", removed)
	}

	count, err := repo.GetFeedCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 feed left, got %d", count)
	}

	if removed, err = repo.PruneFeeds(nil); err != nil || removed != 1 {
		t.Errorf("Expected last feed removed, got %d (%v)", removed, err)
	}
}
