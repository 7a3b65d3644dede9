package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunTickIsolatesPerTargetFailures(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	var handled int32
	job := Job{
		Name:           "test",
		ConcurrencyCap: 4,
		Discover: func(_ context.Context) ([]string, error) {
			return []string{"a", "b", "c"}, nil
		},
		Handle: func(_ context.Context, target string) error {
			atomic.AddInt32(&handled, 1)
			if target == "b" {
				return errors.New("boom")
			}
			return nil
		},
	}

	summary := s.runTick(context.Background(), job, 4, time.Second)
	if handled != 3 {
		t.Fatalf("expected all 3 targets handled despite one failure, got %d", handled)
	}
	if summary.Succeeded != 2 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRunTickRecordsDiscoverFailure(t *testing.T) {
	t.Parallel()

	s := NewScheduler()
	job := Job{
		Name: "broken-discover",
		Discover: func(_ context.Context) ([]string, error) {
			return nil, errors.New("discovery down")
		},
		Handle: func(_ context.Context, _ string) error { return nil },
	}

	summary := s.runTick(context.Background(), job, 4, time.Second)
	if len(summary.Errors) != 1 {
		t.Fatalf("expected discover failure recorded, got %+v", summary)
	}
}

type fakeFeedRepo struct {
	mu        sync.Mutex
	polling   map[string]bool
	feeds     []Feed
	saved     map[string][]FeedItem
	seenHash  map[string]bool
	claimCalls int
}

func newFakeFeedRepo(feeds []Feed) *fakeFeedRepo {
	return &fakeFeedRepo{
		polling:  map[string]bool{},
		feeds:    feeds,
		saved:    map[string][]FeedItem{},
		seenHash: map[string]bool{},
	}
}

func (f *fakeFeedRepo) ListDueFeeds(_ context.Context) ([]Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Feed{}, f.feeds...), nil
}

func (f *fakeFeedRepo) ClaimPolling(_ context.Context, feedID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claimCalls++
	if f.polling[feedID] {
		return false, nil
	}
	f.polling[feedID] = true
	return true, nil
}

func (f *fakeFeedRepo) ReleasePolling(_ context.Context, feedID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.polling, feedID)
	return nil
}

func (f *fakeFeedRepo) ReleaseStalePolling(_ context.Context, _ time.Duration) error { return nil }

func (f *fakeFeedRepo) IsDuplicate(_ context.Context, _, hash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seenHash[hash], nil
}

func (f *fakeFeedRepo) SaveItems(_ context.Context, feedID string, items []FeedItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[feedID] = append(f.saved[feedID], items...)
	for _, it := range items {
		f.seenHash[it.ContentHash] = true
	}
	return nil
}

func (f *fakeFeedRepo) TouchLastCheck(_ context.Context, _ string) error { return nil }

func TestFeedPollSkipsAlreadyClaimedFeed(t *testing.T) {
	t.Parallel()

	repo := newFakeFeedRepo([]Feed{{ID: "feed-1", URL: "http://example.invalid/feed"}})
	repo.polling["feed-1"] = true // already held

	job := NewFeedPollJob(repo, time.Minute, 4)
	if err := job.Handle(context.Background(), "feed-1"); err != nil {
		t.Fatalf("expected idempotent skip, got error: %v", err)
	}
	if repo.claimCalls != 1 {
		t.Fatalf("expected exactly one claim attempt, got %d", repo.claimCalls)
	}
}

func TestContentHashIsDeterministic(t *testing.T) {
	t.Parallel()

	a := contentHash("http://x", "body")
	b := contentHash("http://x", "body")
	c := contentHash("http://x", "other")
	if a != b {
		t.Fatalf("expected identical hashes for identical input")
	}
	if a == c {
		t.Fatalf("expected different hashes for different content")
	}
}

type fakePresenceRepo struct {
	stale   []string
	offline []string
}

func (f *fakePresenceRepo) StaleOnlineUsers(_ context.Context, _ time.Duration) ([]string, error) {
	return f.stale, nil
}

func (f *fakePresenceRepo) MarkOffline(_ context.Context, userID string) error {
	f.offline = append(f.offline, userID)
	return nil
}

func TestPresenceReaperMarksStaleUsersOffline(t *testing.T) {
	t.Parallel()

	repo := &fakePresenceRepo{stale: []string{"u1", "u2"}}
	job := NewPresenceReaperJob(repo, time.Minute, 5*time.Minute)

	s := NewScheduler()
	summary := s.runTick(context.Background(), job, 8, time.Second)
	if summary.Succeeded != 2 {
		t.Fatalf("expected 2 users marked offline, got %+v", summary)
	}
	if len(repo.offline) != 2 {
		t.Fatalf("expected MarkOffline called twice, got %v", repo.offline)
	}
}
