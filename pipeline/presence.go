package pipeline

import (
	"context"
	"time"
)

// PresenceRepository is the narrow seam the presence reaper needs;
// messaging.Store satisfies it without pipeline importing messaging.
type PresenceRepository interface {
	StaleOnlineUsers(ctx context.Context, offlineThreshold time.Duration) ([]string, error)
	MarkOffline(ctx context.Context, userID string) error
}

// NewPresenceReaperJob builds spec §4.8's presence reaper: every tick,
// mark any user whose last_seen_at is older than offlineThreshold as
// offline.
func NewPresenceReaperJob(repo PresenceRepository, interval, offlineThreshold time.Duration) Job {
	return Job{
		Name:             "presence_reaper",
		Interval:         interval,
		ConcurrencyCap:   8,
		PerTargetTimeout: 10 * time.Second,
		Discover: func(ctx context.Context) ([]string, error) {
			return repo.StaleOnlineUsers(ctx, offlineThreshold)
		},
		Handle: func(ctx context.Context, userID string) error {
			return repo.MarkOffline(ctx, userID)
		},
	}
}
