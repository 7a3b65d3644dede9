package pipeline

import (
	"context"
	"time"

	"github.com/quillforge/core/checkpoint"
)

// ArchivedThreadLister reports which threads are eligible for checkpoint
// GC: workflows completed more than the configured retention window ago
// (spec §4.8: "remove checkpoints belonging to archived workflows older
// than the retention window"). The Workflow Engine's host process owns
// archival bookkeeping; pipeline only needs this one query from it.
type ArchivedThreadLister func(ctx context.Context, retention time.Duration) ([]string, error)

// NewCheckpointGCJob builds spec §4.8's checkpoint GC: every tick, drop
// every checkpoint belonging to a thread archived.since longer ago than
// retention (default 24h, per spec §3's Workflow archival default).
func NewCheckpointGCJob(store *checkpoint.Store, listArchived ArchivedThreadLister, interval, retention time.Duration) Job {
	if retention <= 0 {
		retention = 24 * time.Hour
	}

	return Job{
		Name:             "checkpoint_gc",
		Interval:         interval,
		ConcurrencyCap:   4,
		PerTargetTimeout: 30 * time.Second,
		Discover: func(ctx context.Context) ([]string, error) {
			return listArchived(ctx, retention)
		},
		Handle: func(ctx context.Context, threadID string) error {
			return store.Drop(ctx, threadID)
		},
	}
}
