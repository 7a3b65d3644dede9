package pipeline

import (
	"context"
	"time"

	"github.com/quillforge/core/proposal"
)

// NewProposalExpiryJob builds spec §4.10's 24h unapplied-proposal sweep as
// one more pipeline.Job, reusing the same tick/fan-out machinery as every
// other background pipeline rather than a bespoke timer.
func NewProposalExpiryJob(registry *proposal.Registry, interval, maxAge time.Duration) Job {
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	return Job{
		Name:             "proposal_expiry",
		Interval:         interval,
		ConcurrencyCap:   1,
		PerTargetTimeout: 30 * time.Second,
		Discover: func(ctx context.Context) ([]string, error) {
			return []string{"sweep"}, nil
		},
		Handle: func(ctx context.Context, _ string) error {
			_, err := registry.ExpireStale(ctx, maxAge)
			return err
		},
	}
}
