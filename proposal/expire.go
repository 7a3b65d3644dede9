package proposal

import (
	"context"
	"time"
)

// ExpireStale drops every unapplied proposal older than maxAge, per spec
// §4.10's "background sweep ... expires proposals older than 24h that
// were never applied." It is meant to be driven by a pipeline.Job on a
// fixed interval, not called directly by request handlers.
func (r *Registry) ExpireStale(ctx context.Context, maxAge time.Duration) (expired int, err error) {
	cutoff := time.Now().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range r.entries {
		entry.mu.Lock()
		stale := !entry.proposal.Applied && entry.proposal.CreatedAt.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			delete(r.entries, id)
			expired++
		}
	}
	return expired, nil
}
