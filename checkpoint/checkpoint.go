// Package checkpoint gives the teacher's store.CheckpointStore the
// (thread_id, checkpoint_id) addressing that the workflow engine needs:
// every checkpoint belongs to a thread, carries a monotonically increasing
// ID within that thread, and points at the checkpoint it was derived from.
package checkpoint

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/quillforge/core/log"
	"github.com/quillforge/core/store"
)

const (
	metaThreadID   = "thread_id"
	metaParentID   = "parent_checkpoint_id"
	metaSavedAt    = "saved_at"
	defaultMaxKept = 50
)

// Store wraps a store.CheckpointStore with thread-scoped addressing.
type Store struct {
	backend store.CheckpointStore
	logger  log.Logger

	mu       sync.Mutex
	counters map[string]int // thread_id -> last issued sequence number
}

// New wraps backend with thread-scoped checkpoint addressing.
func New(backend store.CheckpointStore) *Store {
	return &Store{
		backend:  backend,
		logger:   log.GetDefaultLogger(),
		counters: make(map[string]int),
	}
}

// Put saves state as a new checkpoint on threadID, deriving from parentID
// (empty for a thread's first checkpoint), and returns the new checkpoint's
// ID.
func (s *Store) Put(ctx context.Context, threadID string, nodeName string, state any, parentID string) (string, error) {
	if threadID == "" {
		return "", fmt.Errorf("checkpoint: threadID must not be empty")
	}

	seq := s.nextSeq(threadID)
	id := fmt.Sprintf("%s#%06d", threadID, seq)

	cp := &store.Checkpoint{
		ID:        id,
		NodeName:  nodeName,
		State:     state,
		Timestamp: time.Now(),
		Version:   seq,
		Metadata: map[string]any{
			metaThreadID: threadID,
			metaParentID: parentID,
		},
	}

	if err := s.backend.Save(ctx, cp); err != nil {
		return "", fmt.Errorf("checkpoint: save %s: %w", id, err)
	}

	s.logger.Debug("checkpoint saved thread=%s id=%s node=%s parent=%s", threadID, id, nodeName, parentID)
	return id, nil
}

func (s *Store) nextSeq(threadID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[threadID]++
	return s.counters[threadID]
}

// Get retrieves a specific checkpoint by ID.
func (s *Store) Get(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	return s.backend.Load(ctx, checkpointID)
}

// Latest returns the most recently saved checkpoint for threadID, or nil if
// the thread has never been checkpointed.
func (s *Store) Latest(ctx context.Context, threadID string) (*store.Checkpoint, error) {
	checkpoints, err := s.backend.List(ctx, threadID)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: list thread %s: %w", threadID, err)
	}
	if len(checkpoints) == 0 {
		return nil, nil
	}
	return checkpoints[len(checkpoints)-1], nil
}

// List returns every checkpoint saved for threadID, oldest first.
func (s *Store) List(ctx context.Context, threadID string) ([]*store.Checkpoint, error) {
	return s.backend.List(ctx, threadID)
}

// ParentID returns the parent_checkpoint_id recorded on cp, or "" if cp is
// a thread's first checkpoint.
func ParentID(cp *store.Checkpoint) string {
	if cp == nil || cp.Metadata == nil {
		return ""
	}
	parent, _ := cp.Metadata[metaParentID].(string)
	return parent
}

// ThreadID returns the thread_id recorded on cp.
func ThreadID(cp *store.Checkpoint) string {
	if cp == nil || cp.Metadata == nil {
		return ""
	}
	thread, _ := cp.Metadata[metaThreadID].(string)
	return thread
}

// Discard removes a single checkpoint, e.g. after a workflow is cancelled
// mid-step and its last partial checkpoint should not be resumable.
func (s *Store) Discard(ctx context.Context, checkpointID string) error {
	return s.backend.Delete(ctx, checkpointID)
}

// Drop removes every checkpoint belonging to threadID, e.g. once a
// workflow has reached a terminal state and its history is no longer
// needed for resumption.
func (s *Store) Drop(ctx context.Context, threadID string) error {
	s.mu.Lock()
	delete(s.counters, threadID)
	s.mu.Unlock()

	return s.backend.Clear(ctx, threadID)
}

// GC trims threadID's checkpoint history down to maxKept, deleting the
// oldest checkpoints first. Pass maxKept <= 0 to use the default of 50.
func (s *Store) GC(ctx context.Context, threadID string, maxKept int) error {
	if maxKept <= 0 {
		maxKept = defaultMaxKept
	}

	checkpoints, err := s.backend.List(ctx, threadID)
	if err != nil {
		return fmt.Errorf("checkpoint: gc list thread %s: %w", threadID, err)
	}
	if len(checkpoints) <= maxKept {
		return nil
	}

	toDrop := checkpoints[:len(checkpoints)-maxKept]
	for _, cp := range toDrop {
		if err := s.backend.Delete(ctx, cp.ID); err != nil {
			return fmt.Errorf("checkpoint: gc delete %s: %w", cp.ID, err)
		}
	}

	s.logger.Debug("checkpoint gc thread=%s dropped=%d kept=%d", threadID, len(toDrop), maxKept)
	return nil
}
