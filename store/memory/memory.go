// Package memory implements an in-process store.CheckpointStore backed by a
// plain map, guarded by a mutex. It is the default store for local runs and
// for tests that do not want a real database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/quillforge/core/store"
)

// MemoryCheckpointStore keeps checkpoints in memory, keyed by checkpoint ID.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]*store.Checkpoint
}

// NewMemoryCheckpointStore creates a new in-memory checkpoint store.
func NewMemoryCheckpointStore() store.CheckpointStore {
	return &MemoryCheckpointStore{
		checkpoints: make(map[string]*store.Checkpoint),
	}
}

// Save stores a checkpoint, overwriting any existing entry with the same ID.
func (m *MemoryCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checkpoints[checkpoint.ID] = checkpoint
	return nil
}

// Load retrieves a checkpoint by ID.
func (m *MemoryCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.checkpoints[checkpointID]
	if !ok {
		return nil, fmt.Errorf("checkpoint not found: %s", checkpointID)
	}
	return cp, nil
}

// List returns all checkpoints whose metadata session_id, thread_id, or
// workflow_id matches executionID, sorted ascending by Version.
func (m *MemoryCheckpointStore) List(ctx context.Context, executionID string) ([]*store.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*store.Checkpoint
	for _, cp := range m.checkpoints {
		if matchesExecution(cp, executionID) {
			result = append(result, cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})

	return result, nil
}

// Delete removes a checkpoint. Deleting a missing checkpoint is a no-op.
func (m *MemoryCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.checkpoints, checkpointID)
	return nil
}

// Clear removes every checkpoint matching executionID.
func (m *MemoryCheckpointStore) Clear(ctx context.Context, executionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, cp := range m.checkpoints {
		if matchesExecution(cp, executionID) {
			delete(m.checkpoints, id)
		}
	}

	return nil
}

func matchesExecution(cp *store.Checkpoint, executionID string) bool {
	if cp.Metadata == nil {
		return false
	}

	for _, key := range []string{"session_id", "thread_id", "workflow_id"} {
		if v, ok := cp.Metadata[key].(string); ok && v == executionID {
			return true
		}
	}
	return false
}
