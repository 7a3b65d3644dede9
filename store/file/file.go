// Package file implements a store.CheckpointStore backed by one JSON file
// per checkpoint on the local filesystem.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/quillforge/core/store"
)

// FileCheckpointStore persists each checkpoint as <path>/<id>.json.
type FileCheckpointStore struct {
	mu   sync.Mutex
	path string
}

// NewFileCheckpointStore creates the checkpoint directory if it does not
// already exist and returns a store rooted there.
func NewFileCheckpointStore(path string) (store.CheckpointStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	return &FileCheckpointStore{path: path}, nil
}

func (f *FileCheckpointStore) filename(id string) string {
	return filepath.Join(f.path, id+".json")
}

// Save writes the checkpoint to disk, overwriting any existing file.
func (f *FileCheckpointStore) Save(ctx context.Context, checkpoint *store.Checkpoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	if err := os.WriteFile(f.filename(checkpoint.ID), data, 0600); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}

	return nil
}

// Load reads a checkpoint back from disk.
func (f *FileCheckpointStore) Load(ctx context.Context, checkpointID string) (*store.Checkpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.load(checkpointID)
}

func (f *FileCheckpointStore) load(checkpointID string) (*store.Checkpoint, error) {
	data, err := os.ReadFile(f.filename(checkpointID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("checkpoint not found: %s", checkpointID)
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var cp store.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}

	return &cp, nil
}

// List returns every checkpoint whose metadata session_id, thread_id, or
// workflow_id matches executionID, sorted ascending by Version.
func (f *FileCheckpointStore) List(ctx context.Context, executionID string) ([]*store.Checkpoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	var result []*store.Checkpoint
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		id := entry.Name()[:len(entry.Name())-len(".json")]
		cp, err := f.load(id)
		if err != nil {
			continue
		}

		if matchesExecution(cp, executionID) {
			result = append(result, cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})

	return result, nil
}

// Delete removes a checkpoint file. Deleting a missing checkpoint is a no-op.
func (f *FileCheckpointStore) Delete(ctx context.Context, checkpointID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.filename(checkpointID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint file: %w", err)
	}

	return nil
}

// Clear removes every checkpoint file matching executionID.
func (f *FileCheckpointStore) Clear(ctx context.Context, executionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.path)
	if err != nil {
		return fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		id := entry.Name()[:len(entry.Name())-len(".json")]
		cp, err := f.load(id)
		if err != nil {
			continue
		}

		if matchesExecution(cp, executionID) {
			if err := os.Remove(f.filename(id)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove checkpoint file: %w", err)
			}
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
