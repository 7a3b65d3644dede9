// Package memory implements the Shared Memory Store (spec §4.1): a
// process-wide map of per-conversation state keyed by conversation_id, with
// per-conversation mutual exclusion in the style of
// memory/graph_based.go's GraphBasedMemory, generalized from one
// structure-wide lock to one lock per conversation so unrelated
// conversations never contend.
package memory

import (
	"maps"
	"sync"

	"github.com/quillforge/core/corerr"
	"github.com/quillforge/core/principal"
)

// appendKeys lists the shared-memory keys merge treats as append-semantics
// rather than shallow-overwrite.
var appendKeys = map[string]bool{
	"search_history": true,
	"tools_used":     true,
	"messages":       true,
}

type conversation struct {
	mu      sync.RWMutex
	ownerID string
	data    map[string]any
}

// Store is the Shared Memory Store.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*conversation
}

// New creates an empty Shared Memory Store.
func New() *Store {
	return &Store{
		conversations: make(map[string]*conversation),
	}
}

// Open creates (or re-opens) the memory slot for conv_id, owned by owner.
// It is idempotent: opening an already-open conversation is a no-op.
func (s *Store) Open(convID string, owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[convID]; ok {
		return
	}
	s.conversations[convID] = &conversation{
		ownerID: owner,
		data:    make(map[string]any),
	}
}

// Close destroys a conversation's memory slot.
func (s *Store) Close(convID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.conversations, convID)
}

func (s *Store) lookup(convID string, p principal.Principal) (*conversation, error) {
	s.mu.RLock()
	conv, ok := s.conversations[convID]
	s.mu.RUnlock()

	if !ok {
		return nil, corerr.New(corerr.NotFound, "conversation "+convID, nil)
	}
	if !p.CanAccess(conv.ownerID) {
		return nil, corerr.New(corerr.AccessDenied, "conversation "+convID, nil)
	}
	return conv, nil
}

// Get returns the value stored at key, and whether it was present.
func (s *Store) Get(convID string, p principal.Principal, key string) (any, bool, error) {
	conv, err := s.lookup(convID, p)
	if err != nil {
		return nil, false, err
	}

	conv.mu.RLock()
	defer conv.mu.RUnlock()

	v, ok := conv.data[key]
	return v, ok, nil
}

// Put stores value at key, overwriting any existing value.
func (s *Store) Put(convID string, p principal.Principal, key string, value any) error {
	conv, err := s.lookup(convID, p)
	if err != nil {
		return err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	conv.data[key] = value
	return nil
}

// Merge atomically shallow-merges patch into the conversation's memory.
// Lists are replaced wholesale except for the append-semantics keys
// (search_history, tools_used, messages), which are concatenated instead.
func (s *Store) Merge(convID string, p principal.Principal, patch map[string]any) error {
	conv, err := s.lookup(convID, p)
	if err != nil {
		return err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	for k, v := range patch {
		if appendKeys[k] {
			conv.data[k] = appendValue(conv.data[k], v)
			continue
		}
		conv.data[k] = v
	}
	return nil
}

func appendValue(existing, incoming any) any {
	existingSlice, _ := existing.([]any)
	switch v := incoming.(type) {
	case []any:
		return append(append([]any{}, existingSlice...), v...)
	default:
		return append(append([]any{}, existingSlice...), v)
	}
}

// Delete removes key from the conversation's memory. Deleting an absent
// key is a no-op.
func (s *Store) Delete(convID string, p principal.Principal, key string) error {
	conv, err := s.lookup(convID, p)
	if err != nil {
		return err
	}

	conv.mu.Lock()
	defer conv.mu.Unlock()

	delete(conv.data, key)
	return nil
}

// Snapshot returns an immutable copy of the conversation's entire memory
// map. Readers never observe a torn write: the copy is made under the
// conversation's read lock.
func (s *Store) Snapshot(convID string, p principal.Principal) (map[string]any, error) {
	conv, err := s.lookup(convID, p)
	if err != nil {
		return nil, err
	}

	conv.mu.RLock()
	defer conv.mu.RUnlock()

	out := make(map[string]any, len(conv.data))
	maps.Copy(out, conv.data)
	return out, nil
}
