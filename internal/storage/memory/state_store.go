// Package memory provides in-memory storage implementations, used by
// tests and the simulate command.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/storage"
)

// StateStore is an in-memory implementation of storage.StateStore.
type StateStore struct {
	mu  sync.RWMutex
	doc []byte // JSON copy so callers never alias stored state
}

// NewStateStore creates an empty in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{}
}

// Load returns the persisted state. Returns ErrNotFound before the first save.
func (s *StateStore) Load(_ context.Context) (*domain.TreasuryState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.doc == nil {
		return nil, storage.ErrNotFound
	}

	var out domain.TreasuryState
	if err := json.Unmarshal(s.doc, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	return &out, nil
}

// Save persists the full state document.
func (s *StateStore) Save(_ context.Context, st *domain.TreasuryState) error {
	if st == nil {
		return storage.ErrInvalidInput
	}

	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.doc = raw
	s.mu.Unlock()
	return nil
}

var _ storage.StateStore = (*StateStore)(nil)
