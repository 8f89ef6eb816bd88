package memory

import (
	"context"
	"sync"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/storage"
)

// ActivityStore is an in-memory implementation of storage.ActivityStore.
type ActivityStore struct {
	mu       sync.RWMutex
	capacity int
	entries  []domain.ActivityEntry // oldest first
}

// NewActivityStore creates an in-memory activity store. A non-positive
// capacity falls back to the domain default.
func NewActivityStore(capacity int) *ActivityStore {
	if capacity <= 0 {
		capacity = domain.ActivityLogCapacity
	}
	return &ActivityStore{capacity: capacity}
}

// Append adds one entry, evicting the oldest past the capacity bound.
func (s *ActivityStore) Append(_ context.Context, e domain.ActivityEntry) error {
	if e.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	if len(s.entries) > s.capacity {
		s.entries = s.entries[len(s.entries)-s.capacity:]
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *ActivityStore) Recent(_ context.Context, limit int) ([]domain.ActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.entries)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]domain.ActivityEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

var _ storage.ActivityStore = (*ActivityStore)(nil)
