package memory

import (
	"context"
	"sync"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/storage"
)

// MetricsStore is an in-memory implementation of storage.MetricsStore.
type MetricsStore struct {
	mu    sync.RWMutex
	stats *domain.Stats
}

// NewMetricsStore creates an empty in-memory metrics store.
func NewMetricsStore() *MetricsStore {
	return &MetricsStore{}
}

// Load returns the persisted stats. Returns ErrNotFound before the first save.
func (s *MetricsStore) Load(_ context.Context) (*domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stats == nil {
		return nil, storage.ErrNotFound
	}
	out := *s.stats
	return &out, nil
}

// Save persists the stats document.
func (s *MetricsStore) Save(_ context.Context, st *domain.Stats) error {
	if st == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	cp := *st
	s.stats = &cp
	s.mu.Unlock()
	return nil
}

var _ storage.MetricsStore = (*MetricsStore)(nil)
