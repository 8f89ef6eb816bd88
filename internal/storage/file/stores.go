package file

import (
	"context"
	"os"
	"sync"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/storage"
)

// StateStore persists TreasuryState as a JSON document.
type StateStore struct {
	dir *Dir
	mu  sync.Mutex
}

// NewStateStore creates a file-backed state store.
func NewStateStore(dir *Dir) *StateStore {
	return &StateStore{dir: dir}
}

// Load returns the persisted state. Returns ErrNotFound before the first save.
func (s *StateStore) Load(_ context.Context) (*domain.TreasuryState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out domain.TreasuryState
	if err := s.dir.readDoc(stateFile, &out); err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
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
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.writeDoc(stateFile, st)
}

// MetricsStore persists cumulative stats as a JSON document.
type MetricsStore struct {
	dir *Dir
	mu  sync.Mutex
}

// NewMetricsStore creates a file-backed metrics store.
func NewMetricsStore(dir *Dir) *MetricsStore {
	return &MetricsStore{dir: dir}
}

// Load returns the persisted stats. Returns ErrNotFound before the first save.
func (s *MetricsStore) Load(_ context.Context) (*domain.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out domain.Stats
	if err := s.dir.readDoc(metricsFile, &out); err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// Save persists the stats document.
func (s *MetricsStore) Save(_ context.Context, st *domain.Stats) error {
	if st == nil {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir.writeDoc(metricsFile, st)
}

// ActivityStore persists the bounded activity log as a JSON array.
type ActivityStore struct {
	dir      *Dir
	capacity int
	mu       sync.Mutex
}

// NewActivityStore creates a file-backed activity store. A non-positive
// capacity falls back to the domain default.
func NewActivityStore(dir *Dir, capacity int) *ActivityStore {
	if capacity <= 0 {
		capacity = domain.ActivityLogCapacity
	}
	return &ActivityStore{dir: dir, capacity: capacity}
}

// Append adds one entry, evicting the oldest past the capacity bound.
func (s *ActivityStore) Append(_ context.Context, e domain.ActivityEntry) error {
	if e.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []domain.ActivityEntry
	if err := s.dir.readDoc(activityFile, &entries); err != nil && !os.IsNotExist(err) {
		return err
	}

	entries = append(entries, e)
	if len(entries) > s.capacity {
		entries = entries[len(entries)-s.capacity:]
	}
	return s.dir.writeDoc(activityFile, entries)
}

// Recent returns up to limit entries, newest first.
func (s *ActivityStore) Recent(_ context.Context, limit int) ([]domain.ActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []domain.ActivityEntry
	if err := s.dir.readDoc(activityFile, &entries); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	n := len(entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.ActivityEntry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

var (
	_ storage.StateStore    = (*StateStore)(nil)
	_ storage.MetricsStore  = (*MetricsStore)(nil)
	_ storage.ActivityStore = (*ActivityStore)(nil)
)
