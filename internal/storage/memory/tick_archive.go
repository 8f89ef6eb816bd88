package memory

import (
	"context"
	"sync"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/storage"
)

// TickArchive is an in-memory implementation of storage.TickArchive.
type TickArchive struct {
	mu      sync.RWMutex
	records []*domain.TickRecord // oldest first
}

// NewTickArchive creates an empty in-memory tick archive.
func NewTickArchive() *TickArchive {
	return &TickArchive{}
}

// Insert appends one tick record.
func (a *TickArchive) Insert(_ context.Context, r *domain.TickRecord) error {
	if r == nil {
		return storage.ErrInvalidInput
	}

	a.mu.Lock()
	cp := *r
	a.records = append(a.records, &cp)
	a.mu.Unlock()
	return nil
}

// Recent returns up to limit records, newest first.
func (a *TickArchive) Recent(_ context.Context, limit int) ([]*domain.TickRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := len(a.records)
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]*domain.TickRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		cp := *a.records[i]
		out = append(out, &cp)
	}
	return out, nil
}

var _ storage.TickArchive = (*TickArchive)(nil)
