// Package storage defines the persistence contracts for the treasury
// controller. The treasury state document is the single source of truth:
// it is read at the start of a tick and written at the end, by one
// instance only.
package storage

import (
	"context"

	"solana-treasury-agent/internal/domain"
)

// StateStore persists the singleton TreasuryState document.
type StateStore interface {
	// Load returns the persisted state. Returns ErrNotFound before the
	// first save; callers start from zeroed defaults in that case.
	Load(ctx context.Context) (*domain.TreasuryState, error)

	// Save persists the full state document, replacing the previous one.
	Save(ctx context.Context, s *domain.TreasuryState) error
}

// MetricsStore persists the cumulative stats document. Stats also travel
// inside the state document; this store exposes them as a standalone
// document for the operator metrics surface.
type MetricsStore interface {
	// Load returns the persisted stats. Returns ErrNotFound before the
	// first save.
	Load(ctx context.Context) (*domain.Stats, error)

	// Save persists the stats document.
	Save(ctx context.Context, st *domain.Stats) error
}

// ActivityStore is the append-only bounded audit trail.
type ActivityStore interface {
	// Append adds one entry, evicting the oldest past the capacity bound.
	Append(ctx context.Context, e domain.ActivityEntry) error

	// Recent returns up to limit entries, newest first. A non-positive
	// limit returns everything retained.
	Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
}

// TickArchive records every tick outcome for long-horizon transparency
// reporting. Optional: backends may be absent in minimal deployments.
type TickArchive interface {
	// Insert appends one tick record.
	Insert(ctx context.Context, r *domain.TickRecord) error

	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*domain.TickRecord, error)
}
