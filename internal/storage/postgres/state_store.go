// Package postgres implements treasury storage on PostgreSQL. Singleton
// documents (state, metrics) live as JSONB rows pinned to id = 1; the
// activity log is a bounded row set trimmed on append.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/storage"
)

// StateStore is a PostgreSQL implementation of storage.StateStore.
type StateStore struct {
	pool *Pool
}

// NewStateStore creates a Postgres-backed state store.
func NewStateStore(pool *Pool) *StateStore {
	return &StateStore{pool: pool}
}

// Load returns the persisted state. Returns ErrNotFound before the first save.
func (s *StateStore) Load(ctx context.Context) (*domain.TreasuryState, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM treasury_state WHERE id = 1`,
	).Scan(&raw)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load treasury state: %w", err)
	}

	var out domain.TreasuryState
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode treasury state: %w", err)
	}
	out.Normalize()
	return &out, nil
}

// Save persists the full state document, replacing the previous one.
func (s *StateStore) Save(ctx context.Context, st *domain.TreasuryState) error {
	if st == nil {
		return storage.ErrInvalidInput
	}

	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode treasury state: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO treasury_state (id, doc, updated_at)
		 VALUES (1, $1, now())
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		raw,
	)
	if err != nil {
		return fmt.Errorf("save treasury state: %w", err)
	}
	return nil
}

var _ storage.StateStore = (*StateStore)(nil)
