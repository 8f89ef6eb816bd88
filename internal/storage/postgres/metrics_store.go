package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/storage"
)

// MetricsStore is a PostgreSQL implementation of storage.MetricsStore.
type MetricsStore struct {
	pool *Pool
}

// NewMetricsStore creates a Postgres-backed metrics store.
func NewMetricsStore(pool *Pool) *MetricsStore {
	return &MetricsStore{pool: pool}
}

// Load returns the persisted stats. Returns ErrNotFound before the first save.
func (s *MetricsStore) Load(ctx context.Context) (*domain.Stats, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM treasury_metrics WHERE id = 1`,
	).Scan(&raw)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	var out domain.Stats
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode metrics: %w", err)
	}
	return &out, nil
}

// Save persists the stats document.
func (s *MetricsStore) Save(ctx context.Context, st *domain.Stats) error {
	if st == nil {
		return storage.ErrInvalidInput
	}

	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO treasury_metrics (id, doc, updated_at)
		 VALUES (1, $1, now())
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		raw,
	)
	if err != nil {
		return fmt.Errorf("save metrics: %w", err)
	}
	return nil
}

var _ storage.MetricsStore = (*MetricsStore)(nil)
