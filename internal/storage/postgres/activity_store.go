package postgres

import (
	"context"
	"fmt"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/storage"
)

// ActivityStore is a PostgreSQL implementation of storage.ActivityStore.
type ActivityStore struct {
	pool     *Pool
	capacity int
}

// NewActivityStore creates a Postgres-backed activity store. A
// non-positive capacity falls back to the domain default.
func NewActivityStore(pool *Pool, capacity int) *ActivityStore {
	if capacity <= 0 {
		capacity = domain.ActivityLogCapacity
	}
	return &ActivityStore{pool: pool, capacity: capacity}
}

// Append adds one entry and trims rows past the capacity bound, oldest
// first.
func (s *ActivityStore) Append(ctx context.Context, e domain.ActivityEntry) error {
	if e.ID == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO activity_log (id, entry_type, content, result, source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, string(e.Type), e.Content, e.Result, e.Source, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert activity entry: %w", err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM activity_log WHERE id NOT IN (
		    SELECT id FROM activity_log ORDER BY created_at DESC, id DESC LIMIT $1
		 )`,
		s.capacity,
	)
	if err != nil {
		return fmt.Errorf("trim activity log: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *ActivityStore) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 || limit > s.capacity {
		limit = s.capacity
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, entry_type, content, result, source, created_at
		 FROM activity_log
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query activity log: %w", err)
	}
	defer rows.Close()

	var out []domain.ActivityEntry
	for rows.Next() {
		var e domain.ActivityEntry
		var typ string
		if err := rows.Scan(&e.ID, &typ, &e.Content, &e.Result, &e.Source, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan activity entry: %w", err)
		}
		e.Type = domain.ActivityType(typ)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity log: %w", err)
	}
	return out, nil
}

var _ storage.ActivityStore = (*ActivityStore)(nil)
