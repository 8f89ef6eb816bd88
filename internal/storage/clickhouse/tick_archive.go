package clickhouse

import (
	"context"
	"fmt"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/storage"
)

// TickArchive implements storage.TickArchive using ClickHouse.
type TickArchive struct {
	conn *Conn
}

// NewTickArchive creates a ClickHouse-backed tick archive.
func NewTickArchive(conn *Conn) *TickArchive {
	return &TickArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.TickArchive = (*TickArchive)(nil)

// Insert appends one tick record.
func (a *TickArchive) Insert(ctx context.Context, r *domain.TickRecord) error {
	if r == nil {
		return storage.ErrInvalidInput
	}

	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO tick_archive (
			ts, tick, price_sol, price_usd, liquidity_usd, volume_24h_usd,
			rsi, momentum, runway_days, mode, decision, reason, amount_sol, signature
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		r.Timestamp, r.Tick, r.PriceSOL, r.PriceUSD, r.LiquidityUSD, r.Volume24hUSD,
		r.RSI, r.Momentum, r.RunwayDays, string(r.Mode), r.Decision, r.Reason,
		r.AmountSOL, r.Signature,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (a *TickArchive) Recent(ctx context.Context, limit int) ([]*domain.TickRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := a.conn.Query(ctx, `
		SELECT ts, tick, price_sol, price_usd, liquidity_usd, volume_24h_usd,
		       rsi, momentum, runway_days, mode, decision, reason, amount_sol, signature
		FROM tick_archive
		ORDER BY ts DESC, tick DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query tick archive: %w", err)
	}
	defer rows.Close()

	var out []*domain.TickRecord
	for rows.Next() {
		var r domain.TickRecord
		var mode string
		err := rows.Scan(
			&r.Timestamp, &r.Tick, &r.PriceSOL, &r.PriceUSD, &r.LiquidityUSD,
			&r.Volume24hUSD, &r.RSI, &r.Momentum, &r.RunwayDays, &mode,
			&r.Decision, &r.Reason, &r.AmountSOL, &r.Signature,
		)
		if err != nil {
			return nil, fmt.Errorf("scan tick record: %w", err)
		}
		r.Mode = domain.Mode(mode)
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tick archive: %w", err)
	}
	return out, nil
}
