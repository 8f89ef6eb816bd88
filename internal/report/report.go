// Package report renders operator-facing status and metrics summaries
// from the persisted treasury state.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/runway"
	"solana-treasury-agent/internal/storage"
)

// Status is a point-in-time operator snapshot.
type Status struct {
	GeneratedAt       time.Time
	Mode              domain.Mode
	RunwayDays        float64
	BalanceSOL        float64
	TokensAccumulated uint64
	RecentHigh        float64
	RecentHighAt      time.Time
	LastBuyAt         time.Time
	LastBurnAt        time.Time
	TickCount         int64
	LevelsBought      int
	PriceSamples      int
	VolumeSamples     int
}

// MetricsReport aggregates cumulative stats with recent activity.
type MetricsReport struct {
	GeneratedAt time.Time
	Stats       domain.Stats
	Recent      []domain.ActivityEntry
}

// Generator produces reports from stored data.
type Generator struct {
	stateStore    storage.StateStore
	metricsStore  storage.MetricsStore
	activityStore storage.ActivityStore
	dailyBurnSOL  float64
	now           func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a report generator reading from the given stores.
func NewGenerator(stateStore storage.StateStore, metricsStore storage.MetricsStore, activityStore storage.ActivityStore, dailyBurnSOL float64) *Generator {
	return &Generator{
		stateStore:    stateStore,
		metricsStore:  metricsStore,
		activityStore: activityStore,
		dailyBurnSOL:  dailyBurnSOL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Status builds the status snapshot. balanceSOL comes from the caller
// because reading it needs the executor, not storage.
func (g *Generator) Status(ctx context.Context, balanceSOL float64) (*Status, error) {
	state, err := g.stateStore.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		state = domain.NewTreasuryState()
	} else if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	return &Status{
		GeneratedAt:       g.now(),
		Mode:              state.CurrentMode,
		RunwayDays:        runway.Days(balanceSOL, g.dailyBurnSOL),
		BalanceSOL:        balanceSOL,
		TokensAccumulated: state.TokensAccumulated,
		RecentHigh:        state.RecentHigh,
		RecentHighAt:      state.RecentHighAt,
		LastBuyAt:         state.LastBuyAt,
		LastBurnAt:        state.LastBurnAt,
		TickCount:         state.TickCount,
		LevelsBought:      len(state.SupportLevelsBought),
		PriceSamples:      len(state.PriceHistory.Samples),
		VolumeSamples:     len(state.VolumeHistory.Samples),
	}, nil
}

// Metrics builds the cumulative metrics report with up to limit recent
// activity entries.
func (g *Generator) Metrics(ctx context.Context, limit int) (*MetricsReport, error) {
	stats, err := g.metricsStore.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		stats = &domain.Stats{}
	} else if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	var recent []domain.ActivityEntry
	if g.activityStore != nil && limit > 0 {
		recent, err = g.activityStore.Recent(ctx, limit)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load activity: %w", err)
		}
	}

	return &MetricsReport{
		GeneratedAt: g.now(),
		Stats:       *stats,
		Recent:      recent,
	}, nil
}
