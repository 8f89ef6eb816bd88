package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/storage"
	pgstore "solana-treasury-agent/internal/storage/postgres"
)

func TestStateStore_SaveLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewStateStore(pool)

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)

	st := domain.NewTreasuryState()
	st.RecentHigh = 0.0042
	st.TokensAccumulated = 123_456
	st.Stats.TotalBuybacks = 9
	st.SupportLevelsBought["drop-20"] = domain.LevelPurchase{
		Timestamp: time.Now().UTC().Truncate(time.Second),
		AmountSOL: 0.5,
	}
	st.PriceHistory.Push(0.004)
	require.NoError(t, store.Save(ctx, st))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, st.RecentHigh, got.RecentHigh)
	require.Equal(t, st.TokensAccumulated, got.TokensAccumulated)
	require.Equal(t, int64(9), got.Stats.TotalBuybacks)
	require.Contains(t, got.SupportLevelsBought, "drop-20")
	require.Equal(t, 1, got.PriceHistory.Len())

	// Save replaces the singleton document.
	st.RecentHigh = 0.005
	require.NoError(t, store.Save(ctx, st))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 0.005, got.RecentHigh)
}

func TestMetricsStore_SaveLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewMetricsStore(pool)

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, storage.ErrNotFound)

	stats := &domain.Stats{TotalBurns: 4, TotalTokensBurned: 5_000_000, SkippedRSI: 11}
	require.NoError(t, store.Save(ctx, stats))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, *stats, *got)
}

func TestActivityStore_AppendTrimsToCapacity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewActivityStore(pool, 3)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		err := store.Append(ctx, domain.ActivityEntry{
			ID:        uuid.NewString(),
			Type:      domain.ActivitySkip,
			Content:   fmt.Sprintf("entry %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Source:    "test",
		})
		require.NoError(t, err)
	}

	got, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "entry 4", got[0].Content)
	require.Equal(t, "entry 2", got[2].Content)
}

func TestActivityStore_RejectsMissingID(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewActivityStore(pool, 0)
	err := store.Append(context.Background(), domain.ActivityEntry{})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}
