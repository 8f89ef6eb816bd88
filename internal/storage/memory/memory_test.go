package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/storage"
)

func TestStateStore_LoadBeforeSaveReturnsNotFound(t *testing.T) {
	s := NewStateStore()
	_, err := s.Load(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStateStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	st := domain.NewTreasuryState()
	st.RecentHigh = 2.5
	st.TokensAccumulated = 777
	st.Stats.TotalBuybacks = 3
	st.PriceHistory.Push(1.1)

	if err := s.Save(ctx, st); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating the original must not affect the stored document.
	st.RecentHigh = 99

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.RecentHigh != 2.5 || got.TokensAccumulated != 777 {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Stats.TotalBuybacks != 3 {
		t.Errorf("stats lost: %+v", got.Stats)
	}
	if got.PriceHistory.Len() != 1 {
		t.Errorf("history lost: %d", got.PriceHistory.Len())
	}
}

func TestMetricsStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMetricsStore()

	if _, err := s.Load(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.Save(ctx, &domain.Stats{TotalBurns: 2, SkippedRSI: 5}); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.TotalBurns != 2 || got.SkippedRSI != 5 {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestActivityStore_BoundedNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewActivityStore(3)

	for i := 0; i < 5; i++ {
		err := s.Append(ctx, domain.ActivityEntry{
			ID:        fmt.Sprintf("e%d", i),
			Type:      domain.ActivitySkip,
			Timestamp: time.Unix(int64(i), 0),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := s.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 retained entries, got %d", len(got))
	}
	if got[0].ID != "e4" || got[2].ID != "e2" {
		t.Errorf("wrong order/eviction: %v", got)
	}

	two, _ := s.Recent(ctx, 2)
	if len(two) != 2 || two[0].ID != "e4" {
		t.Errorf("limit not honored: %v", two)
	}
}

func TestActivityStore_RejectsMissingID(t *testing.T) {
	s := NewActivityStore(0)
	err := s.Append(context.Background(), domain.ActivityEntry{})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTickArchive_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	a := NewTickArchive()

	for i := 0; i < 4; i++ {
		err := a.Insert(ctx, &domain.TickRecord{Tick: int64(i), Decision: "skip"})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	got, err := a.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].Tick != 3 || got[1].Tick != 2 {
		t.Errorf("wrong order: %+v", got)
	}
}
