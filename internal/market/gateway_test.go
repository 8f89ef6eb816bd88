package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const twoPairsBody = `{
  "schemaVersion": "1.0.0",
  "pairs": [
    {
      "chainId": "solana",
      "pairAddress": "thin",
      "priceNative": "0.0009",
      "priceUsd": "0.13",
      "liquidity": {"usd": 5000},
      "volume": {"h24": 800, "h1": 40},
      "priceChange": {"h1": -1.2, "h6": -3.4, "h24": 2.2},
      "txns": {"h24": {"buys": 10, "sells": 5}}
    },
    {
      "chainId": "solana",
      "pairAddress": "deep",
      "priceNative": "0.001",
      "priceUsd": "0.15",
      "liquidity": {"usd": 250000},
      "volume": {"h24": 42000, "h1": 2100},
      "priceChange": {"h1": 0.5, "h6": -2.0, "h24": 4.1},
      "txns": {"h24": {"buys": 120, "sells": 80}}
    }
  ]
}`

func TestSnapshot_SelectsHighestLiquidityPair(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(twoPairsBody))
	}))
	defer srv.Close()

	fixed := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	g := NewGateway("MINT", WithEndpoint(srv.URL), WithClock(func() time.Time { return fixed }))

	snap, err := g.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if snap.PriceSOL != 0.001 || snap.PriceUSD != 0.15 {
		t.Errorf("wrong pair selected: %+v", snap)
	}
	if snap.LiquidityUSD != 250000 || snap.Volume24hUSD != 42000 {
		t.Errorf("liquidity/volume mismatch: %+v", snap)
	}
	if snap.TxCount24h != 200 {
		t.Errorf("expected 200 txns, got %d", snap.TxCount24h)
	}
	if !snap.Timestamp.Equal(fixed) {
		t.Errorf("expected fixed timestamp, got %v", snap.Timestamp)
	}
}

func TestSnapshot_MissingFieldsDefaultToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": [{"pairAddress": "bare"}]}`))
	}))
	defer srv.Close()

	g := NewGateway("MINT", WithEndpoint(srv.URL))
	snap, err := g.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	if snap.PriceSOL != 0 || snap.PriceUSD != 0 || snap.LiquidityUSD != 0 {
		t.Errorf("expected zero defaults, got %+v", snap)
	}
}

func TestSnapshot_NoPairsIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": []}`))
	}))
	defer srv.Close()

	g := NewGateway("MINT", WithEndpoint(srv.URL))
	if _, err := g.Snapshot(context.Background()); err == nil {
		t.Fatal("expected error for empty pair list")
	}
}

func TestSnapshot_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(twoPairsBody))
	}))
	defer srv.Close()

	g := NewGateway("MINT", WithEndpoint(srv.URL), WithMaxRetries(5))
	snap, err := g.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if snap.PriceSOL != 0.001 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls, got %d", calls.Load())
	}
}

func TestSnapshot_NegativePriceClampsToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": [{"priceNative": "-1", "liquidity": {"usd": 10}}]}`))
	}))
	defer srv.Close()

	g := NewGateway("MINT", WithEndpoint(srv.URL))
	snap, err := g.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.PriceSOL != 0 {
		t.Errorf("expected clamp to 0, got %f", snap.PriceSOL)
	}
}
