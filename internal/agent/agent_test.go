package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"solana-treasury-agent/internal/burn"
	"solana-treasury-agent/internal/buyback"
	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/executor"
	"solana-treasury-agent/internal/runway"
	"solana-treasury-agent/internal/storage/memory"
)

type fakeMarket struct {
	snap domain.MarketSnapshot
	err  error
}

func (f *fakeMarket) Snapshot(context.Context) (domain.MarketSnapshot, error) {
	return f.snap, f.err
}

type fakeExecutor struct {
	balance      float64
	tokensPerBuy uint64
	buyErr       error
	burnErr      error

	buys   []float64
	burns  []uint64
	locks  []uint64
	nextID int
}

func (f *fakeExecutor) Buy(_ context.Context, amountSOL float64) (executor.BuyResult, error) {
	if f.buyErr != nil {
		return executor.BuyResult{}, f.buyErr
	}
	f.buys = append(f.buys, amountSOL)
	f.nextID++
	return executor.BuyResult{
		Signature:      fmt.Sprintf("sig-buy-%d", f.nextID),
		SOLSpent:       amountSOL,
		TokensReceived: f.tokensPerBuy,
	}, nil
}

func (f *fakeExecutor) Burn(_ context.Context, tokens uint64) (executor.BurnResult, error) {
	if f.burnErr != nil {
		return executor.BurnResult{}, f.burnErr
	}
	f.burns = append(f.burns, tokens)
	f.nextID++
	return executor.BurnResult{Signature: fmt.Sprintf("sig-burn-%d", f.nextID), TokensBurned: tokens}, nil
}

func (f *fakeExecutor) Lock(_ context.Context, tokens uint64) (executor.LockResult, error) {
	f.locks = append(f.locks, tokens)
	f.nextID++
	return executor.LockResult{Signature: fmt.Sprintf("sig-lock-%d", f.nextID), TokensLocked: tokens}, nil
}

func (f *fakeExecutor) BalanceSOL(context.Context) (float64, error) {
	return f.balance, nil
}

func (f *fakeExecutor) TokenBalance(context.Context) (uint64, error) {
	return 0, nil
}

type harness struct {
	agent    *Agent
	market   *fakeMarket
	exec     *fakeExecutor
	states   *memory.StateStore
	metrics  *memory.MetricsStore
	activity *memory.ActivityStore
	archive  *memory.TickArchive
	clock    *time.Time
}

func healthySnapshot(price float64) domain.MarketSnapshot {
	return domain.MarketSnapshot{
		PriceSOL:     price,
		PriceUSD:     price * 150,
		LiquidityUSD: 500_000,
		Volume24hUSD: 50_000,
		Volume1hUSD:  2_500,
	}
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	h := &harness{
		market:   &fakeMarket{snap: healthySnapshot(0.001)},
		exec:     &fakeExecutor{balance: 30, tokensPerBuy: 100_000},
		states:   memory.NewStateStore(),
		metrics:  memory.NewMetricsStore(),
		activity: memory.NewActivityStore(domain.ActivityLogCapacity),
		archive:  memory.NewTickArchive(),
		clock:    &start,
	}

	a, err := New(Options{
		Config:   cfg,
		Market:   h.market,
		Executor: h.exec,
		Engine:   buyback.NewEngine(buyback.DefaultConfig()),
		Burner:   burn.NewScheduler(0),
		States:   h.states,
		Metrics:  h.metrics,
		Activity: h.activity,
		Archive:  h.archive,
		Now:      func() time.Time { return *h.clock },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.agent = a
	return h
}

func enabledConfig() Config {
	return Config{
		TickInterval: time.Minute,
		Enabled:      true,
		DailyBurnSOL: 1,
		Runway:       runway.DefaultThresholds(),
	}
}

func (h *harness) tick(t *testing.T) {
	t.Helper()
	if err := h.agent.Tick(context.Background()); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	*h.clock = h.clock.Add(time.Minute)
}

func (h *harness) state(t *testing.T) *domain.TreasuryState {
	t.Helper()
	s, err := h.states.Load(context.Background())
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	return s
}

func (h *harness) activityTypes(t *testing.T) []domain.ActivityType {
	t.Helper()
	entries, err := h.activity.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	types := make([]domain.ActivityType, len(entries))
	for i, e := range entries {
		types[i] = e.Type
	}
	return types
}

func TestFirstTickSeedsHighWithoutBuying(t *testing.T) {
	h := newHarness(t, enabledConfig())
	h.tick(t)

	s := h.state(t)
	if s.RecentHigh != 0.001 {
		t.Errorf("RecentHigh = %f", s.RecentHigh)
	}
	if len(h.exec.buys) != 0 {
		t.Errorf("no buy expected on seed tick, got %v", h.exec.buys)
	}
	if s.TickCount != 1 {
		t.Errorf("TickCount = %d", s.TickCount)
	}
}

func TestDropTriggersTierBuy(t *testing.T) {
	h := newHarness(t, enabledConfig())
	h.tick(t) // seed high at 0.001

	h.market.snap = healthySnapshot(0.00085) // 15% below high
	h.tick(t)

	if len(h.exec.buys) != 1 || h.exec.buys[0] != 0.25 {
		t.Fatalf("expected one 0.25 SOL buy, got %v", h.exec.buys)
	}

	s := h.state(t)
	if _, ok := s.SupportLevelsBought["drop-10"]; !ok {
		t.Error("drop-10 tier should be consumed")
	}
	if s.TokensAccumulated != 100_000 {
		t.Errorf("TokensAccumulated = %d", s.TokensAccumulated)
	}
	if s.Stats.TotalBuybacks != 1 || s.Stats.TotalSOLSpent != 0.25 {
		t.Errorf("stats = %+v", s.Stats)
	}
	if s.LastBuyAt.IsZero() {
		t.Error("LastBuyAt should be set")
	}

	found := false
	for _, typ := range h.activityTypes(t) {
		if typ == domain.ActivityBuyback {
			found = true
		}
	}
	if !found {
		t.Error("expected BUYBACK activity entry")
	}
}

func TestBurnFiresAtThresholdAndResetsAccumulator(t *testing.T) {
	h := newHarness(t, enabledConfig())
	h.exec.tokensPerBuy = 300_000

	seed := domain.NewTreasuryState()
	seed.TokensAccumulated = 900_000
	seed.RecentHigh = 0.001
	if err := h.states.Save(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	h.market.snap = healthySnapshot(0.00085)
	h.tick(t)

	if len(h.exec.burns) != 1 || h.exec.burns[0] != 1_200_000 {
		t.Fatalf("expected burn of 1200000, got %v", h.exec.burns)
	}
	s := h.state(t)
	if s.TokensAccumulated != 0 {
		t.Errorf("accumulator = %d, want 0", s.TokensAccumulated)
	}
	if s.Stats.TotalTokensBurned != 1_200_000 || s.Stats.TotalBurns != 1 {
		t.Errorf("stats = %+v", s.Stats)
	}
	if s.LastBurnAt.IsZero() {
		t.Error("LastBurnAt should be set")
	}
}

func TestBelowThresholdDoesNotBurn(t *testing.T) {
	h := newHarness(t, enabledConfig())
	h.exec.tokensPerBuy = 100_000

	h.tick(t)
	h.market.snap = healthySnapshot(0.00085)
	h.tick(t)

	if len(h.exec.burns) != 0 {
		t.Errorf("no burn expected, got %v", h.exec.burns)
	}
	if s := h.state(t); s.TokensAccumulated != 100_000 {
		t.Errorf("accumulator = %d", s.TokensAccumulated)
	}
}

func TestMarketFailureSkipsDecisionButPersistsTick(t *testing.T) {
	h := newHarness(t, enabledConfig())
	h.market.err = errors.New("api down")

	h.tick(t)

	s := h.state(t)
	if s.TickCount != 1 {
		t.Errorf("TickCount = %d", s.TickCount)
	}
	if len(h.exec.buys) != 0 {
		t.Error("no buy on failed fetch")
	}
	if s.PriceHistory.Len() != 0 {
		t.Error("no sample should be pushed on failed fetch")
	}

	types := h.activityTypes(t)
	if len(types) == 0 || types[0] != domain.ActivityError {
		t.Errorf("expected ERROR activity, got %v", types)
	}
}

func TestLowRunwayPausesAndBlocksBuys(t *testing.T) {
	h := newHarness(t, enabledConfig())
	h.exec.balance = 5 // 5 days at 1 SOL/day, below the 7 day floor

	h.tick(t)
	h.market.snap = healthySnapshot(0.00085)
	h.tick(t)

	s := h.state(t)
	if s.CurrentMode != domain.ModePaused {
		t.Errorf("mode = %s", s.CurrentMode)
	}
	if len(h.exec.buys) != 0 {
		t.Errorf("paused treasury must not buy, got %v", h.exec.buys)
	}

	found := false
	for _, typ := range h.activityTypes(t) {
		if typ == domain.ActivityModeChange {
			found = true
		}
	}
	if !found {
		t.Error("expected MODE_CHANGE activity entry")
	}
	if s.LastModeChangeAt.IsZero() {
		t.Error("LastModeChangeAt should be set")
	}
}

func TestConservativeModeHalvesBuySize(t *testing.T) {
	h := newHarness(t, enabledConfig())
	h.exec.balance = 10 // 10 days runway: CONSERVATIVE

	h.tick(t)
	h.market.snap = healthySnapshot(0.00085)
	h.tick(t)

	if len(h.exec.buys) != 1 || h.exec.buys[0] != 0.125 {
		t.Fatalf("expected halved 0.125 SOL buy, got %v", h.exec.buys)
	}
}

func TestFailedBuyLeavesCooldownAndTiersUntouched(t *testing.T) {
	h := newHarness(t, enabledConfig())

	h.tick(t)
	h.market.snap = healthySnapshot(0.00085)
	h.exec.buyErr = errors.New("swap reverted")
	h.tick(t)

	s := h.state(t)
	if !s.LastBuyAt.IsZero() {
		t.Error("failed buy must not start cooldown")
	}
	if len(s.SupportLevelsBought) != 0 {
		t.Error("failed buy must not consume the tier")
	}
	if s.Stats.TotalBuybacks != 0 {
		t.Errorf("stats advanced on failure: %+v", s.Stats)
	}

	// Next tick retries the same decision once the executor recovers.
	h.exec.buyErr = nil
	h.tick(t)
	if len(h.exec.buys) != 1 || h.exec.buys[0] != 0.25 {
		t.Fatalf("expected retry buy, got %v", h.exec.buys)
	}
}

func TestFailedBurnKeepsAccumulator(t *testing.T) {
	h := newHarness(t, enabledConfig())
	h.exec.burnErr = errors.New("burn reverted")

	seed := domain.NewTreasuryState()
	seed.TokensAccumulated = 1_500_000
	seed.RecentHigh = 0.001
	if err := h.states.Save(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	h.tick(t)

	if s := h.state(t); s.TokensAccumulated != 1_500_000 {
		t.Errorf("accumulator = %d, want unchanged", s.TokensAccumulated)
	}
}

func TestNewHighClearsConsumedTiers(t *testing.T) {
	h := newHarness(t, enabledConfig())

	h.tick(t)
	h.market.snap = healthySnapshot(0.00085)
	h.tick(t) // consumes drop-10

	// Past the cooldown, otherwise the cooldown gate rejects before the
	// recent-high bookkeeping runs.
	*h.clock = h.clock.Add(61 * time.Minute)
	h.market.snap = healthySnapshot(0.0012) // new high
	h.tick(t)

	s := h.state(t)
	if s.RecentHigh != 0.0012 {
		t.Errorf("RecentHigh = %f", s.RecentHigh)
	}
	if len(s.SupportLevelsBought) != 0 {
		t.Errorf("tiers should clear on new high: %v", s.SupportLevelsBought)
	}
	if len(h.exec.buys) != 1 {
		t.Errorf("new-high tick must not buy, got %v", h.exec.buys)
	}
}

func TestCooldownBlocksBackToBackBuys(t *testing.T) {
	h := newHarness(t, enabledConfig())

	h.tick(t)
	h.market.snap = healthySnapshot(0.00085)
	h.tick(t) // buys drop-10

	h.market.snap = healthySnapshot(0.00075) // 25% drop, deeper tier
	h.tick(t)                                // one minute later: cooldown

	if len(h.exec.buys) != 1 {
		t.Fatalf("cooldown should block second buy, got %v", h.exec.buys)
	}
	if s := h.state(t); s.Stats.SkippedCooldown == 0 {
		t.Error("cooldown skip counter should advance")
	}

	// Past the cooldown the deeper tier buys.
	*h.clock = h.clock.Add(61 * time.Minute)
	h.tick(t)
	if len(h.exec.buys) != 2 || h.exec.buys[1] != 0.5 {
		t.Fatalf("expected 0.5 SOL drop-20 buy, got %v", h.exec.buys)
	}
}

func TestDisabledAgentObservesOnly(t *testing.T) {
	cfg := enabledConfig()
	cfg.Enabled = false
	h := newHarness(t, cfg)

	h.tick(t)
	h.market.snap = healthySnapshot(0.00085)
	h.tick(t)

	if len(h.exec.buys) != 0 {
		t.Errorf("disabled agent must not buy, got %v", h.exec.buys)
	}
	s := h.state(t)
	if s.TickCount != 2 {
		t.Errorf("TickCount = %d", s.TickCount)
	}
	if s.PriceHistory.Len() != 2 {
		t.Errorf("histories should still fill, got %d", s.PriceHistory.Len())
	}
}

func TestDryRunExecutorFollowsSameDecisions(t *testing.T) {
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	clock := &start

	states := memory.NewStateStore()
	market := &fakeMarket{snap: healthySnapshot(0.001)}
	dry := executor.NewDryRun(30, 0, func() float64 { return 0.00085 }, nil)

	a, err := New(Options{
		Config:   enabledConfig(),
		Market:   market,
		Executor: dry,
		Engine:   buyback.NewEngine(buyback.DefaultConfig()),
		Burner:   burn.NewScheduler(0),
		States:   states,
		Metrics:  memory.NewMetricsStore(),
		Activity: memory.NewActivityStore(50),
		Now:      func() time.Time { return *clock },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := a.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}
	*clock = clock.Add(time.Minute)

	market.snap = healthySnapshot(0.00085)
	if err := a.Tick(ctx); err != nil {
		t.Fatalf("tick: %v", err)
	}

	s, err := states.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Stats.TotalBuybacks != 1 {
		t.Errorf("dry-run buy should be recorded, stats = %+v", s.Stats)
	}

	balance, _ := dry.BalanceSOL(ctx)
	if balance != 29.75 {
		t.Errorf("simulated balance = %f, want 29.75", balance)
	}
}

func TestTickArchiveRecordsDecisions(t *testing.T) {
	h := newHarness(t, enabledConfig())

	h.tick(t)
	h.market.snap = healthySnapshot(0.00085)
	h.tick(t)

	records, err := h.archive.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 archived ticks, got %d", len(records))
	}
	// Newest first.
	if records[0].Decision != "buy" || records[0].AmountSOL != 0.25 {
		t.Errorf("latest record = %+v", records[0])
	}
	if records[1].Decision != "skip" {
		t.Errorf("seed record = %+v", records[1])
	}
}

func TestLockTokensUpdatesStatsAndAudit(t *testing.T) {
	h := newHarness(t, enabledConfig())

	result, err := h.agent.LockTokens(context.Background(), 250_000)
	if err != nil {
		t.Fatalf("LockTokens: %v", err)
	}
	if result.TokensLocked != 250_000 {
		t.Errorf("TokensLocked = %d", result.TokensLocked)
	}

	s := h.state(t)
	if s.Stats.TotalLocks != 1 || s.Stats.TotalTokensLocked != 250_000 {
		t.Errorf("stats = %+v", s.Stats)
	}

	found := false
	for _, typ := range h.activityTypes(t) {
		if typ == domain.ActivityLock {
			found = true
		}
	}
	if !found {
		t.Error("expected LOCK activity entry")
	}
}

func TestMetricsDocumentMirrorsStateStats(t *testing.T) {
	h := newHarness(t, enabledConfig())

	h.tick(t)
	h.market.snap = healthySnapshot(0.00085)
	h.tick(t)

	stats, err := h.metrics.Load(context.Background())
	if err != nil {
		t.Fatalf("load metrics: %v", err)
	}
	if stats.TotalBuybacks != 1 {
		t.Errorf("metrics doc = %+v", stats)
	}
}
