// Package agent runs the control loop: observe the market, derive the
// treasury posture, decide buybacks and burns, execute, persist, audit.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"solana-treasury-agent/internal/burn"
	"solana-treasury-agent/internal/buyback"
	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/executor"
	"solana-treasury-agent/internal/observability"
	"solana-treasury-agent/internal/runway"
	"solana-treasury-agent/internal/storage"
)

// activitySource tags audit entries written by the loop.
const activitySource = "agent"

// MarketSource supplies market snapshots. Satisfied by market.Gateway.
type MarketSource interface {
	Snapshot(ctx context.Context) (domain.MarketSnapshot, error)
}

// Config holds the loop parameters.
type Config struct {
	// TickInterval is the timer period.
	TickInterval time.Duration
	// Enabled gates decisions; a disabled agent still observes and
	// persists but never buys or burns.
	Enabled bool
	// DryRun is recorded in audit entries; the executor wired in decides
	// whether transactions are real.
	DryRun bool
	// DailyBurnSOL is the estimated spend rate for the runway estimate.
	DailyBurnSOL float64
	// Runway maps runway days to operating modes.
	Runway runway.Thresholds
}

// Options wires the agent's collaborators.
type Options struct {
	Config   Config
	Market   MarketSource
	Executor executor.Executor
	Engine   *buyback.Engine
	Burner   *burn.Scheduler
	States   storage.StateStore
	Metrics  storage.MetricsStore
	Activity storage.ActivityStore
	// Archive is optional; nil disables tick archiving.
	Archive storage.TickArchive
	Logger  logrus.FieldLogger
	// Now is an injectable clock for deterministic tests.
	Now func() time.Time
}

// Agent owns the tick function and all state transitions.
type Agent struct {
	cfg      Config
	market   MarketSource
	exec     executor.Executor
	engine   *buyback.Engine
	burner   *burn.Scheduler
	states   storage.StateStore
	metrics  storage.MetricsStore
	activity storage.ActivityStore
	archive  storage.TickArchive
	log      logrus.FieldLogger
	now      func() time.Time
}

// New creates an agent. Market, Executor, Engine, Burner, States,
// Metrics and Activity are required.
func New(opts Options) (*Agent, error) {
	if opts.Market == nil || opts.Executor == nil || opts.Engine == nil || opts.Burner == nil {
		return nil, fmt.Errorf("market, executor, engine and burner are required")
	}
	if opts.States == nil || opts.Metrics == nil || opts.Activity == nil {
		return nil, fmt.Errorf("state, metrics and activity stores are required")
	}
	if opts.Config.TickInterval <= 0 {
		opts.Config.TickInterval = 60 * time.Second
	}
	if opts.Config.DailyBurnSOL <= 0 {
		opts.Config.DailyBurnSOL = 1
	}
	if opts.Config.Runway == (runway.Thresholds{}) {
		opts.Config.Runway = runway.DefaultThresholds()
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &Agent{
		cfg:      opts.Config,
		market:   opts.Market,
		exec:     opts.Executor,
		engine:   opts.Engine,
		burner:   opts.Burner,
		states:   opts.States,
		metrics:  opts.Metrics,
		activity: opts.Activity,
		archive:  opts.Archive,
		log:      log.WithField("component", "agent"),
		now:      now,
	}, nil
}

// Tick runs one full control-loop iteration. Transient market or balance
// failures skip the decision portion and are not returned as errors; only
// persistence failures are.
func (a *Agent) Tick(ctx context.Context) error {
	started := a.now()

	state, err := a.loadState(ctx)
	if err != nil {
		observability.RecordTickError("load")
		return err
	}
	state.TickCount++

	fetchStart := a.now()
	snap, err := a.market.Snapshot(ctx)
	observability.RecordMarketFetch(a.now().Sub(fetchStart).Seconds(), err)
	if err != nil {
		return a.skipTick(ctx, state, "market", err)
	}

	state.PriceHistory.Push(snap.PriceSOL)
	state.VolumeHistory.Push(snap.Volume24hUSD)

	balance, err := a.exec.BalanceSOL(ctx)
	if err != nil {
		return a.skipTick(ctx, state, "balance", err)
	}

	runwayDays := runway.Days(balance, a.cfg.DailyBurnSOL)
	a.applyMode(ctx, state, runway.ModeFor(runwayDays, a.cfg.Runway), runwayDays)
	observability.UpdateTreasury(balance, runwayDays, state.CurrentMode, state.TokensAccumulated)

	record := &domain.TickRecord{
		Timestamp:    started,
		Tick:         state.TickCount,
		PriceSOL:     snap.PriceSOL,
		PriceUSD:     snap.PriceUSD,
		LiquidityUSD: snap.LiquidityUSD,
		Volume24hUSD: snap.Volume24hUSD,
		RunwayDays:   runwayDays,
		Mode:         state.CurrentMode,
	}

	if a.cfg.Enabled {
		a.evaluateBuyback(ctx, state, snap, balance, record)
		a.evaluateBurn(ctx, state, record)
	} else {
		record.Decision = "skip"
		record.Reason = "agent disabled"
	}

	if err := a.persist(ctx, state); err != nil {
		observability.RecordTickError("persist")
		return err
	}
	a.archiveTick(ctx, record)

	observability.RecordTick(a.now().Sub(started).Seconds(), a.now().Unix())
	a.log.WithFields(logrus.Fields{
		"tick":     state.TickCount,
		"mode":     state.CurrentMode,
		"runway":   fmt.Sprintf("%.1f", runwayDays),
		"decision": record.Decision,
		"reason":   record.Reason,
	}).Info("tick complete")
	return nil
}

// LockTokens moves tokens to the lock wallet. Operator-triggered only,
// never part of the automatic loop.
func (a *Agent) LockTokens(ctx context.Context, tokens uint64) (executor.LockResult, error) {
	if tokens == 0 {
		return executor.LockResult{}, fmt.Errorf("lock amount must be positive")
	}

	state, err := a.loadState(ctx)
	if err != nil {
		return executor.LockResult{}, err
	}

	result, err := a.exec.Lock(ctx, tokens)
	if err != nil {
		a.appendActivity(ctx, domain.ActivityError,
			fmt.Sprintf("lock of %d tokens failed", tokens), err.Error())
		return executor.LockResult{}, err
	}

	state.Stats.TotalLocks++
	state.Stats.TotalTokensLocked += result.TokensLocked
	observability.RecordLock(result.TokensLocked)
	a.appendActivity(ctx, domain.ActivityLock,
		fmt.Sprintf("locked %d tokens", result.TokensLocked), result.Signature)

	if err := a.persist(ctx, state); err != nil {
		return result, err
	}
	return result, nil
}

func (a *Agent) loadState(ctx context.Context) (*domain.TreasuryState, error) {
	state, err := a.states.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.NewTreasuryState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	state.Normalize()
	return state, nil
}

// skipTick handles a transient observation failure: the tick is recorded
// and persisted but no decision runs.
func (a *Agent) skipTick(ctx context.Context, state *domain.TreasuryState, stage string, cause error) error {
	observability.RecordTickError(stage)
	a.log.WithError(cause).WithField("stage", stage).Warn("tick skipped")
	a.appendActivity(ctx, domain.ActivityError,
		fmt.Sprintf("tick %d skipped at %s stage", state.TickCount, stage), cause.Error())

	if err := a.persist(ctx, state); err != nil {
		observability.RecordTickError("persist")
		return err
	}
	a.archiveTick(ctx, &domain.TickRecord{
		Timestamp: a.now(),
		Tick:      state.TickCount,
		Mode:      state.CurrentMode,
		Decision:  "error",
		Reason:    fmt.Sprintf("%s: %v", stage, cause),
	})
	return nil
}

func (a *Agent) applyMode(ctx context.Context, state *domain.TreasuryState, mode domain.Mode, runwayDays float64) {
	if mode == state.CurrentMode {
		return
	}
	a.appendActivity(ctx, domain.ActivityModeChange,
		fmt.Sprintf("mode %s -> %s (runway %.1f days)", state.CurrentMode, mode, runwayDays), "")
	a.log.WithFields(logrus.Fields{
		"from":   state.CurrentMode,
		"to":     mode,
		"runway": runwayDays,
	}).Warn("mode change")
	state.CurrentMode = mode
	state.LastModeChangeAt = a.now()
}

func (a *Agent) evaluateBuyback(ctx context.Context, state *domain.TreasuryState, snap domain.MarketSnapshot, balance float64, record *domain.TickRecord) {
	now := a.now()
	decision := a.engine.Evaluate(&buyback.Input{
		Snapshot:            snap,
		Prices:              state.PriceHistory.Values(),
		Volumes:             state.VolumeHistory.Values(),
		Mode:                state.CurrentMode,
		BalanceSOL:          balance,
		RecentHigh:          state.RecentHigh,
		SupportLevelsBought: state.SupportLevelsBought,
		LastBuyAt:           state.LastBuyAt,
		Now:                 now,
	})

	record.RSI = decision.RSI
	record.Momentum = decision.Momentum
	observability.UpdateRSI(decision.RSI)

	if decision.NewRecentHigh != nil {
		state.RecentHigh = *decision.NewRecentHigh
		state.RecentHighAt = now
		state.SupportLevelsBought = make(map[string]domain.LevelPurchase)
	}

	if !decision.Approved {
		record.Decision = "skip"
		record.Reason = string(decision.Reason)
		a.recordSkip(ctx, state, decision)
		return
	}

	result, err := a.exec.Buy(ctx, decision.AmountSOL)
	if err != nil {
		// No cooldown or tier state advances on a failed buy; the next
		// tick retries the same decision.
		observability.RecordTickError("buy")
		a.log.WithError(err).Error("buyback failed")
		a.appendActivity(ctx, domain.ActivityError, decision.Describe(), err.Error())
		record.Decision = "error"
		record.Reason = err.Error()
		return
	}

	state.LastBuyAt = now
	state.SupportLevelsBought[decision.Level.ID] = domain.LevelPurchase{
		Timestamp: now,
		AmountSOL: result.SOLSpent,
	}
	state.TokensAccumulated += result.TokensReceived
	state.Stats.TotalBuybacks++
	state.Stats.TotalSOLSpent += result.SOLSpent
	state.Stats.TotalTokensBought += result.TokensReceived

	observability.RecordBuyback(result.SOLSpent, result.TokensReceived)
	a.appendActivity(ctx, domain.ActivityBuyback, decision.Describe(), result.Signature)

	record.Decision = "buy"
	record.Reason = decision.Level.ID
	record.AmountSOL = result.SOLSpent
	record.Signature = result.Signature
}

// recordSkip bumps the stats counter matching the rejecting gate and
// audits gates with a counter; uncounted rejections (no tier triggered)
// are archive-only to keep the activity log readable.
func (a *Agent) recordSkip(ctx context.Context, state *domain.TreasuryState, d *buyback.Decision) {
	observability.RecordSkip(string(d.Reason))

	switch d.Counter {
	case buyback.SkipCooldown:
		state.Stats.SkippedCooldown++
	case buyback.SkipRSI:
		state.Stats.SkippedRSI++
	case buyback.SkipLowVolume:
		state.Stats.SkippedLowVolume++
	case buyback.SkipLiquidity:
		state.Stats.SkippedLiquidity++
	default:
		return
	}
	a.appendActivity(ctx, domain.ActivitySkip, d.Describe(), "")
}

func (a *Agent) evaluateBurn(ctx context.Context, state *domain.TreasuryState, record *domain.TickRecord) {
	if !a.burner.ShouldBurn(state.TokensAccumulated) {
		return
	}

	amount := state.TokensAccumulated
	result, err := a.exec.Burn(ctx, amount)
	if err != nil {
		// Accumulator is untouched; the burn retries next tick.
		observability.RecordTickError("burn")
		a.log.WithError(err).Error("burn failed")
		a.appendActivity(ctx, domain.ActivityError,
			fmt.Sprintf("burn of %d tokens failed", amount), err.Error())
		return
	}

	state.TokensAccumulated = 0
	state.LastBurnAt = a.now()
	state.Stats.TotalBurns++
	state.Stats.TotalTokensBurned += result.TokensBurned

	observability.RecordBurn(result.TokensBurned)
	a.appendActivity(ctx, domain.ActivityBurn,
		fmt.Sprintf("burned %d tokens", result.TokensBurned), result.Signature)

	if record.Decision == "" || record.Decision == "skip" {
		record.Decision = "burn"
		record.Reason = ""
	}
}

func (a *Agent) persist(ctx context.Context, state *domain.TreasuryState) error {
	if err := a.states.Save(ctx, state); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if err := a.metrics.Save(ctx, &state.Stats); err != nil {
		return fmt.Errorf("save metrics: %w", err)
	}
	return nil
}

func (a *Agent) archiveTick(ctx context.Context, record *domain.TickRecord) {
	if a.archive == nil {
		return
	}
	if err := a.archive.Insert(ctx, record); err != nil {
		a.log.WithError(err).Warn("tick archive insert failed")
	}
}

func (a *Agent) appendActivity(ctx context.Context, typ domain.ActivityType, content, result string) {
	entry := domain.ActivityEntry{
		ID:        uuid.NewString(),
		Type:      typ,
		Content:   content,
		Result:    result,
		Timestamp: a.now(),
		Source:    activitySource,
	}
	if err := a.activity.Append(ctx, entry); err != nil {
		a.log.WithError(err).Warn("activity append failed")
	}
}
