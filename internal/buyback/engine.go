// Package buyback implements the per-tick buy decision as a strict,
// short-circuiting sequence of named gates. The first failing gate
// determines the outcome; each gate carries its own audit signal, so the
// order is part of the contract and must not be rearranged.
package buyback

import (
	"fmt"

	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/indicator"
	"solana-treasury-agent/internal/runway"
)

// Engine evaluates buyback triggers. It is stateless; all per-tick data
// arrives through Input and all state changes leave through Decision.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine, filling zero config fields with defaults
// and sorting the tier ladder ascending by drop percent.
func NewEngine(cfg Config) *Engine {
	if cfg.MinReserveSOL <= 0 {
		cfg.MinReserveSOL = DefaultMinReserveSOL
	}
	if cfg.MinAvailableSOL <= 0 {
		cfg.MinAvailableSOL = DefaultMinAvailableSOL
	}
	if cfg.BuyCooldown <= 0 {
		cfg.BuyCooldown = DefaultBuyCooldown
	}
	if cfg.RSIOverbought <= 0 {
		cfg.RSIOverbought = DefaultRSIOverbought
	}
	if cfg.MinVolume24hUSD <= 0 {
		cfg.MinVolume24hUSD = DefaultMinVolume24hUSD
	}
	if cfg.MaxPriceImpactPct <= 0 {
		cfg.MaxPriceImpactPct = DefaultMaxPriceImpactPct
	}
	if len(cfg.Levels) == 0 {
		cfg.Levels = domain.DefaultSupportLevels()
	}
	levels := make([]domain.SupportLevel, len(cfg.Levels))
	copy(levels, cfg.Levels)
	domain.SortSupportLevels(levels)
	cfg.Levels = levels
	return &Engine{cfg: cfg}
}

// evaluation carries intermediate values between gates.
type evaluation struct {
	in        *Input
	d         *Decision
	available float64
	amountSOL float64
}

// gate is one named predicate in the ordered sequence. A nil return means
// pass; a non-nil rejection short-circuits evaluation.
type gate struct {
	name  string
	check func(*evaluation) *rejection
}

type rejection struct {
	reason  Reason
	counter SkipCounter
}

// Evaluate runs the gate sequence for one tick.
func (e *Engine) Evaluate(in *Input) *Decision {
	ev := &evaluation{
		in: in,
		d: &Decision{
			RSI:      indicator.RSI(in.Prices, e.cfg.RSIPeriod),
			Momentum: indicator.Momentum(in.Prices, e.cfg.MomentumLookback),
		},
	}

	gates := []gate{
		{"mode", e.gateMode},
		{"balance", e.gateBalance},
		{"cooldown", e.gateCooldown},
		{"rsi", e.gateRSI},
		{"min-volume", e.gateMinVolume},
		{"volume-confirmation", e.gateVolumeConfirmation},
		{"recent-high", e.gateRecentHigh},
		{"support-level", e.gateSupportLevel},
		{"price-impact", e.gatePriceImpact},
	}

	for _, g := range gates {
		if rej := g.check(ev); rej != nil {
			ev.d.Approved = false
			ev.d.Reason = rej.reason
			ev.d.Counter = rej.counter
			return ev.d
		}
	}

	// Final sizing: never exceed wallet capacity after reserve.
	if ev.amountSOL > ev.available {
		ev.amountSOL = ev.available
	}
	ev.d.Approved = true
	ev.d.AmountSOL = ev.amountSOL
	return ev.d
}

// Gate 1: PAUSED mode rejects immediately, dominating every other input.
func (e *Engine) gateMode(ev *evaluation) *rejection {
	if ev.in.Mode == domain.ModePaused {
		return &rejection{reason: ReasonPaused}
	}
	return nil
}

// Gate 2: the reserve floor must never be spent; fees and slippage must
// not be able to zero out the wallet.
func (e *Engine) gateBalance(ev *evaluation) *rejection {
	ev.available = ev.in.BalanceSOL - e.cfg.MinReserveSOL
	if ev.available <= e.cfg.MinAvailableSOL {
		return &rejection{reason: ReasonInsufficientFunds}
	}
	return nil
}

// Gate 3: cooldown between buys prevents rapid-fire spending on a single
// sustained dip.
func (e *Engine) gateCooldown(ev *evaluation) *rejection {
	if !ev.in.LastBuyAt.IsZero() && ev.in.Now.Sub(ev.in.LastBuyAt) < e.cfg.BuyCooldown {
		return &rejection{reason: ReasonCooldown, counter: SkipCooldown}
	}
	return nil
}

// Gate 4: buying into an overbought market is disallowed regardless of
// how far the price has dropped.
func (e *Engine) gateRSI(ev *evaluation) *rejection {
	if ev.d.RSI >= e.cfg.RSIOverbought {
		return &rejection{reason: ReasonRSIOverbought, counter: SkipRSI}
	}
	return nil
}

// Gate 5: below the minimum 24h volume the price signal is too thin
// to trust.
func (e *Engine) gateMinVolume(ev *evaluation) *rejection {
	if ev.in.Snapshot.Volume24hUSD < e.cfg.MinVolume24hUSD {
		return &rejection{reason: ReasonMinVolume}
	}
	return nil
}

// Gate 6: current volume must clear the rolling-average threshold.
func (e *Engine) gateVolumeConfirmation(ev *evaluation) *rejection {
	if !indicator.VolumeConfirmed(ev.in.Snapshot.Volume24hUSD, ev.in.Volumes, e.cfg.VolumeRatio) {
		return &rejection{reason: ReasonVolumeUnconfirmed, counter: SkipLowVolume}
	}
	return nil
}

// Gate 7: recent-high bookkeeping. The first tick seeds the baseline; a
// price above the recorded high raises it and invalidates prior dip-buy
// history, since those dips are no longer support relative to the new
// high. Never rejects.
func (e *Engine) gateRecentHigh(ev *evaluation) *rejection {
	price := ev.in.Snapshot.PriceSOL
	if ev.in.RecentHigh <= 0 || price > ev.in.RecentHigh {
		p := price
		ev.d.NewRecentHigh = &p
	}
	return nil
}

// Gate 8: scan tiers ascending; the deepest currently-triggered tier not
// yet bought wins. At or above the recent high nothing triggers.
func (e *Engine) gateSupportLevel(ev *evaluation) *rejection {
	high := ev.in.RecentHigh
	if ev.d.NewRecentHigh != nil {
		high = *ev.d.NewRecentHigh
	}
	if high <= 0 {
		return &rejection{reason: ReasonNoLevelTriggered}
	}

	dropPct := (high - ev.in.Snapshot.PriceSOL) / high * 100
	ev.d.DropPct = dropPct

	bought := ev.in.SupportLevelsBought
	if ev.d.NewRecentHigh != nil {
		// A new high clears consumed levels before tier evaluation.
		bought = nil
	}

	var winner *domain.SupportLevel
	for i := range e.cfg.Levels {
		lvl := e.cfg.Levels[i]
		if dropPct < lvl.DropPct {
			break
		}
		if _, consumed := bought[lvl.ID]; consumed {
			continue
		}
		winner = &lvl
	}
	if winner == nil {
		return &rejection{reason: ReasonNoLevelTriggered}
	}

	ev.d.Level = winner
	ev.amountSOL = winner.BuySOL * runway.BuyMultiplier(ev.in.Mode)
	return nil
}

// Gate 9: the buy itself must not move the market unacceptably. The
// intended notional must stay within MaxPriceImpactPct of quoted
// liquidity. With no quoted liquidity the impact is unbounded and the
// buy is rejected; with no SOL/USD quote the notional cannot be priced
// and the gate passes.
func (e *Engine) gatePriceImpact(ev *evaluation) *rejection {
	solUSD := ev.in.Snapshot.SOLPriceUSD()
	if solUSD <= 0 {
		return nil
	}
	if ev.in.Snapshot.LiquidityUSD <= 0 {
		return &rejection{reason: ReasonPriceImpact, counter: SkipLiquidity}
	}
	notionalUSD := ev.amountSOL * solUSD
	if notionalUSD > ev.in.Snapshot.LiquidityUSD*e.cfg.MaxPriceImpactPct/100 {
		return &rejection{reason: ReasonPriceImpact, counter: SkipLiquidity}
	}
	return nil
}

// Describe renders a one-line audit summary for the decision.
func (d *Decision) Describe() string {
	if d.Approved {
		return fmt.Sprintf("buy %.4f SOL at tier %s (drop %.1f%%, rsi %.2f)",
			d.AmountSOL, d.Level.ID, d.DropPct, d.RSI)
	}
	return fmt.Sprintf("skip: %s (drop %.1f%%, rsi %.2f)", d.Reason, d.DropPct, d.RSI)
}
