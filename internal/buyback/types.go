package buyback

import (
	"time"

	"solana-treasury-agent/internal/domain"
)

// Engine defaults.
const (
	DefaultMinReserveSOL     = 0.1
	DefaultMinAvailableSOL   = 0.01
	DefaultBuyCooldown       = 60 * time.Minute
	DefaultRSIOverbought     = 70
	DefaultMinVolume24hUSD   = 100
	DefaultMaxPriceImpactPct = 5
)

// Reason tags why a buy was rejected. Reason strings are part of the
// audit trail contract.
type Reason string

const (
	ReasonPaused            Reason = "treasury paused"
	ReasonInsufficientFunds Reason = "insufficient balance after reserve"
	ReasonCooldown          Reason = "buy cooldown active"
	ReasonRSIOverbought     Reason = "rsi overbought"
	ReasonMinVolume         Reason = "24h volume below minimum"
	ReasonVolumeUnconfirmed Reason = "volume below rolling average threshold"
	ReasonNoLevelTriggered  Reason = "no support level triggered"
	ReasonPriceImpact       Reason = "price impact exceeds liquidity cap"
)

// SkipCounter identifies which stats counter a rejection increments.
// Gates without an observability counter use SkipNone.
type SkipCounter int

const (
	SkipNone SkipCounter = iota
	SkipCooldown
	SkipRSI
	SkipLowVolume
	SkipLiquidity
)

// Config holds the engine's static thresholds and tier ladder.
type Config struct {
	MinReserveSOL     float64
	MinAvailableSOL   float64
	BuyCooldown       time.Duration
	RSIPeriod         int
	RSIOverbought     float64
	MomentumLookback  int
	MinVolume24hUSD   float64
	VolumeRatio       float64
	MaxPriceImpactPct float64
	Levels            []domain.SupportLevel
}

// DefaultConfig returns the standard thresholds with the default tier
// ladder.
func DefaultConfig() Config {
	return Config{
		MinReserveSOL:     DefaultMinReserveSOL,
		MinAvailableSOL:   DefaultMinAvailableSOL,
		BuyCooldown:       DefaultBuyCooldown,
		RSIOverbought:     DefaultRSIOverbought,
		MinVolume24hUSD:   DefaultMinVolume24hUSD,
		MaxPriceImpactPct: DefaultMaxPriceImpactPct,
		Levels:            domain.DefaultSupportLevels(),
	}
}

// Input is the read-only view of one tick the engine evaluates. The engine
// never mutates treasury state directly; state changes travel back as
// intents on the Decision.
type Input struct {
	Snapshot domain.MarketSnapshot

	// Indicator inputs, ascending chronological order. The current tick's
	// samples are already included.
	Prices  []float64
	Volumes []float64

	Mode       domain.Mode
	BalanceSOL float64

	RecentHigh          float64
	SupportLevelsBought map[string]domain.LevelPurchase
	LastBuyAt           time.Time

	Now time.Time
}

// Decision is the engine's verdict for one tick plus the state-change
// intents the apply-effects shell must perform.
type Decision struct {
	Approved bool

	// Rejection details, set when Approved is false.
	Reason  Reason
	Counter SkipCounter

	// Buy details, set when Approved is true.
	Level     *domain.SupportLevel
	AmountSOL float64

	// NewRecentHigh is non-nil when the recent high must be seeded or
	// raised; applying it also clears consumed support levels.
	NewRecentHigh *float64

	// Observability context attached to the audit entry.
	RSI      float64
	Momentum float64
	DropPct  float64
}
