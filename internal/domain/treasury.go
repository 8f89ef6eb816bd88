package domain

import "time"

// Mode is the current risk posture gating treasury spend.
type Mode string

const (
	ModeNormal       Mode = "NORMAL"
	ModeConservative Mode = "CONSERVATIVE"
	ModePaused       Mode = "PAUSED"
)

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeNormal, ModeConservative, ModePaused:
		return true
	}
	return false
}

// LevelPurchase records a support tier consumed since the last new high.
type LevelPurchase struct {
	Timestamp time.Time `json:"timestamp"`
	AmountSOL float64   `json:"amount_sol"`
}

// Stats holds cumulative counters. Monotonically increasing; never reset
// except by explicit operator action.
type Stats struct {
	TotalBuybacks     int64   `json:"total_buybacks"`
	TotalSOLSpent     float64 `json:"total_sol_spent"`
	TotalTokensBought uint64  `json:"total_tokens_bought"`
	TotalBurns        int64   `json:"total_burns"`
	TotalTokensBurned uint64  `json:"total_tokens_burned"`
	TotalLocks        int64   `json:"total_locks"`
	TotalTokensLocked uint64  `json:"total_tokens_locked"`

	// Skip counters, one per buyback gate with an audit signal.
	SkippedLowVolume int64 `json:"buybacks_skipped_low_volume"`
	SkippedRSI       int64 `json:"buybacks_skipped_rsi"`
	SkippedLiquidity int64 `json:"buybacks_skipped_liquidity"`
	SkippedCooldown  int64 `json:"buybacks_skipped_cooldown"`
}

// TreasuryState is the durable singleton record mutated exclusively by the
// tick function and persisted after every tick. A crash before persistence
// re-derives from the last saved document; re-evaluating the same tick is
// idempotent with respect to cooldowns and consumed levels.
type TreasuryState struct {
	// RecentHigh is the highest observed price since the last reset.
	// Exceeding it resets the high and clears SupportLevelsBought.
	RecentHigh   float64   `json:"recent_high"`
	RecentHighAt time.Time `json:"recent_high_at"`

	// SupportLevelsBought marks drawdown tiers already consumed since the
	// last new high, keyed by level id.
	SupportLevelsBought map[string]LevelPurchase `json:"support_levels_bought"`

	LastBuyAt  time.Time `json:"last_buy_at"`
	LastBurnAt time.Time `json:"last_burn_at"`

	// TokensAccumulated counts tokens bought back but not yet burned.
	// Increases on buy, resets to 0 on burn.
	TokensAccumulated uint64 `json:"tokens_accumulated"`

	CurrentMode      Mode      `json:"current_mode"`
	LastModeChangeAt time.Time `json:"last_mode_change_at"`

	TickCount int64 `json:"tick_count"`

	Stats Stats `json:"stats"`

	// Rolling indicator inputs, persisted so indicators warm-start
	// across restarts.
	PriceHistory  *RollingHistory `json:"price_history"`
	VolumeHistory *RollingHistory `json:"volume_history"`
}

// NewTreasuryState returns a state with zeroed defaults for first run.
func NewTreasuryState() *TreasuryState {
	return &TreasuryState{
		SupportLevelsBought: make(map[string]LevelPurchase),
		CurrentMode:         ModeNormal,
		PriceHistory:        NewRollingHistory(DefaultPriceHistorySize),
		VolumeHistory:       NewRollingHistory(DefaultVolumeHistorySize),
	}
}

// Normalize repairs nil maps and histories after deserialization from an
// older or hand-edited document.
func (s *TreasuryState) Normalize() {
	if s.SupportLevelsBought == nil {
		s.SupportLevelsBought = make(map[string]LevelPurchase)
	}
	if s.PriceHistory == nil {
		s.PriceHistory = NewRollingHistory(DefaultPriceHistorySize)
	}
	if s.VolumeHistory == nil {
		s.VolumeHistory = NewRollingHistory(DefaultVolumeHistorySize)
	}
	if !s.CurrentMode.Valid() {
		s.CurrentMode = ModeNormal
	}
}
