package domain

import "time"

// TickRecord is the archived outcome of one control-loop tick: the market
// observation, the computed posture, and the decision taken. Append-only;
// feeds long-horizon transparency reports.
type TickRecord struct {
	Timestamp time.Time
	Tick      int64

	PriceSOL     float64
	PriceUSD     float64
	LiquidityUSD float64
	Volume24hUSD float64

	RSI        float64
	Momentum   float64
	RunwayDays float64
	Mode       Mode

	// Decision is "buy", "burn", "skip" or "error"; Reason carries the
	// rejection or failure detail for non-buy outcomes.
	Decision  string
	Reason    string
	AmountSOL float64
	Signature string
}
