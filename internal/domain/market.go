package domain

import "time"

// MarketSnapshot is one normalized observation of the token's market,
// produced once per tick by the market gateway. Absent upstream fields
// are normalized to 0 so downstream arithmetic never sees null.
type MarketSnapshot struct {
	// PriceSOL is the token price in SOL. Never negative.
	PriceSOL float64 `json:"price_sol"`

	// PriceUSD is the token price in USD, 0 when the upstream pair does
	// not quote it. The SOL/USD rate derives from PriceUSD / PriceSOL.
	PriceUSD float64 `json:"price_usd"`

	LiquidityUSD float64 `json:"liquidity_usd"`
	Volume24hUSD float64 `json:"volume_24h_usd"`
	Volume1hUSD  float64 `json:"volume_1h_usd"`

	PriceChange1h  float64 `json:"price_change_1h"`
	PriceChange6h  float64 `json:"price_change_6h"`
	PriceChange24h float64 `json:"price_change_24h"`

	// TxCount24h is buys + sells over the trailing 24h window.
	TxCount24h int `json:"tx_count_24h"`

	Timestamp time.Time `json:"timestamp"`
}

// SOLPriceUSD returns the implied SOL/USD rate, or 0 when either quote
// is missing.
func (s MarketSnapshot) SOLPriceUSD() float64 {
	if s.PriceSOL <= 0 || s.PriceUSD <= 0 {
		return 0
	}
	return s.PriceUSD / s.PriceSOL
}
