package domain

import (
	"fmt"
	"sort"
)

// SupportLevel is one configured drawdown tier: crossing DropPct below the
// recent high triggers a buy of BuySOL (before mode scaling).
type SupportLevel struct {
	ID      string  `json:"id"`
	DropPct float64 `json:"drop_pct"`
	BuySOL  float64 `json:"buy_sol"`
}

// NewSupportLevel derives the level id from the drop percent.
func NewSupportLevel(dropPct, buySOL float64) SupportLevel {
	return SupportLevel{
		ID:      fmt.Sprintf("drop-%.0f", dropPct),
		DropPct: dropPct,
		BuySOL:  buySOL,
	}
}

// DefaultSupportLevels returns the standard ascending tier ladder:
// deeper drawdowns commit larger buys.
func DefaultSupportLevels() []SupportLevel {
	return []SupportLevel{
		NewSupportLevel(10, 0.25),
		NewSupportLevel(20, 0.5),
		NewSupportLevel(30, 1.0),
		NewSupportLevel(40, 1.5),
		NewSupportLevel(50, 2.0),
	}
}

// SortSupportLevels orders tiers ascending by drop percent, the evaluation
// order required by the decision engine.
func SortSupportLevels(levels []SupportLevel) {
	sort.Slice(levels, func(i, j int) bool {
		return levels[i].DropPct < levels[j].DropPct
	})
}
