// Package burn decides when accumulated buyback tokens are destroyed.
package burn

// DefaultMinTokensToBurn is the accumulation threshold, in raw token
// units, that triggers a burn.
const DefaultMinTokensToBurn uint64 = 1_000_000

// Scheduler holds the single burn threshold. There is no time-based
// throttle: the threshold alone bounds both gas-fee frequency and the
// cadence of burn announcements.
type Scheduler struct {
	minTokens uint64
}

// NewScheduler creates a scheduler; a zero threshold falls back to the
// default.
func NewScheduler(minTokens uint64) *Scheduler {
	if minTokens == 0 {
		minTokens = DefaultMinTokensToBurn
	}
	return &Scheduler{minTokens: minTokens}
}

// ShouldBurn reports whether the accumulated amount has met the threshold.
// It fires on the exact tick the threshold is first met or exceeded.
func (s *Scheduler) ShouldBurn(tokensAccumulated uint64) bool {
	return tokensAccumulated >= s.minTokens
}

// Threshold returns the configured minimum.
func (s *Scheduler) Threshold() uint64 {
	return s.minTokens
}
