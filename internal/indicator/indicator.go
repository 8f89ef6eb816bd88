// Package indicator computes trend and momentum indicators from bounded
// price/volume histories. All functions are pure: no side effects, no I/O.
package indicator

import "math"

// Default lookback configuration.
const (
	DefaultRSIPeriod            = 14
	DefaultMomentumLookback     = 15
	DefaultVolumeThresholdRatio = 0.5
)

// NeutralRSI is returned when there is not enough history to compute RSI.
// Insufficient data is expected at cold start, not an error.
const NeutralRSI = 50.0

// RSI computes the Relative Strength Index over the last period+1 samples
// of prices (ascending chronological order).
//
// Fewer than period+1 samples returns the neutral value 50. A window with
// no losses returns 100. The result is rounded to 2 decimal places for
// display stability and is always in [0, 100].
func RSI(prices []float64, period int) float64 {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	if len(prices) < period+1 {
		return NeutralRSI
	}

	window := prices[len(prices)-(period+1):]
	var gains, losses float64
	for i := 1; i < len(window); i++ {
		delta := window[i] - window[i-1]
		if delta > 0 {
			gains += delta
		} else {
			losses += -delta
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)
	if avgLoss == 0 {
		return 100
	}

	rsi := 100 - 100/(1+avgGain/avgLoss)
	return math.Round(rsi*100) / 100
}

// Momentum returns the percent change between the current price and the
// price lookback samples ago: ((current - past) / past) * 100.
// Returns 0 when history is insufficient or the past price is zero.
func Momentum(prices []float64, lookback int) float64 {
	if lookback <= 0 {
		lookback = DefaultMomentumLookback
	}
	if len(prices) < lookback {
		return 0
	}

	past := prices[len(prices)-lookback]
	if past == 0 {
		return 0
	}
	current := prices[len(prices)-1]
	return (current - past) / past * 100
}

// VolumeConfirmed reports whether current volume clears the rolling-average
// threshold: current >= avg(history) * ratio. With no history yet the move
// is treated as confirmed (fail open) so a fresh deployment never deadlocks
// waiting for volume samples it will only gather by running.
func VolumeConfirmed(current float64, history []float64, ratio float64) bool {
	if ratio <= 0 {
		ratio = DefaultVolumeThresholdRatio
	}
	if len(history) == 0 {
		return true
	}

	var sum float64
	for _, v := range history {
		sum += v
	}
	avg := sum / float64(len(history))
	return current >= avg*ratio
}
