package indicator

import (
	"math"
	"testing"
)

func TestRSI_InsufficientHistoryReturnsNeutral(t *testing.T) {
	// 14 samples with period 14 requires 15; expect exactly 50
	prices := make([]float64, 14)
	for i := range prices {
		prices[i] = float64(i + 1)
	}

	got := RSI(prices, 14)
	if got != 50 {
		t.Errorf("expected neutral 50, got %f", got)
	}

	if got := RSI(nil, 14); got != 50 {
		t.Errorf("expected neutral 50 for empty history, got %f", got)
	}
}

func TestRSI_AllGainsReturns100(t *testing.T) {
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = float64(i + 1)
	}

	if got := RSI(prices, 14); got != 100 {
		t.Errorf("expected 100 for all-gains window, got %f", got)
	}
}

func TestRSI_FlatHistoryReturns100(t *testing.T) {
	// No deltas at all means avgLoss == 0, which is the documented
	// unbounded-strength edge case.
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 1.5
	}

	if got := RSI(prices, 14); got != 100 {
		t.Errorf("expected 100 for flat window, got %f", got)
	}
}

func TestRSI_KnownMixedWindow(t *testing.T) {
	// 7 gains of +1.0 and 7 losses of -0.5 over a 14-period window:
	// avgGain = 7/14 = 0.5, avgLoss = 3.5/14 = 0.25, RS = 2
	// RSI = 100 - 100/(1+2) = 66.666... -> rounded 66.67
	prices := []float64{10, 11, 12, 13, 14, 15, 16, 17, 16.5, 16, 15.5, 15, 14.5, 14, 13.5}

	got := RSI(prices, 14)
	if got != 66.67 {
		t.Errorf("expected 66.67, got %f", got)
	}
}

func TestRSI_AlwaysWithinBounds(t *testing.T) {
	fixtures := [][]float64{
		{1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2, 1, 2},
		{5, 4, 3, 2, 1, 0.9, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3, 0.2, 0.1, 0.05},
		{0.001, 0.0012, 0.0009, 0.0015, 0.0014, 0.0013, 0.0016, 0.0011,
			0.0018, 0.0017, 0.0019, 0.002, 0.0016, 0.0021, 0.0022, 0.002},
	}

	for i, prices := range fixtures {
		got := RSI(prices, 14)
		if got < 0 || got > 100 {
			t.Errorf("fixture %d: RSI %f outside [0,100]", i, got)
		}
	}
}

func TestRSI_UsesOnlyTrailingWindow(t *testing.T) {
	// A long downtrend followed by 15 rising samples must read as
	// all-gains: earlier samples are outside the window.
	prices := []float64{100, 90, 80, 70, 60, 50}
	for i := 0; i < 15; i++ {
		prices = append(prices, 50+float64(i+1))
	}

	if got := RSI(prices, 14); got != 100 {
		t.Errorf("expected 100 from trailing window, got %f", got)
	}
}

func TestMomentum_InsufficientHistoryReturnsZero(t *testing.T) {
	prices := []float64{1, 2, 3}
	if got := Momentum(prices, 15); got != 0 {
		t.Errorf("expected 0 for short history, got %f", got)
	}
}

func TestMomentum_PositiveAndNegative(t *testing.T) {
	up := []float64{1.0, 1.1, 1.2, 1.3, 1.4, 1.5, 1.6, 1.7, 1.8, 1.9, 2.0, 2.1, 2.2, 2.3, 1.5}
	// lookback 15: past = up[0] = 1.0, current = 1.5 -> +50%
	if got := Momentum(up, 15); math.Abs(got-50) > 1e-9 {
		t.Errorf("expected +50, got %f", got)
	}

	down := make([]float64, 15)
	for i := range down {
		down[i] = 2.0
	}
	down[14] = 1.0
	// past = 2.0, current = 1.0 -> -50%
	if got := Momentum(down, 15); math.Abs(got-(-50)) > 1e-9 {
		t.Errorf("expected -50, got %f", got)
	}
}

func TestMomentum_ZeroPastPrice(t *testing.T) {
	prices := make([]float64, 15)
	prices[14] = 3
	if got := Momentum(prices, 15); got != 0 {
		t.Errorf("expected 0 when past price is zero, got %f", got)
	}
}

func TestVolumeConfirmed_FailsOpenOnColdStart(t *testing.T) {
	if !VolumeConfirmed(0, nil, 0.5) {
		t.Error("expected confirmation with no history (fail open)")
	}
}

func TestVolumeConfirmed_Threshold(t *testing.T) {
	history := []float64{100, 200, 300} // avg 200, threshold 100 at ratio 0.5

	if !VolumeConfirmed(100, history, 0.5) {
		t.Error("expected confirmation at exact threshold")
	}
	if VolumeConfirmed(99.9, history, 0.5) {
		t.Error("expected rejection below threshold")
	}
	if !VolumeConfirmed(500, history, 0.5) {
		t.Error("expected confirmation above threshold")
	}
}
