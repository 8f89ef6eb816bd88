package burn

import "testing"

func TestShouldBurn_ThresholdBoundary(t *testing.T) {
	s := NewScheduler(1_000_000)

	if s.ShouldBurn(999_999) {
		t.Error("expected no burn below threshold")
	}
	if !s.ShouldBurn(1_000_000) {
		t.Error("expected burn at exact threshold")
	}
	if !s.ShouldBurn(1_200_000) {
		t.Error("expected burn above threshold")
	}
	if s.ShouldBurn(0) {
		t.Error("expected no burn with empty accumulator")
	}
}

func TestNewScheduler_ZeroFallsBackToDefault(t *testing.T) {
	s := NewScheduler(0)
	if s.Threshold() != DefaultMinTokensToBurn {
		t.Errorf("expected default threshold, got %d", s.Threshold())
	}
}
