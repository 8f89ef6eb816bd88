// Package runway converts treasury balance and spend rate into an
// operating mode that throttles or disables buyback spending.
package runway

import "solana-treasury-agent/internal/domain"

// Default mode thresholds in days of runway.
const (
	DefaultEmergencyDays = 7
	DefaultCriticalDays  = 14
)

// InfiniteDays is the sentinel returned when the estimated daily burn is
// zero, signaling effectively infinite runway.
const InfiniteDays = 999

// Thresholds configures the runway-to-mode mapping.
type Thresholds struct {
	// EmergencyDays or less forces PAUSED.
	EmergencyDays float64
	// CriticalDays or less forces CONSERVATIVE.
	CriticalDays float64
}

// DefaultThresholds returns the standard 7/14 day thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EmergencyDays: DefaultEmergencyDays,
		CriticalDays:  DefaultCriticalDays,
	}
}

// Days computes runway in days at the current spend rate.
func Days(solBalance, estimatedDailyBurnSOL float64) float64 {
	if estimatedDailyBurnSOL <= 0 {
		return InfiniteDays
	}
	return solBalance / estimatedDailyBurnSOL
}

// ModeFor maps runway days to an operating mode. Checks run most severe
// first; the order is load-bearing.
func ModeFor(runwayDays float64, t Thresholds) domain.Mode {
	switch {
	case runwayDays <= t.EmergencyDays:
		return domain.ModePaused
	case runwayDays <= t.CriticalDays:
		return domain.ModeConservative
	default:
		return domain.ModeNormal
	}
}

// BuyMultiplier scales buy sizes by mode. PAUSED always yields 0: buys are
// skipped regardless of any other trigger.
func BuyMultiplier(m domain.Mode) float64 {
	switch m {
	case domain.ModeConservative:
		return 0.5
	case domain.ModePaused:
		return 0
	default:
		return 1.0
	}
}
