package report

import (
	"fmt"
	"strings"
	"time"
)

const timeLayout = time.RFC3339

// RenderStatus renders the status snapshot as operator-facing text.
func RenderStatus(s *Status) string {
	var sb strings.Builder

	sb.WriteString("TREASURY STATUS\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", s.GeneratedAt.Format(timeLayout)))

	sb.WriteString(fmt.Sprintf("Mode:               %s\n", s.Mode))
	sb.WriteString(fmt.Sprintf("Runway:             %.1f days\n", s.RunwayDays))
	sb.WriteString(fmt.Sprintf("Balance:            %.4f SOL\n", s.BalanceSOL))
	sb.WriteString(fmt.Sprintf("Tokens accumulated: %d\n", s.TokensAccumulated))
	sb.WriteString(fmt.Sprintf("Recent high:        %.8f SOL", s.RecentHigh))
	if !s.RecentHighAt.IsZero() {
		sb.WriteString(fmt.Sprintf(" (set %s)", s.RecentHighAt.Format(timeLayout)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Tiers consumed:     %d\n", s.LevelsBought))

	sb.WriteString(fmt.Sprintf("Last buy:           %s\n", formatTime(s.LastBuyAt)))
	sb.WriteString(fmt.Sprintf("Last burn:          %s\n", formatTime(s.LastBurnAt)))
	sb.WriteString(fmt.Sprintf("Ticks:              %d\n", s.TickCount))
	sb.WriteString(fmt.Sprintf("History warmup:     %d price / %d volume samples\n",
		s.PriceSamples, s.VolumeSamples))

	return sb.String()
}

// RenderMetrics renders cumulative stats with the skip-reason breakdown
// and recent activity.
func RenderMetrics(r *MetricsReport) string {
	var sb strings.Builder

	sb.WriteString("TREASURY METRICS\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(timeLayout)))

	sb.WriteString(fmt.Sprintf("Buybacks:      %d (%.4f SOL spent, %d tokens bought)\n",
		r.Stats.TotalBuybacks, r.Stats.TotalSOLSpent, r.Stats.TotalTokensBought))
	sb.WriteString(fmt.Sprintf("Burns:         %d (%d tokens burned)\n",
		r.Stats.TotalBurns, r.Stats.TotalTokensBurned))
	sb.WriteString(fmt.Sprintf("Locks:         %d (%d tokens locked)\n\n",
		r.Stats.TotalLocks, r.Stats.TotalTokensLocked))

	sb.WriteString("Skipped buybacks by reason:\n")
	sb.WriteString(fmt.Sprintf("  low volume:  %d\n", r.Stats.SkippedLowVolume))
	sb.WriteString(fmt.Sprintf("  rsi:         %d\n", r.Stats.SkippedRSI))
	sb.WriteString(fmt.Sprintf("  liquidity:   %d\n", r.Stats.SkippedLiquidity))
	sb.WriteString(fmt.Sprintf("  cooldown:    %d\n", r.Stats.SkippedCooldown))

	if len(r.Recent) > 0 {
		sb.WriteString("\nRecent activity:\n")
		for _, e := range r.Recent {
			sb.WriteString(fmt.Sprintf("  %s  %-12s %s",
				e.Timestamp.Format(timeLayout), e.Type, e.Content))
			if e.Result != "" {
				sb.WriteString(fmt.Sprintf(" [%s]", e.Result))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(timeLayout)
}
