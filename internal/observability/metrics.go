// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"solana-treasury-agent/internal/domain"
)

// Metrics holds all Prometheus metrics for the agent.
type Metrics struct {
	// Tick metrics
	TicksTotal          prometheus.Counter
	TickDuration        prometheus.Histogram
	TickOverlapsSkipped prometheus.Counter
	TickErrors          *prometheus.CounterVec

	// Decision metrics
	BuybacksExecuted  prometheus.Counter
	SOLSpentTotal     prometheus.Counter
	TokensBoughtTotal prometheus.Counter
	BuybacksSkipped   *prometheus.CounterVec
	BurnsExecuted     prometheus.Counter
	TokensBurnedTotal prometheus.Counter
	LocksExecuted     prometheus.Counter
	TokensLockedTotal prometheus.Counter

	// Treasury state gauges
	TreasuryBalanceSOL prometheus.Gauge
	RunwayDays         prometheus.Gauge
	CurrentMode        prometheus.Gauge
	TokensAccumulated  prometheus.Gauge
	RSI                prometheus.Gauge

	// Market metrics
	MarketFetchErrors  prometheus.Counter
	MarketFetchLatency prometheus.Histogram

	// Health metrics
	LastSuccessfulTick prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "treasury_agent"
	}

	return &Metrics{
		TicksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tick",
			Name:      "runs_total",
			Help:      "Total number of agent ticks executed",
		}),
		TickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tick",
			Name:      "duration_seconds",
			Help:      "Tick duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		TickOverlapsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tick",
			Name:      "overlaps_skipped_total",
			Help:      "Timer fires skipped because the previous tick was still running",
		}),
		TickErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tick",
			Name:      "errors_total",
			Help:      "Tick errors by stage",
		}, []string{"stage"}),

		BuybacksExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buyback",
			Name:      "executed_total",
			Help:      "Total number of buybacks executed",
		}),
		SOLSpentTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buyback",
			Name:      "sol_spent_total",
			Help:      "Cumulative SOL spent on buybacks",
		}),
		TokensBoughtTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buyback",
			Name:      "tokens_bought_total",
			Help:      "Cumulative tokens received from buybacks",
		}),
		BuybacksSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "buyback",
			Name:      "skipped_total",
			Help:      "Buybacks skipped by gate reason",
		}, []string{"reason"}),
		BurnsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "burn",
			Name:      "executed_total",
			Help:      "Total number of burns executed",
		}),
		TokensBurnedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "burn",
			Name:      "tokens_burned_total",
			Help:      "Cumulative tokens burned",
		}),
		LocksExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lock",
			Name:      "executed_total",
			Help:      "Total number of lock transfers executed",
		}),
		TokensLockedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lock",
			Name:      "tokens_locked_total",
			Help:      "Cumulative tokens moved to the lock wallet",
		}),

		TreasuryBalanceSOL: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "treasury",
			Name:      "balance_sol",
			Help:      "Current treasury wallet balance in SOL",
		}),
		RunwayDays: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "treasury",
			Name:      "runway_days",
			Help:      "Estimated runway in days at the configured spend rate",
		}),
		CurrentMode: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "treasury",
			Name:      "mode",
			Help:      "Operating mode (0=NORMAL, 1=CONSERVATIVE, 2=PAUSED)",
		}),
		TokensAccumulated: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "treasury",
			Name:      "tokens_accumulated",
			Help:      "Tokens bought back and awaiting burn",
		}),
		RSI: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "rsi",
			Help:      "Latest RSI computed from the price history",
		}),

		MarketFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "fetch_errors_total",
			Help:      "Market data fetch failures",
		}),
		MarketFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "fetch_duration_seconds",
			Help:      "Market data fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		LastSuccessfulTick: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_tick_timestamp",
			Help:      "Unix timestamp of the last completed tick",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTick records one completed tick.
func RecordTick(durationSeconds float64, completedUnix int64) {
	DefaultMetrics.TicksTotal.Inc()
	DefaultMetrics.TickDuration.Observe(durationSeconds)
	DefaultMetrics.LastSuccessfulTick.Set(float64(completedUnix))
}

// RecordTickError records a tick failure for the given stage.
func RecordTickError(stage string) {
	DefaultMetrics.TickErrors.WithLabelValues(stage).Inc()
}

// RecordOverlapSkip records a timer fire skipped due to a running tick.
func RecordOverlapSkip() {
	DefaultMetrics.TickOverlapsSkipped.Inc()
}

// RecordBuyback records an executed buyback.
func RecordBuyback(amountSOL float64, tokens uint64) {
	DefaultMetrics.BuybacksExecuted.Inc()
	DefaultMetrics.SOLSpentTotal.Add(amountSOL)
	DefaultMetrics.TokensBoughtTotal.Add(float64(tokens))
}

// RecordSkip records a skipped buyback by gate reason.
func RecordSkip(reason string) {
	DefaultMetrics.BuybacksSkipped.WithLabelValues(reason).Inc()
}

// RecordBurn records an executed burn.
func RecordBurn(tokens uint64) {
	DefaultMetrics.BurnsExecuted.Inc()
	DefaultMetrics.TokensBurnedTotal.Add(float64(tokens))
}

// RecordLock records an executed lock transfer.
func RecordLock(tokens uint64) {
	DefaultMetrics.LocksExecuted.Inc()
	DefaultMetrics.TokensLockedTotal.Add(float64(tokens))
}

// RecordMarketFetch records a market data fetch.
func RecordMarketFetch(seconds float64, err error) {
	DefaultMetrics.MarketFetchLatency.Observe(seconds)
	if err != nil {
		DefaultMetrics.MarketFetchErrors.Inc()
	}
}

// UpdateTreasury updates the treasury state gauges.
func UpdateTreasury(balanceSOL, runwayDays float64, mode domain.Mode, tokensAccumulated uint64) {
	DefaultMetrics.TreasuryBalanceSOL.Set(balanceSOL)
	DefaultMetrics.RunwayDays.Set(runwayDays)
	DefaultMetrics.CurrentMode.Set(ModeValue(mode))
	DefaultMetrics.TokensAccumulated.Set(float64(tokensAccumulated))
}

// UpdateRSI updates the RSI gauge.
func UpdateRSI(rsi float64) {
	DefaultMetrics.RSI.Set(rsi)
}

// ModeValue maps an operating mode to its gauge encoding.
func ModeValue(m domain.Mode) float64 {
	switch m {
	case domain.ModeConservative:
		return 1
	case domain.ModePaused:
		return 2
	default:
		return 0
	}
}
