// Package main runs the treasury agent daemon: the tick loop plus the
// optional Prometheus endpoint and Redis instance lease.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"solana-treasury-agent/internal/agent"
	"solana-treasury-agent/internal/app"
	"solana-treasury-agent/internal/burn"
	"solana-treasury-agent/internal/buyback"
	"solana-treasury-agent/internal/config"
	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/lock"
	"solana-treasury-agent/internal/market"
	"solana-treasury-agent/internal/observability"
)

// leaseKey guards against two daemons driving the same wallet.
const leaseKey = "treasury-agent:lease"

// trackedMarket remembers the latest observed price so the dry-run
// executor can estimate swap proceeds.
type trackedMarket struct {
	inner *market.Gateway
	last  atomic.Uint64
}

func (m *trackedMarket) Snapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	snap, err := m.inner.Snapshot(ctx)
	if err == nil {
		m.last.Store(math.Float64bits(snap.PriceSOL))
	}
	return snap, err
}

func (m *trackedMarket) lastPrice() float64 {
	return math.Float64frombits(m.last.Load())
}

func main() {
	lockTokens := flag.Uint64("lock", 0, "Lock this many tokens into the lock wallet and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := app.NewLogger(true)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatalf("connect redis: %v", err)
		}
		defer client.Close()

		lease := lock.NewLease(client, leaseKey, 0, 0, logger)
		if err := lease.Acquire(ctx); err != nil {
			logger.Fatalf("acquire instance lease: %v", err)
		}
		defer func() {
			releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer releaseCancel()
			if err := lease.Release(releaseCtx); err != nil {
				logger.Warnf("release lease: %v", err)
			}
		}()
	}

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("open stores: %v", err)
	}
	defer stores.Close()

	gatewayOpts := []market.Option{}
	if cfg.MarketEndpoint != "" {
		gatewayOpts = append(gatewayOpts, market.WithEndpoint(cfg.MarketEndpoint))
	}
	tracked := &trackedMarket{inner: market.NewGateway(cfg.TokenMint, gatewayOpts...)}

	exec, execCleanup, err := app.BuildExecutor(ctx, cfg, tracked.lastPrice, logger)
	if err != nil {
		logger.Fatalf("build executor: %v", err)
	}
	defer execCleanup()

	a, err := agent.New(agent.Options{
		Config: agent.Config{
			TickInterval: cfg.TickInterval,
			Enabled:      cfg.Enabled,
			DryRun:       cfg.DryRun,
			DailyBurnSOL: cfg.DailyBurnSOL,
			Runway:       cfg.Runway,
		},
		Market:   tracked,
		Executor: exec,
		Engine:   buyback.NewEngine(cfg.Buyback),
		Burner:   burn.NewScheduler(cfg.MinTokensToBurn),
		States:   stores.States,
		Metrics:  stores.Metrics,
		Activity: stores.Activity,
		Archive:  stores.Archive,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatalf("build agent: %v", err)
	}

	if *lockTokens > 0 {
		result, err := a.LockTokens(ctx, *lockTokens)
		if err != nil {
			logger.Fatalf("lock: %v", err)
		}
		logger.WithField("signature", result.Signature).
			Infof("locked %d tokens", result.TokensLocked)
		return
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Infof("metrics listening on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Errorf("metrics server: %v", err)
			}
		}()
	}

	logger.WithFields(map[string]interface{}{
		"mint":     cfg.TokenMint,
		"interval": cfg.TickInterval.String(),
		"dry_run":  cfg.DryRun,
		"storage":  cfg.Storage.Backend,
	}).Info("agent starting")

	if err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("agent: %v", err)
	}
	logger.Info("shutdown complete")
}
