// Package main runs a single dry-run evaluation tick against live market
// data and prints what the agent would have done. Nothing touches the
// chain and nothing is persisted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"solana-treasury-agent/internal/agent"
	"solana-treasury-agent/internal/app"
	"solana-treasury-agent/internal/burn"
	"solana-treasury-agent/internal/buyback"
	"solana-treasury-agent/internal/config"
	"solana-treasury-agent/internal/executor"
	"solana-treasury-agent/internal/market"
	"solana-treasury-agent/internal/storage/memory"
)

func main() {
	balance := flag.Float64("balance", 10, "Simulated treasury balance in SOL")
	tokens := flag.Uint64("tokens", 0, "Simulated accumulated token balance")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := app.NewLogger(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gatewayOpts := []market.Option{}
	if cfg.MarketEndpoint != "" {
		gatewayOpts = append(gatewayOpts, market.WithEndpoint(cfg.MarketEndpoint))
	}
	gateway := market.NewGateway(cfg.TokenMint, gatewayOpts...)

	snap, err := gateway.Snapshot(ctx)
	if err != nil {
		logger.Fatalf("fetch market data: %v", err)
	}

	dryRun := executor.NewDryRun(*balance, *tokens, func() float64 { return snap.PriceSOL }, logger)

	activity := memory.NewActivityStore(64)
	a, err := agent.New(agent.Options{
		Config: agent.Config{
			TickInterval: cfg.TickInterval,
			Enabled:      true,
			DryRun:       true,
			DailyBurnSOL: cfg.DailyBurnSOL,
			Runway:       cfg.Runway,
		},
		Market:   gateway,
		Executor: dryRun,
		Engine:   buyback.NewEngine(cfg.Buyback),
		Burner:   burn.NewScheduler(cfg.MinTokensToBurn),
		States:   memory.NewStateStore(),
		Metrics:  memory.NewMetricsStore(),
		Activity: activity,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatalf("build agent: %v", err)
	}

	if err := a.Tick(ctx); err != nil {
		logger.Fatalf("tick: %v", err)
	}

	fmt.Printf("price: %.9f SOL ($%.6f)\n", snap.PriceSOL, snap.PriceUSD)
	fmt.Printf("liquidity: $%.0f  volume 24h: $%.0f\n", snap.LiquidityUSD, snap.Volume24hUSD)
	after, err := dryRun.BalanceSOL(ctx)
	if err != nil {
		logger.Fatalf("read balance: %v", err)
	}
	fmt.Printf("treasury after tick: %.4f SOL\n", after)

	entries, err := activity.Recent(ctx, 16)
	if err != nil {
		logger.Fatalf("read activity: %v", err)
	}
	if len(entries) == 0 {
		fmt.Println("no actions taken")
		return
	}
	fmt.Println("activity:")
	for _, e := range entries {
		fmt.Printf("  [%s] %s\n", e.Type, e.Content)
	}
}
