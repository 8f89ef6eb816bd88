// Package main prints a one-shot treasury status report.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"solana-treasury-agent/internal/app"
	"solana-treasury-agent/internal/config"
	"solana-treasury-agent/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := app.NewLogger(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stores, err := app.OpenStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("open stores: %v", err)
	}
	defer stores.Close()

	exec, cleanup, err := app.BuildExecutor(ctx, cfg, func() float64 { return 0 }, logger)
	if err != nil {
		logger.Fatalf("build executor: %v", err)
	}
	defer cleanup()

	balance, err := exec.BalanceSOL(ctx)
	if err != nil {
		logger.Fatalf("fetch balance: %v", err)
	}

	gen := report.NewGenerator(stores.States, stores.Metrics, stores.Activity, cfg.DailyBurnSOL)
	status, err := gen.Status(ctx, balance)
	if err != nil {
		logger.Fatalf("build status: %v", err)
	}

	fmt.Print(report.RenderStatus(status))
}
