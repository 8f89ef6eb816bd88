// Package main prints accumulated agent metrics and recent activity.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"solana-treasury-agent/internal/app"
	"solana-treasury-agent/internal/config"
	"solana-treasury-agent/internal/report"
)

func main() {
	limit := flag.Int("limit", 20, "Number of recent activity entries to include")
	flag.Parse()

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

	gen := report.NewGenerator(stores.States, stores.Metrics, stores.Activity, cfg.DailyBurnSOL)
	metrics, err := gen.Metrics(ctx, *limit)
	if err != nil {
		logger.Fatalf("build metrics: %v", err)
	}

	fmt.Print(report.RenderMetrics(metrics))
}
