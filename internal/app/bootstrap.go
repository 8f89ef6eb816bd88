// Package app wires configuration into concrete stores, executors and
// loggers. Shared by every binary so the mains stay thin.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"solana-treasury-agent/internal/config"
	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/executor"
	wsconfirm "solana-treasury-agent/internal/solana"
	"solana-treasury-agent/internal/storage"
	chstore "solana-treasury-agent/internal/storage/clickhouse"
	filestore "solana-treasury-agent/internal/storage/file"
	"solana-treasury-agent/internal/storage/memory"
	"solana-treasury-agent/internal/storage/migrations"
	pgstore "solana-treasury-agent/internal/storage/postgres"
)

// NewLogger builds the process logger. Daemons log JSON; the one-shot
// report binaries keep the text formatter for readability.
func NewLogger(jsonFormat bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if jsonFormat {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}

// Stores bundles the persistence backends selected by configuration.
type Stores struct {
	States   storage.StateStore
	Metrics  storage.MetricsStore
	Activity storage.ActivityStore
	// Archive is nil unless a ClickHouse DSN is configured.
	Archive storage.TickArchive

	closers []func()
}

// Close releases backend connections.
func (s *Stores) Close() {
	for _, c := range s.closers {
		c()
	}
}

// OpenStores opens the configured storage backend, running migrations
// where the backend needs them.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	stores := &Stores{}

	switch cfg.Storage.Backend {
	case config.StorageMemory:
		stores.States = memory.NewStateStore()
		stores.Metrics = memory.NewMetricsStore()
		stores.Activity = memory.NewActivityStore(domain.ActivityLogCapacity)

	case config.StorageFile:
		dir, err := filestore.Open(cfg.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open data dir: %w", err)
		}
		stores.States = filestore.NewStateStore(dir)
		stores.Metrics = filestore.NewMetricsStore(dir)
		stores.Activity = filestore.NewActivityStore(dir, domain.ActivityLogCapacity)

	case config.StoragePostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.States = pgstore.NewStateStore(pool)
		stores.Metrics = pgstore.NewMetricsStore(pool)
		stores.Activity = pgstore.NewActivityStore(pool, domain.ActivityLogCapacity)
		stores.closers = append(stores.closers, pool.Close)

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			stores.Close()
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		stores.Archive = chstore.NewTickArchive(conn)
		stores.closers = append(stores.closers, func() { conn.Close() })
	}

	return stores, nil
}

// BuildExecutor builds the executor matching the configuration: a
// simulated one in dry-run mode, the on-chain one otherwise. price feeds
// the dry-run token estimate and may be nil.
func BuildExecutor(ctx context.Context, cfg *config.Config, price executor.PriceFunc, log logrus.FieldLogger) (executor.Executor, func(), error) {
	if cfg.DryRun {
		return executor.NewDryRun(cfg.DryRunBalanceSOL, 0, price, log), func() {}, nil
	}

	wallet, err := solana.PrivateKeyFromBase58(cfg.WalletKey)
	if err != nil {
		return nil, nil, fmt.Errorf("parse wallet key: %w", err)
	}
	mint, err := solana.PublicKeyFromBase58(cfg.TokenMint)
	if err != nil {
		return nil, nil, fmt.Errorf("parse token mint: %w", err)
	}

	var lockWallet solana.PublicKey
	if cfg.LockWallet != "" {
		if lockWallet, err = solana.PublicKeyFromBase58(cfg.LockWallet); err != nil {
			return nil, nil, fmt.Errorf("parse lock wallet: %w", err)
		}
	}

	var confirmer wsconfirm.Confirmer
	cleanup := func() {}
	if cfg.WSEndpoint != "" {
		c, err := wsconfirm.NewWSConfirmer(ctx, cfg.WSEndpoint, nil, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect websocket: %w", err)
		}
		confirmer = c
		cleanup = func() { c.Close() }
	}

	exec, err := executor.NewOnChain(executor.OnChainConfig{
		RPCEndpoint: cfg.RPCEndpoint,
		Wallet:      wallet,
		Mint:        mint,
		LockWallet:  lockWallet,
		Confirmer:   confirmer,
		Logger:      log,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return exec, cleanup, nil
}
