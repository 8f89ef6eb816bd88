// Package config loads the agent configuration from the environment.
// A .env file in the working directory is honored when present. All
// validation failures are fatal at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"filippo.io/edwards25519"
	"github.com/joho/godotenv"
	"github.com/mr-tron/base58"

	"solana-treasury-agent/internal/buyback"
	"solana-treasury-agent/internal/burn"
	"solana-treasury-agent/internal/domain"
	"solana-treasury-agent/internal/runway"
)

// DefaultDailyBurnSOL is the assumed treasury spend rate used for the
// runway estimate when none is configured.
const DefaultDailyBurnSOL = 1.0

const (
	defaultRPCEndpoint  = "https://api.mainnet-beta.solana.com"
	defaultTickInterval = 60 * time.Second
	defaultStorage      = "file"
	defaultDataDir      = "data"
)

// Storage backend names.
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config keeps the runtime configuration for the agent.
type Config struct {
	// TokenMint is the base58 mint address of the managed token.
	TokenMint string
	// WalletKey is the base58-encoded treasury wallet private key.
	// Empty in dry-run mode.
	WalletKey string
	// LockWallet is the base58 address receiving locked tokens.
	LockWallet string

	RPCEndpoint string
	WSEndpoint  string
	// MarketEndpoint overrides the DexScreener API base URL.
	MarketEndpoint string

	TickInterval time.Duration
	DryRun       bool
	// DryRunBalanceSOL seeds the simulated wallet in dry-run mode.
	DryRunBalanceSOL float64
	Enabled          bool

	Buyback buyback.Config
	// MinTokensToBurn is the accumulation threshold for burns.
	MinTokensToBurn uint64
	Runway          runway.Thresholds
	// DailyBurnSOL is the estimated treasury spend rate in SOL per day.
	DailyBurnSOL float64

	Storage StorageConfig
	Redis   RedisConfig
	// MetricsAddr serves Prometheus metrics when non-empty.
	MetricsAddr string
}

// StorageConfig selects and parameterizes the persistence backend.
type StorageConfig struct {
	// Backend is one of file, memory, postgres.
	Backend string
	// DataDir holds the JSON documents for the file backend.
	DataDir string
	// PostgresDSN is required for the postgres backend.
	PostgresDSN string
	// ClickhouseDSN enables the tick archive when set.
	ClickhouseDSN string
}

// RedisConfig parameterizes the optional single-instance lease lock.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads .env (if present) and builds Config from the environment.
func Load() (*Config, error) {
	// Missing .env is fine, environment variables still apply.
	godotenv.Load()

	cfg := &Config{
		TokenMint:      os.Getenv("TOKEN_MINT"),
		WalletKey:      os.Getenv("WALLET_PRIVATE_KEY"),
		LockWallet:     os.Getenv("LOCK_WALLET"),
		RPCEndpoint:    getString("RPC_ENDPOINT", defaultRPCEndpoint),
		WSEndpoint:     os.Getenv("WS_ENDPOINT"),
		MarketEndpoint: os.Getenv("MARKET_ENDPOINT"),
		MetricsAddr:    os.Getenv("METRICS_ADDR"),
	}

	var err error
	if cfg.TickInterval, err = getDuration("TICK_INTERVAL", defaultTickInterval); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = getBool("DRY_RUN", false); err != nil {
		return nil, err
	}
	if cfg.DryRunBalanceSOL, err = getFloat("DRY_RUN_BALANCE_SOL", 10); err != nil {
		return nil, err
	}
	if cfg.Enabled, err = getBool("AGENT_ENABLED", true); err != nil {
		return nil, err
	}

	if cfg.Buyback, err = loadBuyback(); err != nil {
		return nil, err
	}
	if cfg.MinTokensToBurn, err = loadBurnThreshold(); err != nil {
		return nil, err
	}
	if cfg.Runway, err = loadRunway(); err != nil {
		return nil, err
	}
	if cfg.DailyBurnSOL, err = getFloat("DAILY_BURN_SOL", DefaultDailyBurnSOL); err != nil {
		return nil, err
	}
	if cfg.DailyBurnSOL <= 0 {
		return nil, errors.New("DAILY_BURN_SOL must be positive")
	}

	cfg.Storage = StorageConfig{
		Backend:       getString("STORAGE_BACKEND", defaultStorage),
		DataDir:       getString("DATA_DIR", defaultDataDir),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		ClickhouseDSN: os.Getenv("CLICKHOUSE_DSN"),
	}

	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	cfg.Redis = RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for fatal errors.
func (c *Config) Validate() error {
	if c.TokenMint == "" {
		return errors.New("TOKEN_MINT is required")
	}
	if err := validateAddress(c.TokenMint); err != nil {
		return fmt.Errorf("TOKEN_MINT: %w", err)
	}

	if !c.DryRun {
		if c.WalletKey == "" {
			return errors.New("WALLET_PRIVATE_KEY is required unless DRY_RUN=true")
		}
		if err := validatePrivateKey(c.WalletKey); err != nil {
			return fmt.Errorf("WALLET_PRIVATE_KEY: %w", err)
		}
	}

	if c.LockWallet != "" {
		if err := validateAddress(c.LockWallet); err != nil {
			return fmt.Errorf("LOCK_WALLET: %w", err)
		}
	}

	switch c.Storage.Backend {
	case StorageFile, StorageMemory:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.TickInterval <= 0 {
		return errors.New("TICK_INTERVAL must be positive")
	}
	return nil
}

func loadBuyback() (buyback.Config, error) {
	cfg := buyback.Config{Levels: domain.DefaultSupportLevels()}

	var err error
	if cfg.MinReserveSOL, err = getFloat("MIN_RESERVE_SOL", buyback.DefaultMinReserveSOL); err != nil {
		return cfg, err
	}
	if cfg.BuyCooldown, err = getDuration("BUY_COOLDOWN", buyback.DefaultBuyCooldown); err != nil {
		return cfg, err
	}
	if cfg.RSIOverbought, err = getFloat("RSI_OVERBOUGHT", buyback.DefaultRSIOverbought); err != nil {
		return cfg, err
	}
	if cfg.MinVolume24hUSD, err = getFloat("MIN_VOLUME_24H_USD", buyback.DefaultMinVolume24hUSD); err != nil {
		return cfg, err
	}
	if cfg.MaxPriceImpactPct, err = getFloat("MAX_PRICE_IMPACT_PCT", buyback.DefaultMaxPriceImpactPct); err != nil {
		return cfg, err
	}

	if raw := os.Getenv("SUPPORT_LEVELS"); raw != "" {
		levels, err := ParseSupportLevels(raw)
		if err != nil {
			return cfg, fmt.Errorf("SUPPORT_LEVELS: %w", err)
		}
		cfg.Levels = levels
	}
	return cfg, nil
}

func loadBurnThreshold() (uint64, error) {
	threshold, err := getInt("MIN_TOKENS_TO_BURN", int(burn.DefaultMinTokensToBurn))
	if err != nil {
		return 0, err
	}
	if threshold <= 0 {
		return 0, errors.New("MIN_TOKENS_TO_BURN must be positive")
	}
	return uint64(threshold), nil
}

func loadRunway() (runway.Thresholds, error) {
	t := runway.DefaultThresholds()

	var err error
	if t.EmergencyDays, err = getFloat("RUNWAY_EMERGENCY_DAYS", t.EmergencyDays); err != nil {
		return t, err
	}
	if t.CriticalDays, err = getFloat("RUNWAY_CRITICAL_DAYS", t.CriticalDays); err != nil {
		return t, err
	}
	if t.EmergencyDays >= t.CriticalDays {
		return t, errors.New("RUNWAY_EMERGENCY_DAYS must be below RUNWAY_CRITICAL_DAYS")
	}
	return t, nil
}

// ParseSupportLevels parses a "drop:amount" comma list such as
// "10:0.25,20:0.5,30:1.0" into sorted support levels.
func ParseSupportLevels(raw string) ([]domain.SupportLevel, error) {
	parts := strings.Split(raw, ",")
	levels := make([]domain.SupportLevel, 0, len(parts))
	seen := make(map[string]bool)

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.SplitN(part, ":", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("malformed tier %q, want drop:amount", part)
		}
		drop, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil || drop <= 0 || drop >= 100 {
			return nil, fmt.Errorf("tier %q: drop must be in (0, 100)", part)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil || amount <= 0 {
			return nil, fmt.Errorf("tier %q: amount must be positive", part)
		}

		lvl := domain.NewSupportLevel(drop, amount)
		if seen[lvl.ID] {
			return nil, fmt.Errorf("duplicate tier %q", lvl.ID)
		}
		seen[lvl.ID] = true
		levels = append(levels, lvl)
	}

	if len(levels) == 0 {
		return nil, errors.New("no tiers given")
	}
	domain.SortSupportLevels(levels)
	return levels, nil
}

// validateAddress checks that s is a base58 32-byte ed25519 point.
func validateAddress(s string) error {
	raw, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode base58: %w", err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return fmt.Errorf("not on curve: %w", err)
	}
	return nil
}

// validatePrivateKey checks a 64-byte base58 keypair whose trailing 32
// bytes are the on-curve public key.
func validatePrivateKey(s string) error {
	raw, err := base58.Decode(s)
	if err != nil {
		return fmt.Errorf("decode base58: %w", err)
	}
	if len(raw) != 64 {
		return fmt.Errorf("expected 64-byte keypair, got %d bytes", len(raw))
	}
	if _, err := new(edwards25519.Point).SetBytes(raw[32:]); err != nil {
		return fmt.Errorf("public key not on curve: %w", err)
	}
	return nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to float: %w", key, value, err)
	}
	return parsed, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("convert %s value %q to bool: %w", key, value, err)
	}
	return parsed, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to duration: %w", key, value, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return parsed, nil
}
