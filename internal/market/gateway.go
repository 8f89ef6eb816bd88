// Package market fetches and normalizes token market data from a
// DexScreener-compatible REST endpoint.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"solana-treasury-agent/internal/domain"
)

// Default gateway configuration.
const (
	DefaultEndpoint   = "https://api.dexscreener.com/latest/dex/tokens"
	DefaultTimeout    = 15 * time.Second
	DefaultMaxRetries = 3
)

// Gateway fetches market snapshots for one token mint.
type Gateway struct {
	endpoint   string
	mint       string
	client     *http.Client
	maxRetries uint64
	now        func() time.Time
}

// Option configures Gateway.
type Option func(*Gateway)

// WithEndpoint overrides the API base URL.
func WithEndpoint(endpoint string) Option {
	return func(g *Gateway) {
		g.endpoint = endpoint
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.client.Timeout = d
	}
}

// WithMaxRetries sets retry attempts per fetch.
func WithMaxRetries(n int) Option {
	return func(g *Gateway) {
		if n >= 0 {
			g.maxRetries = uint64(n)
		}
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// WithClock overrides the snapshot timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// NewGateway creates a gateway for the given token mint.
func NewGateway(mint string, opts ...Option) *Gateway {
	g := &Gateway{
		endpoint:   DefaultEndpoint,
		mint:       mint,
		client:     &http.Client{Timeout: DefaultTimeout},
		maxRetries: DefaultMaxRetries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Snapshot fetches the current market snapshot. Transient HTTP failures
// retry with exponential backoff inside the caller's context deadline.
// When the token trades on multiple pairs, the pair with the highest USD
// liquidity wins.
func (g *Gateway) Snapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	var resp pairsResponse

	fetch := func() error {
		return g.fetchPairs(ctx, &resp)
	}
	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), g.maxRetries), ctx)
	if err := backoff.Retry(fetch, policy); err != nil {
		return domain.MarketSnapshot{}, fmt.Errorf("fetch market data: %w", err)
	}

	best, ok := selectPair(resp.Pairs)
	if !ok {
		return domain.MarketSnapshot{}, fmt.Errorf("no trading pairs for mint %s", g.mint)
	}
	return normalize(best, g.now().UTC()), nil
}

func (g *Gateway) fetchPairs(ctx context.Context, out *pairsResponse) error {
	url := fmt.Sprintf("%s/%s", g.endpoint, g.mint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("market api status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode market response: %w", err)
	}
	return nil
}

// selectPair picks the pair with the highest USD liquidity.
func selectPair(pairs []pair) (pair, bool) {
	if len(pairs) == 0 {
		return pair{}, false
	}
	best := pairs[0]
	for _, p := range pairs[1:] {
		if p.Liquidity.USD > best.Liquidity.USD {
			best = p
		}
	}
	return best, true
}

// normalize maps a wire pair into the fixed snapshot schema. Absent or
// malformed upstream fields become 0, never null, so downstream
// arithmetic never sees undefined values. Negative prices clamp to 0.
func normalize(p pair, ts time.Time) domain.MarketSnapshot {
	return domain.MarketSnapshot{
		PriceSOL:       clampNonNegative(parsePrice(p.PriceNative)),
		PriceUSD:       clampNonNegative(parsePrice(p.PriceUSD)),
		LiquidityUSD:   clampNonNegative(p.Liquidity.USD),
		Volume24hUSD:   clampNonNegative(p.Volume.H24),
		Volume1hUSD:    clampNonNegative(p.Volume.H1),
		PriceChange1h:  p.PriceChange.H1,
		PriceChange6h:  p.PriceChange.H6,
		PriceChange24h: p.PriceChange.H24,
		TxCount24h:     p.Txns.H24.Buys + p.Txns.H24.Sells,
		Timestamp:      ts,
	}
}

func parsePrice(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
