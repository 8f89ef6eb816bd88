package executor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// PriceFunc returns the current token price in SOL, used by the dry-run
// executor to estimate swap proceeds.
type PriceFunc func() float64

// DryRun simulates treasury actions without touching the chain. It keeps
// a synthetic SOL balance that buys draw down and a synthetic token
// balance that buys grow and burns and locks shrink, so long dry runs
// still exercise the full decision path.
type DryRun struct {
	log   logrus.FieldLogger
	price PriceFunc
	seq   atomic.Uint64

	mu      sync.Mutex
	balance float64
	tokens  uint64
}

var _ Executor = (*DryRun)(nil)

// NewDryRun creates a dry-run executor seeded with the given balances.
func NewDryRun(balanceSOL float64, tokens uint64, price PriceFunc, log logrus.FieldLogger) *DryRun {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if price == nil {
		price = func() float64 { return 0 }
	}
	return &DryRun{
		log:     log.WithField("component", "dryrun_executor"),
		price:   price,
		balance: balanceSOL,
		tokens:  tokens,
	}
}

func (d *DryRun) Buy(ctx context.Context, amountSOL float64) (BuyResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if amountSOL <= 0 {
		return BuyResult{}, fmt.Errorf("buy amount must be positive, got %f", amountSOL)
	}
	if amountSOL > d.balance {
		return BuyResult{}, fmt.Errorf("insufficient simulated balance: have %.4f, need %.4f", d.balance, amountSOL)
	}

	var tokens uint64
	if p := d.price(); p > 0 {
		tokens = uint64(amountSOL / p)
	}

	d.balance -= amountSOL
	d.tokens += tokens

	result := BuyResult{
		Signature:      d.signature("buy"),
		SOLSpent:       amountSOL,
		TokensReceived: tokens,
	}
	d.log.WithFields(logrus.Fields{
		"amount_sol": amountSOL,
		"tokens":     tokens,
	}).Info("dry-run buy")
	return result, nil
}

func (d *DryRun) Burn(ctx context.Context, tokens uint64) (BurnResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if tokens == 0 {
		return BurnResult{}, fmt.Errorf("burn amount must be positive")
	}
	if tokens > d.tokens {
		tokens = d.tokens
	}
	d.tokens -= tokens

	d.log.WithField("tokens", tokens).Info("dry-run burn")
	return BurnResult{Signature: d.signature("burn"), TokensBurned: tokens}, nil
}

func (d *DryRun) Lock(ctx context.Context, tokens uint64) (LockResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if tokens == 0 {
		return LockResult{}, fmt.Errorf("lock amount must be positive")
	}
	if tokens > d.tokens {
		tokens = d.tokens
	}
	d.tokens -= tokens

	d.log.WithField("tokens", tokens).Info("dry-run lock")
	return LockResult{Signature: d.signature("lock"), TokensLocked: tokens}, nil
}

func (d *DryRun) BalanceSOL(ctx context.Context) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.balance, nil
}

func (d *DryRun) TokenBalance(ctx context.Context) (uint64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tokens, nil
}

func (d *DryRun) signature(action string) string {
	return fmt.Sprintf("dryrun-%s-%d", action, d.seq.Add(1))
}
