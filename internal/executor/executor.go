// Package executor carries out treasury actions on-chain: market
// buybacks through the Jupiter aggregator, token burns, and transfers
// into a lock wallet.
package executor

import "context"

// BuyResult reports a completed buyback.
type BuyResult struct {
	Signature      string  `json:"signature"`
	SOLSpent       float64 `json:"sol_spent"`
	TokensReceived uint64  `json:"tokens_received"`
}

// BurnResult reports a completed burn.
type BurnResult struct {
	Signature    string `json:"signature"`
	TokensBurned uint64 `json:"tokens_burned"`
}

// LockResult reports a completed lock transfer.
type LockResult struct {
	Signature    string `json:"signature"`
	TokensLocked uint64 `json:"tokens_locked"`
}

// Executor performs treasury actions. Implementations must be safe for
// sequential use from the agent loop; concurrent calls are not required.
type Executor interface {
	// Buy swaps amountSOL of SOL into the managed token.
	Buy(ctx context.Context, amountSOL float64) (BuyResult, error)

	// Burn destroys tokens from the treasury token account.
	Burn(ctx context.Context, tokens uint64) (BurnResult, error)

	// Lock transfers tokens to the configured lock wallet.
	Lock(ctx context.Context, tokens uint64) (LockResult, error)

	// BalanceSOL returns the treasury wallet SOL balance.
	BalanceSOL(ctx context.Context) (float64, error)

	// TokenBalance returns the treasury token account balance in raw
	// token units.
	TokenBalance(ctx context.Context) (uint64, error)
}

// LamportsPerSOL is the lamport denomination of one SOL.
const LamportsPerSOL = 1_000_000_000
