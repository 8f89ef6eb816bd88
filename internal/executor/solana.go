package executor

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net/http"
	"time"

	"github.com/gagliardetto/solana-go"
	ata "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"

	ws "solana-treasury-agent/internal/solana"
)

// OnChain executor defaults.
const (
	DefaultSlippageBps    = 300
	DefaultSendRetries    = 3
	DefaultConfirmTimeout = 90 * time.Second
	DefaultPollInterval   = 2 * time.Second
	DefaultPollAttempts   = 30
)

// OnChainConfig configures the on-chain executor.
type OnChainConfig struct {
	// RPCEndpoint is the Solana JSON-RPC HTTP endpoint.
	RPCEndpoint string
	// Wallet is the treasury wallet keypair.
	Wallet solana.PrivateKey
	// Mint is the managed token mint.
	Mint solana.PublicKey
	// LockWallet receives locked tokens.
	LockWallet solana.PublicKey
	// SlippageBps is swap slippage tolerance in basis points.
	SlippageBps int
	// PriorityFeeLamports is the prioritization fee attached to swaps.
	PriorityFeeLamports uint64
	// QuoteURL and SwapURL override the Jupiter endpoints.
	QuoteURL string
	SwapURL  string
	// HTTPClient is used for Jupiter calls.
	HTTPClient *http.Client
	// Confirmer confirms signatures over WebSocket. When nil the
	// executor falls back to polling getSignatureStatuses.
	Confirmer ws.Confirmer
	// ConfirmTimeout bounds the wait for confirmation.
	ConfirmTimeout time.Duration
	// Logger defaults to the standard logrus logger.
	Logger logrus.FieldLogger
}

// OnChain performs treasury actions against the Solana chain: buybacks
// through Jupiter, burns and lock transfers through the SPL token
// program.
type OnChain struct {
	client         *rpc.Client
	wallet         solana.PrivateKey
	mint           solana.PublicKey
	lockWallet     solana.PublicKey
	slippageBps    int
	priorityFee    uint64
	jupiter        *jupiterClient
	confirmer      ws.Confirmer
	confirmTimeout time.Duration
	log            logrus.FieldLogger
}

var _ Executor = (*OnChain)(nil)

// NewOnChain creates an executor bound to one treasury wallet and mint.
func NewOnChain(cfg OnChainConfig) (*OnChain, error) {
	if cfg.RPCEndpoint == "" {
		return nil, fmt.Errorf("rpc endpoint required")
	}
	if len(cfg.Wallet) == 0 {
		return nil, fmt.Errorf("wallet key required")
	}
	if cfg.Mint.IsZero() {
		return nil, fmt.Errorf("token mint required")
	}

	if cfg.SlippageBps <= 0 {
		cfg.SlippageBps = DefaultSlippageBps
	}
	if cfg.QuoteURL == "" {
		cfg.QuoteURL = DefaultJupiterQuoteURL
	}
	if cfg.SwapURL == "" {
		cfg.SwapURL = DefaultJupiterSwapURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = DefaultConfirmTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &OnChain{
		client:      rpc.New(cfg.RPCEndpoint),
		wallet:      cfg.Wallet,
		mint:        cfg.Mint,
		lockWallet:  cfg.LockWallet,
		slippageBps: cfg.SlippageBps,
		priorityFee: cfg.PriorityFeeLamports,
		jupiter: &jupiterClient{
			quoteURL:   cfg.QuoteURL,
			swapURL:    cfg.SwapURL,
			client:     cfg.HTTPClient,
			maxRetries: 3,
		},
		confirmer:      cfg.Confirmer,
		confirmTimeout: cfg.ConfirmTimeout,
		log:            log.WithField("component", "onchain_executor"),
	}, nil
}

// Buy swaps amountSOL into the managed token through Jupiter.
func (e *OnChain) Buy(ctx context.Context, amountSOL float64) (BuyResult, error) {
	if amountSOL <= 0 {
		return BuyResult{}, fmt.Errorf("buy amount must be positive, got %f", amountSOL)
	}
	lamports := uint64(amountSOL * LamportsPerSOL)

	quoteRaw, summary, err := e.jupiter.quote(ctx, WrappedSOLMint, e.mint.String(), lamports, e.slippageBps)
	if err != nil {
		return BuyResult{}, err
	}
	if summary.outTokens() == 0 {
		return BuyResult{}, fmt.Errorf("quote returned zero output, no route")
	}

	txBase64, err := e.jupiter.swap(ctx, quoteRaw, e.wallet.PublicKey().String(), e.priorityFee)
	if err != nil {
		return BuyResult{}, err
	}

	txBytes, err := base64.StdEncoding.DecodeString(txBase64)
	if err != nil {
		return BuyResult{}, fmt.Errorf("decode swap transaction: %w", err)
	}
	tx, err := solana.TransactionFromBytes(txBytes)
	if err != nil {
		return BuyResult{}, fmt.Errorf("parse swap transaction: %w", err)
	}

	sig, err := e.signAndSend(ctx, tx, true)
	if err != nil {
		return BuyResult{}, err
	}

	e.log.WithFields(logrus.Fields{
		"signature":  sig.String(),
		"amount_sol": amountSOL,
		"tokens":     summary.outTokens(),
	}).Info("buyback executed")

	return BuyResult{
		Signature:      sig.String(),
		SOLSpent:       amountSOL,
		TokensReceived: summary.outTokens(),
	}, nil
}

// Burn destroys tokens from the treasury token account.
func (e *OnChain) Burn(ctx context.Context, tokens uint64) (BurnResult, error) {
	if tokens == 0 {
		return BurnResult{}, fmt.Errorf("burn amount must be positive")
	}

	source, _, err := solana.FindAssociatedTokenAddress(e.wallet.PublicKey(), e.mint)
	if err != nil {
		return BurnResult{}, fmt.Errorf("derive token account: %w", err)
	}

	inst := token.NewBurnInstruction(tokens, source, e.mint, e.wallet.PublicKey(), nil).Build()

	sig, err := e.buildAndSend(ctx, []solana.Instruction{inst})
	if err != nil {
		return BurnResult{}, err
	}

	e.log.WithFields(logrus.Fields{
		"signature": sig.String(),
		"tokens":    tokens,
	}).Info("burn executed")

	return BurnResult{Signature: sig.String(), TokensBurned: tokens}, nil
}

// Lock transfers tokens into the lock wallet's associated token account,
// creating it first if it does not exist.
func (e *OnChain) Lock(ctx context.Context, tokens uint64) (LockResult, error) {
	if tokens == 0 {
		return LockResult{}, fmt.Errorf("lock amount must be positive")
	}
	if e.lockWallet.IsZero() {
		return LockResult{}, fmt.Errorf("lock wallet not configured")
	}

	source, _, err := solana.FindAssociatedTokenAddress(e.wallet.PublicKey(), e.mint)
	if err != nil {
		return LockResult{}, fmt.Errorf("derive source account: %w", err)
	}
	dest, _, err := solana.FindAssociatedTokenAddress(e.lockWallet, e.mint)
	if err != nil {
		return LockResult{}, fmt.Errorf("derive lock account: %w", err)
	}

	var instructions []solana.Instruction
	if !e.accountExists(ctx, dest) {
		instructions = append(instructions,
			ata.NewCreateInstruction(e.wallet.PublicKey(), e.lockWallet, e.mint).Build())
	}
	instructions = append(instructions,
		token.NewTransferInstruction(tokens, source, dest, e.wallet.PublicKey(), nil).Build())

	sig, err := e.buildAndSend(ctx, instructions)
	if err != nil {
		return LockResult{}, err
	}

	e.log.WithFields(logrus.Fields{
		"signature": sig.String(),
		"tokens":    tokens,
	}).Info("lock executed")

	return LockResult{Signature: sig.String(), TokensLocked: tokens}, nil
}

// BalanceSOL returns the treasury wallet balance in SOL.
func (e *OnChain) BalanceSOL(ctx context.Context) (float64, error) {
	out, err := e.client.GetBalance(ctx, e.wallet.PublicKey(), rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return float64(out.Value) / LamportsPerSOL, nil
}

// TokenBalance returns the raw token balance across the wallet's token
// accounts for the managed mint.
func (e *OnChain) TokenBalance(ctx context.Context) (uint64, error) {
	accounts, err := e.client.GetTokenAccountsByOwner(
		ctx,
		e.wallet.PublicKey(),
		&rpc.GetTokenAccountsConfig{Mint: &e.mint},
		&rpc.GetTokenAccountsOpts{Commitment: rpc.CommitmentConfirmed},
	)
	if err != nil {
		return 0, fmt.Errorf("get token accounts: %w", err)
	}

	var total uint64
	for _, acc := range accounts.Value {
		data := acc.Account.Data.GetBinary()
		// SPL token account layout puts the amount at bytes 64..72.
		if len(data) < 72 {
			continue
		}
		total += binary.LittleEndian.Uint64(data[64:72])
	}
	return total, nil
}

// buildAndSend assembles a transaction from instructions, signs it and
// sends it with confirmation.
func (e *OnChain) buildAndSend(ctx context.Context, instructions []solana.Instruction) (solana.Signature, error) {
	blockhash, err := e.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash.Value.Blockhash,
		solana.TransactionPayer(e.wallet.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	return e.signAndSend(ctx, tx, false)
}

// signAndSend signs, optionally simulates, sends with retry and waits
// for confirmation.
func (e *OnChain) signAndSend(ctx context.Context, tx *solana.Transaction, simulate bool) (solana.Signature, error) {
	_, err := tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(e.wallet.PublicKey()) {
			return &e.wallet
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("sign: %w", err)
	}

	if simulate {
		sim, err := e.client.SimulateTransaction(ctx, tx)
		if err != nil {
			return solana.Signature{}, fmt.Errorf("simulate: %w", err)
		}
		if sim.Value.Err != nil {
			return solana.Signature{}, fmt.Errorf("simulation error: %v", sim.Value.Err)
		}
	}

	sig, err := e.sendWithRetry(ctx, tx, DefaultSendRetries)
	if err != nil {
		return solana.Signature{}, err
	}

	if err := e.confirm(ctx, sig); err != nil {
		return solana.Signature{}, err
	}
	return sig, nil
}

func (e *OnChain) sendWithRetry(ctx context.Context, tx *solana.Transaction, maxRetries int) (solana.Signature, error) {
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		sig, err := e.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
			SkipPreflight:       true,
			PreflightCommitment: rpc.CommitmentProcessed,
		})
		if err == nil {
			return sig, nil
		}

		lastErr = err
		e.log.WithError(err).Warnf("send attempt %d failed", i+1)

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return solana.Signature{}, ctx.Err()
			case <-time.After(time.Duration(50*(i+1)) * time.Millisecond):
			}
		}
	}

	return solana.Signature{}, fmt.Errorf("send after %d attempts: %w", maxRetries, lastErr)
}

// confirm waits for the signature over WebSocket when a confirmer is
// configured, otherwise polls getSignatureStatuses.
func (e *OnChain) confirm(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, e.confirmTimeout)
	defer cancel()

	if e.confirmer != nil {
		result, err := e.confirmer.AwaitSignature(ctx, sig.String())
		if err == nil {
			if !result.Confirmed() {
				return fmt.Errorf("tx failed: %v", result.Err)
			}
			return nil
		}
		e.log.WithError(err).Warn("websocket confirmation failed, falling back to polling")
	}

	for i := 0; i < DefaultPollAttempts; i++ {
		statuses, err := e.client.GetSignatureStatuses(ctx, true, sig)
		if err == nil && len(statuses.Value) > 0 && statuses.Value[0] != nil {
			status := statuses.Value[0]
			if status.Err != nil {
				return fmt.Errorf("tx failed: %v", status.Err)
			}
			switch status.ConfirmationStatus {
			case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation timeout for %s: %w", sig, ctx.Err())
		case <-time.After(DefaultPollInterval):
		}
	}

	return fmt.Errorf("tx not confirmed after %d polls: %s", DefaultPollAttempts, sig)
}

func (e *OnChain) accountExists(ctx context.Context, account solana.PublicKey) bool {
	info, err := e.client.GetAccountInfo(ctx, account)
	return err == nil && info != nil && info.Value != nil
}
