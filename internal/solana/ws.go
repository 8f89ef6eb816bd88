package solana

import "context"

// Confirmer waits for transaction signatures to reach confirmed commitment.
type Confirmer interface {
	// AwaitSignature blocks until the signature is confirmed, fails
	// on-chain, or the context is done.
	AwaitSignature(ctx context.Context, signature string) (SignatureResult, error)

	// Close closes the underlying connection.
	Close() error
}

// SignatureResult is the outcome of a signature subscription.
type SignatureResult struct {
	Signature string
	Slot      int64
	// Err is the on-chain transaction error, nil on success.
	Err interface{}
}

// Confirmed reports whether the transaction landed without error.
func (r SignatureResult) Confirmed() bool {
	return r.Err == nil
}
