package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/cenkalti/backoff/v4"
)

// Jupiter aggregator endpoints.
const (
	DefaultJupiterQuoteURL = "https://api.jup.ag/swap/v1/quote"
	DefaultJupiterSwapURL  = "https://api.jup.ag/swap/v1/swap"

	// WrappedSOLMint is the mint address of wrapped SOL.
	WrappedSOLMint = "So11111111111111111111111111111111111111112"
)

// jupiterClient wraps the Jupiter quote and swap HTTP API. The quote
// response is kept as raw JSON because the swap endpoint requires it
// echoed back verbatim.
type jupiterClient struct {
	quoteURL   string
	swapURL    string
	client     *http.Client
	maxRetries uint64
}

type quoteSummary struct {
	InAmount  string `json:"inAmount"`
	OutAmount string `json:"outAmount"`
	ErrorMsg  string `json:"error"`
}

// outTokens parses the quoted output amount, 0 when absent.
func (q quoteSummary) outTokens() uint64 {
	v, err := strconv.ParseUint(q.OutAmount, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (j *jupiterClient) quote(ctx context.Context, inputMint, outputMint string, amount uint64, slippageBps int) (json.RawMessage, quoteSummary, error) {
	url := fmt.Sprintf("%s?inputMint=%s&outputMint=%s&amount=%d&slippageBps=%d&swapMode=ExactIn",
		j.quoteURL, inputMint, outputMint, amount, slippageBps)

	raw, err := j.get(ctx, url)
	if err != nil {
		return nil, quoteSummary{}, fmt.Errorf("jupiter quote: %w", err)
	}

	var summary quoteSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, quoteSummary{}, fmt.Errorf("decode quote: %w", err)
	}
	if summary.ErrorMsg != "" {
		return nil, quoteSummary{}, fmt.Errorf("jupiter quote: %s", summary.ErrorMsg)
	}
	return raw, summary, nil
}

type swapRequest struct {
	QuoteResponse             json.RawMessage `json:"quoteResponse"`
	UserPublicKey             string          `json:"userPublicKey"`
	WrapAndUnwrapSol          bool            `json:"wrapAndUnwrapSol"`
	DynamicComputeUnitLimit   bool            `json:"dynamicComputeUnitLimit"`
	PrioritizationFeeLamports uint64          `json:"prioritizationFeeLamports,omitempty"`
}

type swapResponse struct {
	SwapTransaction string `json:"swapTransaction"`
	ErrorMsg        string `json:"error"`
}

// swap requests a signed-ready transaction for the quote and returns it
// base64-encoded.
func (j *jupiterClient) swap(ctx context.Context, quote json.RawMessage, userPubkey string, priorityFee uint64) (string, error) {
	body, err := json.Marshal(swapRequest{
		QuoteResponse:             quote,
		UserPublicKey:             userPubkey,
		WrapAndUnwrapSol:          true,
		DynamicComputeUnitLimit:   true,
		PrioritizationFeeLamports: priorityFee,
	})
	if err != nil {
		return "", fmt.Errorf("encode swap request: %w", err)
	}

	raw, err := j.post(ctx, j.swapURL, body)
	if err != nil {
		return "", fmt.Errorf("jupiter swap: %w", err)
	}

	var resp swapResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode swap response: %w", err)
	}
	if resp.ErrorMsg != "" {
		return "", fmt.Errorf("jupiter swap: %s", resp.ErrorMsg)
	}
	if resp.SwapTransaction == "" {
		return "", fmt.Errorf("no swapTransaction in response")
	}
	return resp.SwapTransaction, nil
}

func (j *jupiterClient) get(ctx context.Context, url string) ([]byte, error) {
	return j.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
}

func (j *jupiterClient) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	return j.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

func (j *jupiterClient) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	var raw []byte

	attempt := func() error {
		req, err := build()
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := j.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("status %d", resp.StatusCode)
		}

		raw, err = io.ReadAll(resp.Body)
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), j.maxRetries), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, err
	}
	return raw, nil
}
