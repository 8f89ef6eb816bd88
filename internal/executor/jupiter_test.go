package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestJupiter(quoteURL, swapURL string) *jupiterClient {
	return &jupiterClient{
		quoteURL:   quoteURL,
		swapURL:    swapURL,
		client:     &http.Client{Timeout: 5 * time.Second},
		maxRetries: 2,
	}
}

func TestJupiterQuoteParsesAmounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("inputMint"); got != WrappedSOLMint {
			t.Errorf("inputMint = %s", got)
		}
		if got := r.URL.Query().Get("slippageBps"); got != "300" {
			t.Errorf("slippageBps = %s", got)
		}
		w.Write([]byte(`{"inAmount":"500000000","outAmount":"123456789","routePlan":[]}`))
	}))
	defer srv.Close()

	j := newTestJupiter(srv.URL, "")
	raw, summary, err := j.quote(context.Background(), WrappedSOLMint, "MINT", 500000000, 300)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if summary.outTokens() != 123456789 {
		t.Errorf("outTokens = %d", summary.outTokens())
	}
	if len(raw) == 0 {
		t.Error("expected raw quote preserved")
	}
}

func TestJupiterQuoteErrorField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"no route found"}`))
	}))
	defer srv.Close()

	j := newTestJupiter(srv.URL, "")
	if _, _, err := j.quote(context.Background(), WrappedSOLMint, "MINT", 1, 50); err == nil {
		t.Fatal("expected quote error")
	}
}

func TestJupiterSwapEchoesQuote(t *testing.T) {
	quote := json.RawMessage(`{"inAmount":"1","outAmount":"2"}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req swapRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if string(req.QuoteResponse) != string(quote) {
			t.Errorf("quote not echoed: %s", req.QuoteResponse)
		}
		if req.UserPublicKey != "PUBKEY" {
			t.Errorf("userPublicKey = %s", req.UserPublicKey)
		}
		if !req.WrapAndUnwrapSol {
			t.Error("wrapAndUnwrapSol should be set")
		}
		w.Write([]byte(`{"swapTransaction":"AQID"}`))
	}))
	defer srv.Close()

	j := newTestJupiter("", srv.URL)
	tx, err := j.swap(context.Background(), quote, "PUBKEY", 5000)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if tx != "AQID" {
		t.Errorf("swapTransaction = %s", tx)
	}
}

func TestJupiterSwapMissingTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	j := newTestJupiter("", srv.URL)
	if _, err := j.swap(context.Background(), json.RawMessage(`{}`), "PUBKEY", 0); err == nil {
		t.Fatal("expected missing swapTransaction error")
	}
}

func TestJupiterRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"inAmount":"1","outAmount":"2"}`))
	}))
	defer srv.Close()

	j := newTestJupiter(srv.URL, "")
	_, summary, err := j.quote(context.Background(), "A", "B", 1, 50)
	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if summary.outTokens() != 2 {
		t.Errorf("outTokens = %d", summary.outTokens())
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d", calls.Load())
	}
}
