package lifi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/poller"
	"github.com/dwarvesf/perp-bridge/internal/retry"
	"github.com/dwarvesf/perp-bridge/internal/types/environments"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

func noSleep(context.Context, time.Duration) error { return nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Lifi {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	policy := retry.DefaultPolicy()
	policy.Sleep = noSleep
	return NewWithClient(resty.New().SetBaseURL(srv.URL), logger.New(environments.Test), policy)
}

func TestGetQuote_UsesDefaults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "42161", q.Get("fromChain"))
		assert.Equal(t, "hyperliquid", q.Get("toChain"))
		assert.Equal(t, "USDC", q.Get("toToken"))
		assert.Equal(t, "FASTEST", q.Get("order"))
		assert.Equal(t, "0.005", q.Get("slippage"))
		_, _ = w.Write([]byte(`{"id": "q1", "tool": "hyperliquid", "estimate": {"toAmount": "9990000", "executionDuration": 60, "feeCosts": [{"amountUSD": "0.01"}]}}`))
	})

	quote, err := client.GetQuote(context.Background(), QuoteRequest{
		FromChain:   "42161",
		FromToken:   "0xusdc",
		FromAmount:  "10000000",
		FromAddress: "0xabc",
	})
	require.NoError(t, err)
	assert.Equal(t, "hyperliquid", quote.Tool)
	assert.Equal(t, "9990000", quote.Estimate.ToAmount)
	assert.Equal(t, float64(60), quote.Estimate.ExecutionDuration)
	require.Len(t, quote.Estimate.FeeCosts, 1)
}

func TestGetRoutes_PostsOptions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		opts := body["options"].(map[string]interface{})
		assert.Equal(t, "RECOMMENDED", opts["order"])
		assert.Equal(t, 0.4, opts["maxPriceImpact"])
		assert.Equal(t, float64(42161), body["fromChainId"])
		_, _ = w.Write([]byte(`{"routes": [{"id": "r1", "toAmount": "9980000"}]}`))
	})

	routes, err := client.GetRoutes(context.Background(), RoutesRequest{
		FromChainID:      42161,
		FromAmount:       "10000000",
		FromTokenAddress: "0xusdc",
		ToChainID:        "1337",
		ToTokenAddress:   "0xusdc",
	})
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "9980000", routes[0].ToAmount)
}

func TestWaitForCompletion(t *testing.T) {
	cfg := poller.CompletionConfig()
	cfg.Sleep = noSleep
	cfg.MaxAttempts = 5

	t.Run("done", func(t *testing.T) {
		var calls int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "0xhash", r.URL.Query().Get("txHash"))
			assert.Equal(t, "hyperliquid", r.URL.Query().Get("bridge"))
			if atomic.AddInt32(&calls, 1) == 1 {
				_, _ = w.Write([]byte(`{"status": "PENDING"}`))
				return
			}
			_, _ = w.Write([]byte(`{"status": "DONE"}`))
		})

		res, err := client.WaitForCompletion(context.Background(), StatusRequest{TxHash: "0xhash", Bridge: ToolHyperliquid}, cfg)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, 2, res.Attempts)
	})

	t.Run("failed uses substatus", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": "FAILED", "substatus": "SLIPPAGE_EXCEEDED"}`))
		})

		res, err := client.WaitForCompletion(context.Background(), StatusRequest{TxHash: "0xhash"}, cfg)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "SLIPPAGE_EXCEEDED", res.Error)
	})

	t.Run("failed falls back to message", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": "FAILED", "message": "bridge paused"}`))
		})

		res, err := client.WaitForCompletion(context.Background(), StatusRequest{TxHash: "0xhash"}, cfg)
		require.NoError(t, err)
		assert.Equal(t, "bridge paused", res.Error)
	})

	t.Run("timeout", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status": "PENDING"}`))
		})

		_, err := client.WaitForCompletion(context.Background(), StatusRequest{TxHash: "0xhash"}, cfg)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrPollTimeout))
		assert.Contains(t, err.Error(), "timed out after 5 attempts")
	})
}

func TestGetTokens_JoinsChains(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42161,1337", r.URL.Query().Get("chains"))
		_, _ = w.Write([]byte(`{"tokens": {"42161": [{"address": "0xusdc", "symbol": "USDC", "decimals": 6}]}}`))
	})

	tokens, err := client.GetTokens(context.Background(), "42161", "1337")
	require.NoError(t, err)
	require.Len(t, tokens["42161"], 1)
	assert.Equal(t, 6, tokens["42161"][0].Decimals)
}

func TestGetChains_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetChains(context.Background())
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, errs.StatusCode(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
