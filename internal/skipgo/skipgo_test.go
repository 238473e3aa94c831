package skipgo

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/poller"
	"github.com/dwarvesf/perp-bridge/internal/retry"
	"github.com/dwarvesf/perp-bridge/internal/types/environments"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

const (
	dydxAddress  = "dydx1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5kmz6xt"
	nobleAddress = "noble1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5hpek7j"
	osmoAddress  = "osmo1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5helwsw"
	evmAddress   = "0x1111111111111111111111111111111111111111"
)

func noSleep(context.Context, time.Duration) error { return nil }

func newTestClient(t *testing.T, handler http.HandlerFunc) (*SkipGo, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	policy := retry.DefaultPolicy()
	policy.Sleep = noSleep
	return NewWithClient(resty.New().SetBaseURL(srv.URL), logger.New(environments.Test), policy, false), srv
}

func fastPoll(maxAttempts int) poller.Config {
	cfg := poller.CompletionConfig()
	cfg.MaxAttempts = maxAttempts
	cfg.Sleep = noSleep
	return cfg
}

func TestGetRoute_SendsRequestAndNormalises(t *testing.T) {
	var got map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fungible/route", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{
			"source_asset_chain_id": "dydx-mainnet-1",
			"source_asset_denom": "ibc/usdc",
			"dest_asset_chain_id": "42161",
			"dest_asset_denom": "0xusdc",
			"amount_in": "10000000",
			"amount_out": "9950000",
			"estimated_route_duration_seconds": 900,
			"operations": [{"transfer": {}}, {"cctp_transfer": {}}],
			"required_chain_addresses": ["dydx-mainnet-1", "noble-1", "42161"],
			"txs_required": 1,
			"estimated_fees": [{"usd_amount": "0.12"}]
		}`))
	})

	route, err := client.GetRoute(context.Background(), RouteRequest{
		AmountIn:      "10000000",
		SourceDenom:   "ibc/usdc",
		SourceChainID: "dydx-mainnet-1",
		DestDenom:     "0xusdc",
		DestChainID:   "42161",
	})
	require.NoError(t, err)

	assert.Equal(t, "10000000", got["amount_in"])
	assert.Equal(t, "0", got["cumulative_affiliate_fee_bps"])
	assert.Equal(t, true, got["allow_unsafe"])
	assert.Equal(t, true, got["smart_relay"])
	assert.Equal(t, []interface{}{"CCTP", "IBC", "AXELAR"}, got["bridges"])

	assert.Equal(t, "dydx-mainnet-1", route.SourceChainID)
	assert.Equal(t, "9950000", route.AmountOut)
	assert.Equal(t, 900, route.EstimatedDurationSeconds)
	assert.Len(t, route.Operations, 2)
	assert.Equal(t, []string{"dydx-mainnet-1", "noble-1", "42161"}, route.RequiredChainAddresses)
	assert.Equal(t, "0.12", route.EstimatedFeeUSD.String())
}

func TestGetRoute_AcceptsCamelCaseAndEmptyOperations(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sourceAssetChainID": "dydx-mainnet-1", "destAssetChainID": "42161", "amountOut": "5", "operations": []}`))
	})

	route, err := client.GetRoute(context.Background(), RouteRequest{AmountIn: "5"})
	require.NoError(t, err)
	assert.Equal(t, "42161", route.DestChainID)
	assert.Equal(t, "5", route.AmountOut)
	assert.Empty(t, route.Operations)
}

func TestGetRoute_InvalidResponseIsNotRetried(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"source_asset_chain_id": "dydx-mainnet-1"}`))
	})

	_, err := client.GetRoute(context.Background(), RouteRequest{AmountIn: "1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidRoute))
	assert.Equal(t, "Invalid route response from Skip API", err.Error())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetRoute_RequiresChainsAndOperations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing source chain", body: `{"dest_asset_chain_id": "42161", "operations": []}`},
		{name: "missing destination chain", body: `{"source_asset_chain_id": "dydx-mainnet-1", "operations": []}`},
		{name: "missing camel case destination chain", body: `{"sourceAssetChainID": "dydx-mainnet-1", "operations": []}`},
		{name: "blank destination chain", body: `{"source_asset_chain_id": "dydx-mainnet-1", "dest_asset_chain_id": "", "operations": []}`},
		{name: "missing operations", body: `{"source_asset_chain_id": "dydx-mainnet-1", "dest_asset_chain_id": "42161"}`},
		{name: "not an object", body: `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			route, err := client.GetRoute(context.Background(), RouteRequest{AmountIn: "1"})
			require.Error(t, err)
			assert.Nil(t, route)
			assert.True(t, errors.Is(err, errs.ErrInvalidRoute))
		})
	}
}

func TestGetRoute_RetriesServerErrors(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"source_asset_chain_id": "a", "dest_asset_chain_id": "b", "operations": []}`))
	})

	_, err := client.GetRoute(context.Background(), RouteRequest{AmountIn: "1"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetRoute_ClientErrorCarriesServiceMessage(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "amount too low"}`))
	})

	_, err := client.GetRoute(context.Background(), RouteRequest{AmountIn: "1"})
	require.Error(t, err)
	assert.Equal(t, "amount too low", err.Error())
	assert.Equal(t, http.StatusBadRequest, errs.StatusCode(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetSignablePayloads_NormalisesTransfer(t *testing.T) {
	var got map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fungible/msgs", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"txs": [{"cosmos_tx": {
			"chain_id": "dydx-mainnet-1",
			"signer_address": "` + dydxAddress + `",
			"msgs": [{
				"msg_type_url": "/ibc.applications.transfer.v1.MsgTransfer",
				"msg": "{\"source_channel\":\"channel-0\",\"token\":{\"denom\":\"ibc/usdc\",\"amount\":\"10000000\"},\"sender\":\"` + dydxAddress + `\",\"receiver\":\"` + nobleAddress + `\",\"timeoutHeight\":{\"revisionNumber\":\"1\",\"revisionHeight\":\"99\"}}"
			}]
		}}]}`))
	})

	route := &model.RouteQuote{
		SourceChainID: "dydx-mainnet-1",
		AmountIn:      "10000000",
		AmountOut:     "9950000",
		Operations:    []json.RawMessage{json.RawMessage(`{"transfer":{}}`)},
	}
	payloads, err := client.GetSignablePayloads(context.Background(), route, []string{dydxAddress, nobleAddress, evmAddress})
	require.NoError(t, err)

	assert.Equal(t, "1", got["slippage_tolerance_percent"])
	assert.Equal(t, "9950000", got["amount_out"])
	assert.Len(t, got["address_list"], 3)

	require.Len(t, payloads, 1)
	p := payloads[0]
	assert.Equal(t, model.PayloadCosmos, p.Kind)
	require.NotNil(t, p.Cosmos)
	require.Len(t, p.Cosmos.Msgs, 1)

	msg := p.Cosmos.Msgs[0]
	assert.Equal(t, consts.COSMOS_MSG_TRANSFER, msg.TypeURL)
	require.NotNil(t, msg.Transfer)
	assert.Equal(t, "transfer", msg.Transfer.SourcePort)
	assert.Equal(t, "channel-0", msg.Transfer.SourceChannel)
	assert.Equal(t, "10000000", msg.Transfer.Token.Amount)
	assert.Equal(t, "99", msg.Transfer.TimeoutHeight.RevisionHeight)
	assert.Equal(t, "0", msg.Transfer.TimeoutTimestamp)
	assert.Equal(t, "", msg.Transfer.Memo)
}

func TestGetSignablePayloads_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "no transactions",
			body:    `{"txs": []}`,
			wantErr: "No transactions returned from Skip API",
		},
		{
			name:    "service message",
			body:    `{"message": "route expired"}`,
			wantErr: "route expired",
		},
		{
			name:    "no messages",
			body:    `{"txs": [{"cosmos_tx": {"chain_id": "dydx-mainnet-1", "msgs": []}}]}`,
			wantErr: "No messages in transaction",
		},
		{
			name:    "transfer without token",
			body:    `{"txs": [{"cosmos_tx": {"msgs": [{"msg_type_url": "/ibc.applications.transfer.v1.MsgTransfer", "msg": {"source_channel": "channel-0"}}]}}]}`,
			wantErr: "No token found in IBC transfer message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.GetSignablePayloads(context.Background(), &model.RouteQuote{}, []string{dydxAddress, evmAddress})
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestGetSignablePayloads_AddressListMustMatchRoute(t *testing.T) {
	route := &model.RouteQuote{RequiredChainAddresses: []string{"dydx-mainnet-1", "noble-1", "42161"}}

	tests := []struct {
		name      string
		route     *model.RouteQuote
		addresses []string
	}{
		{name: "fewer addresses than chains", route: route, addresses: []string{dydxAddress}},
		{name: "more addresses than chains", route: route, addresses: []string{dydxAddress, nobleAddress, evmAddress, evmAddress}},
		{name: "blank address", route: route, addresses: []string{dydxAddress, "", evmAddress}},
		{name: "no addresses", route: &model.RouteQuote{}, addresses: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				_, _ = w.Write([]byte(`{"txs": [{"evm_tx": {"chain_id": "42161", "to": "0xabc"}}]}`))
			})

			payloads, err := client.GetSignablePayloads(context.Background(), tt.route, tt.addresses)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrAddressMismatch))
			assert.Nil(t, payloads)
			assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
		})
	}
}

func TestGetSignablePayloads_EVMTx(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"txs": [{"evm_tx": {"chain_id": "42161", "to": "0xabc", "value": "0", "data": "0x01", "signer_address": "` + evmAddress + `"}}]}`))
	})

	payloads, err := client.GetSignablePayloads(context.Background(), &model.RouteQuote{}, []string{dydxAddress, evmAddress})
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, model.PayloadEVM, payloads[0].Kind)
	assert.Equal(t, "0xabc", payloads[0].EVM.To)
	assert.Equal(t, "42161", payloads[0].ChainID)
}

func TestWaitForCompletion(t *testing.T) {
	t.Run("success after pending", func(t *testing.T) {
		var calls int32
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				_, _ = w.Write([]byte(`{"state": "STATE_PENDING"}`))
				return
			}
			_, _ = w.Write([]byte(`{"state": "STATE_COMPLETED_SUCCESS"}`))
		})

		res, err := client.WaitForCompletion(context.Background(), "0xhash", "dydx-mainnet-1", fastPoll(10))
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, 3, res.Attempts)
	})

	t.Run("failure carries service error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"state": "STATE_COMPLETED_ERROR", "error": {"message": "packet timed out"}}`))
		})

		res, err := client.WaitForCompletion(context.Background(), "0xhash", "dydx-mainnet-1", fastPoll(10))
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "packet timed out", res.Error)
	})

	t.Run("abandoned without error text", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"state": "STATE_ABANDONED"}`))
		})

		res, err := client.WaitForCompletion(context.Background(), "0xhash", "dydx-mainnet-1", fastPoll(10))
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, "Transaction failed or was abandoned", res.Error)
	})

	t.Run("gives up after consecutive errors", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.WaitForCompletion(context.Background(), "0xhash", "dydx-mainnet-1", fastPoll(60))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrTooManyErrors))
		assert.Contains(t, err.Error(), "Failed to check transaction status after 5 consecutive errors")
	})

	t.Run("times out after max attempts", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"state": "STATE_PENDING"}`))
		})

		_, err := client.WaitForCompletion(context.Background(), "0xhash", "dydx-mainnet-1", fastPoll(4))
		require.Error(t, err)
		assert.True(t, errors.Is(err, errs.ErrPollTimeout))
		assert.Equal(t, "Transaction status check timed out after 4 attempts. Your transaction may still complete - check the explorer.", err.Error())
	})
}

func TestAddressList(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/info/chains", r.URL.Path)
		_, _ = w.Write([]byte(`{"chains": [{"chain_id": "custom-1", "bech32_prefix": "osmo"}]}`))
	})

	t.Run("maps each chain to its address", func(t *testing.T) {
		route := &model.RouteQuote{RequiredChainAddresses: []string{"dydx-mainnet-1", "noble-1", "42161"}}
		got, err := client.AddressList(context.Background(), route, dydxAddress, evmAddress)
		require.NoError(t, err)
		assert.Equal(t, []string{dydxAddress, nobleAddress, evmAddress}, got)
	})

	t.Run("looks up unknown prefixes", func(t *testing.T) {
		route := &model.RouteQuote{RequiredChainAddresses: []string{"custom-1"}}
		got, err := client.AddressList(context.Background(), route, dydxAddress, evmAddress)
		require.NoError(t, err)
		assert.Equal(t, []string{osmoAddress}, got)
	})

	t.Run("falls back when the route names no chains", func(t *testing.T) {
		got, err := client.AddressList(context.Background(), &model.RouteQuote{}, dydxAddress, evmAddress)
		require.NoError(t, err)
		assert.Equal(t, []string{dydxAddress, evmAddress}, got)
	})

	t.Run("rejects a malformed cosmos address", func(t *testing.T) {
		route := &model.RouteQuote{RequiredChainAddresses: []string{"noble-1"}}
		_, err := client.AddressList(context.Background(), route, "not-bech32", evmAddress)
		assert.Error(t, err)
	})
}
