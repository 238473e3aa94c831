package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/dydx"
	"github.com/dwarvesf/perp-bridge/internal/hyperliquid"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/poller"
	"github.com/dwarvesf/perp-bridge/internal/skipgo"
)

const (
	testCosmosAddress = "dydx1qyqszqgpqyqszqgpqyqszqgpqyqszqgp8apuk5"
	testEVMAddress    = "0x00000000000000000000000000000000000000Aa"
)

type fakeClock struct {
	mu     sync.Mutex
	t      time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.t = c.t.Add(d)
	return ctx.Err()
}

type fakeSkip struct {
	mu          sync.Mutex
	routeCalls  int
	route       *model.RouteQuote
	routeErr    error
	payloads    []model.SignablePayload
	payloadsErr error
	onPayloads  func()
}

func newFakeSkip() *fakeSkip {
	return &fakeSkip{
		route: &model.RouteQuote{
			SourceChainID:            "dydx-mainnet-1",
			SourceDenom:              "ibc/usdc",
			DestChainID:              "42161",
			DestDenom:                "0xaf88d065e77c8cC2239327C5EDb3A432268e5831",
			AmountIn:                 "10000000",
			AmountOut:                "9500000",
			EstimatedDurationSeconds: 130,
			EstimatedFeeUSD:          decimal.RequireFromString("0.5"),
			RequiredChainAddresses:   []string{"dydx-mainnet-1", "42161"},
			TxsRequired:              1,
		},
		payloads: []model.SignablePayload{cosmosPayload("dydx-mainnet-1")},
	}
}

func cosmosPayload(chainID string) model.SignablePayload {
	return model.SignablePayload{
		Kind:    model.PayloadCosmos,
		ChainID: chainID,
		Cosmos: &model.CosmosTx{
			ChainID:       chainID,
			SignerAddress: testCosmosAddress,
			Msgs:          []model.CosmosMsg{{TypeURL: "/ibc.applications.transfer.v1.MsgTransfer"}},
		},
	}
}

func (f *fakeSkip) GetChains(ctx context.Context) ([]skipgo.Chain, error) {
	return nil, nil
}

func (f *fakeSkip) GetRoute(ctx context.Context, req skipgo.RouteRequest) (*model.RouteQuote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routeCalls++
	if f.routeErr != nil {
		return nil, f.routeErr
	}
	route := *f.route
	route.AmountIn = req.AmountIn
	return &route, nil
}

func (f *fakeSkip) AddressList(ctx context.Context, route *model.RouteQuote, cosmosAddress, evmAddress string) ([]string, error) {
	return []string{cosmosAddress, evmAddress}, nil
}

func (f *fakeSkip) GetSignablePayloads(ctx context.Context, route *model.RouteQuote, addresses []string) ([]model.SignablePayload, error) {
	if f.onPayloads != nil {
		f.onPayloads()
	}
	return f.payloads, f.payloadsErr
}

func (f *fakeSkip) GetStatus(ctx context.Context, txHash, chainID string) (*skipgo.TxStatus, error) {
	return &skipgo.TxStatus{}, nil
}

func (f *fakeSkip) WaitForCompletion(ctx context.Context, txHash, chainID string, cfg poller.Config) (*skipgo.CompletionResult, error) {
	return &skipgo.CompletionResult{}, nil
}

type fakeCosmosSigner struct {
	mu       sync.Mutex
	requests []model.CosmosSignRequest
	result   *model.BroadcastResult
	err      error
	onSign   func()
	release  chan struct{}
}

func (f *fakeCosmosSigner) Address(ctx context.Context) (string, error) {
	return testCosmosAddress, nil
}

func (f *fakeCosmosSigner) SignAndBroadcast(ctx context.Context, req model.CosmosSignRequest) (*model.BroadcastResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.onSign != nil {
		f.onSign()
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &model.BroadcastResult{TxHash: "0xAAA", Height: 100}, nil
}

type fakeEVMSigner struct{}

func (fakeEVMSigner) Address() common.Address {
	return common.HexToAddress(testEVMAddress)
}

func (fakeEVMSigner) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{From: common.HexToAddress(testEVMAddress), Context: ctx}, nil
}

func (fakeEVMSigner) SignTypedData(data apitypes.TypedData) ([]byte, error) {
	return make([]byte, 65), nil
}

// fakeBridge answers GetBalance from balances in order, repeating the last
// value once the list runs out.
type fakeBridge struct {
	mu          sync.Mutex
	balances    []decimal.Decimal
	balanceErr  error
	reads       int
	transfers   []decimal.Decimal
	transferErr error
	credit      *hyperliquid.CreditResult
	creditCalls int
}

func (f *fakeBridge) Address() string {
	return testEVMAddress
}

func (f *fakeBridge) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return decimal.Zero, f.balanceErr
	}
	if len(f.balances) == 0 {
		return decimal.Zero, nil
	}
	i := f.reads
	if i >= len(f.balances) {
		i = len(f.balances) - 1
	}
	f.reads++
	return f.balances[i], nil
}

func (f *fakeBridge) CheckAllowance(ctx context.Context, owner string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeBridge) Approve(ctx context.Context, amount decimal.Decimal) (string, error) {
	return "", nil
}

func (f *fakeBridge) Transfer(ctx context.Context, amount decimal.Decimal) (*model.TransferResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, amount)
	if f.transferErr != nil {
		return nil, f.transferErr
	}
	return &model.TransferResult{TxHash: "0xBBB", BlockNumber: 42}, nil
}

func (f *fakeBridge) SignPermit(ctx context.Context, amount decimal.Decimal, deadline int64) (*hyperliquid.Permit, error) {
	return nil, nil
}

func (f *fakeBridge) DepositWithPermit(ctx context.Context, amount decimal.Decimal, deadline int64) (*model.TransferResult, error) {
	return nil, nil
}

func (f *fakeBridge) EstimateDepositGas(ctx context.Context, amount decimal.Decimal) (*hyperliquid.GasEstimate, error) {
	return &hyperliquid.GasEstimate{GasLimit: 100000}, nil
}

func (f *fakeBridge) GetAccountValue(ctx context.Context, address string) (decimal.Decimal, error) {
	return decimal.RequireFromString("25"), nil
}

func (f *fakeBridge) WaitForCredit(ctx context.Context, address string, expected decimal.Decimal, cfg poller.Config) (*hyperliquid.CreditResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creditCalls++
	if f.credit != nil {
		return f.credit, nil
	}
	return &hyperliquid.CreditResult{Success: true, Balance: expected, Attempts: 1}, nil
}

func (f *fakeBridge) Quote(amount decimal.Decimal) model.HopQuote {
	return model.HopQuote{
		Tool:                     hyperliquid.ToolName,
		EstimatedDurationSeconds: 60,
		EstimatedTime:            hyperliquid.EstimatedTime,
		FeeUSD:                   hyperliquid.DefaultFeeUSD,
		OutputAmount:             amount,
	}
}

func (f *fakeBridge) transferred() []decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]decimal.Decimal(nil), f.transfers...)
}

type fakeDydx struct {
	balance decimal.Decimal
	err     error
}

func (f *fakeDydx) GetBalances(ctx context.Context, address string) ([]dydx.Coin, error) {
	return nil, f.err
}

func (f *fakeDydx) GetUSDCBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	return f.balance, f.err
}
