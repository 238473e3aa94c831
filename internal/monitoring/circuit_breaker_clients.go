package monitoring

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/dwarvesf/perp-bridge/contracts/hlbridge"
	"github.com/dwarvesf/perp-bridge/internal/arbrpc"
	"github.com/dwarvesf/perp-bridge/internal/dydx"
	"github.com/dwarvesf/perp-bridge/internal/hyperliquid"
	"github.com/dwarvesf/perp-bridge/internal/lifi"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/poller"
	"github.com/dwarvesf/perp-bridge/internal/skipgo"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

// StateReporter is implemented by every circuit breaker wrapper.
type StateReporter interface {
	Name() string
	State() gobreaker.State
}

func breakerFor(name string, config CircuitBreakerConfig, timeoutConfig TimeoutConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *breaker {
	if err := validateCircuitBreakerConfig(config); err != nil {
		logger.Warn("Invalid circuit breaker config, using defaults", map[string]string{
			"service": name,
			"error":   err.Error(),
		})
		config = CircuitBreakerConfigs[name]
	}
	return newBreaker(name, config, timeoutConfig, metrics, logger)
}

func (b *breaker) Name() string {
	return b.name
}

// CircuitBreakerSkipGo wraps skipgo.IClient with circuit breaker functionality
type CircuitBreakerSkipGo struct {
	*breaker
	wrapped skipgo.IClient
}

func NewCircuitBreakerSkipGo(wrapped skipgo.IClient, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerSkipGo {
	return &CircuitBreakerSkipGo{
		breaker: breakerFor(SkipAPI, config, DefaultTimeoutConfig, metrics, logger),
		wrapped: wrapped,
	}
}

func (cb *CircuitBreakerSkipGo) GetChains(ctx context.Context) ([]skipgo.Chain, error) {
	return execute(cb.breaker, ctx, "chains", cb.wrapped.GetChains)
}

func (cb *CircuitBreakerSkipGo) GetRoute(ctx context.Context, req skipgo.RouteRequest) (*model.RouteQuote, error) {
	return execute(cb.breaker, ctx, "route", func(ctx context.Context) (*model.RouteQuote, error) {
		return cb.wrapped.GetRoute(ctx, req)
	})
}

func (cb *CircuitBreakerSkipGo) AddressList(ctx context.Context, route *model.RouteQuote, cosmosAddress, evmAddress string) ([]string, error) {
	return execute(cb.breaker, ctx, "address_list", func(ctx context.Context) ([]string, error) {
		return cb.wrapped.AddressList(ctx, route, cosmosAddress, evmAddress)
	})
}

func (cb *CircuitBreakerSkipGo) GetSignablePayloads(ctx context.Context, route *model.RouteQuote, addresses []string) ([]model.SignablePayload, error) {
	return execute(cb.breaker, ctx, "msgs", func(ctx context.Context) ([]model.SignablePayload, error) {
		return cb.wrapped.GetSignablePayloads(ctx, route, addresses)
	})
}

func (cb *CircuitBreakerSkipGo) GetStatus(ctx context.Context, txHash, chainID string) (*skipgo.TxStatus, error) {
	return execute(cb.breaker, ctx, "status", func(ctx context.Context) (*skipgo.TxStatus, error) {
		return cb.wrapped.GetStatus(ctx, txHash, chainID)
	})
}

// WaitForCompletion is a long poll with its own error budget; it bypasses the breaker.
func (cb *CircuitBreakerSkipGo) WaitForCompletion(ctx context.Context, txHash, chainID string, cfg poller.Config) (*skipgo.CompletionResult, error) {
	return cb.wrapped.WaitForCompletion(ctx, txHash, chainID, cfg)
}

// CircuitBreakerLifi wraps lifi.IClient with circuit breaker functionality
type CircuitBreakerLifi struct {
	*breaker
	wrapped lifi.IClient
}

func NewCircuitBreakerLifi(wrapped lifi.IClient, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerLifi {
	return &CircuitBreakerLifi{
		breaker: breakerFor(LifiAPI, config, DefaultTimeoutConfig, metrics, logger),
		wrapped: wrapped,
	}
}

func (cb *CircuitBreakerLifi) GetQuote(ctx context.Context, req lifi.QuoteRequest) (*lifi.Quote, error) {
	return execute(cb.breaker, ctx, "quote", func(ctx context.Context) (*lifi.Quote, error) {
		return cb.wrapped.GetQuote(ctx, req)
	})
}

func (cb *CircuitBreakerLifi) GetRoutes(ctx context.Context, req lifi.RoutesRequest) ([]lifi.Route, error) {
	return execute(cb.breaker, ctx, "routes", func(ctx context.Context) ([]lifi.Route, error) {
		return cb.wrapped.GetRoutes(ctx, req)
	})
}

func (cb *CircuitBreakerLifi) GetStatus(ctx context.Context, req lifi.StatusRequest) (*lifi.Status, error) {
	return execute(cb.breaker, ctx, "status", func(ctx context.Context) (*lifi.Status, error) {
		return cb.wrapped.GetStatus(ctx, req)
	})
}

func (cb *CircuitBreakerLifi) WaitForCompletion(ctx context.Context, req lifi.StatusRequest, cfg poller.Config) (*lifi.CompletionResult, error) {
	return cb.wrapped.WaitForCompletion(ctx, req, cfg)
}

func (cb *CircuitBreakerLifi) GetChains(ctx context.Context) ([]lifi.Chain, error) {
	return execute(cb.breaker, ctx, "chains", cb.wrapped.GetChains)
}

func (cb *CircuitBreakerLifi) GetTokens(ctx context.Context, chainIDs ...string) (map[string][]lifi.Token, error) {
	return execute(cb.breaker, ctx, "tokens", func(ctx context.Context) (map[string][]lifi.Token, error) {
		return cb.wrapped.GetTokens(ctx, chainIDs...)
	})
}

// CircuitBreakerArbRPC wraps the Arbitrum node reads. Writes and receipt
// waits go straight to the node.
type CircuitBreakerArbRPC struct {
	*breaker
	wrapped arbrpc.IArbRPC
}

func NewCircuitBreakerArbRPC(wrapped arbrpc.IArbRPC, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerArbRPC {
	return &CircuitBreakerArbRPC{
		breaker: breakerFor(ArbitrumRPC, config, DefaultTimeoutConfig, metrics, logger),
		wrapped: wrapped,
	}
}

func (cb *CircuitBreakerArbRPC) ChainID() *big.Int {
	return cb.wrapped.ChainID()
}

func (cb *CircuitBreakerArbRPC) USDCAddress() common.Address {
	return cb.wrapped.USDCAddress()
}

func (cb *CircuitBreakerArbRPC) BridgeAddress() common.Address {
	return cb.wrapped.BridgeAddress()
}

func (cb *CircuitBreakerArbRPC) BlockNumber(ctx context.Context) (uint64, error) {
	return execute(cb.breaker, ctx, "block_number", cb.wrapped.BlockNumber)
}

func (cb *CircuitBreakerArbRPC) USDCBalanceOf(ctx context.Context, address string) (*model.Web3BigInt, error) {
	return execute(cb.breaker, ctx, "usdc_balance_of", func(ctx context.Context) (*model.Web3BigInt, error) {
		return cb.wrapped.USDCBalanceOf(ctx, address)
	})
}

func (cb *CircuitBreakerArbRPC) USDCAllowance(ctx context.Context, owner, spender string) (*model.Web3BigInt, error) {
	return execute(cb.breaker, ctx, "usdc_allowance", func(ctx context.Context) (*model.Web3BigInt, error) {
		return cb.wrapped.USDCAllowance(ctx, owner, spender)
	})
}

func (cb *CircuitBreakerArbRPC) PermitNonce(ctx context.Context, owner string) (*big.Int, error) {
	return execute(cb.breaker, ctx, "permit_nonce", func(ctx context.Context) (*big.Int, error) {
		return cb.wrapped.PermitNonce(ctx, owner)
	})
}

func (cb *CircuitBreakerArbRPC) ApproveUSDC(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	return cb.wrapped.ApproveUSDC(opts, spender, amount)
}

func (cb *CircuitBreakerArbRPC) TransferUSDC(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*types.Transaction, error) {
	return cb.wrapped.TransferUSDC(opts, to, amount)
}

func (cb *CircuitBreakerArbRPC) BatchedDepositWithPermit(opts *bind.TransactOpts, deposits []hlbridge.DepositWithPermit) (*types.Transaction, error) {
	return cb.wrapped.BatchedDepositWithPermit(opts, deposits)
}

func (cb *CircuitBreakerArbRPC) EstimateTransferGas(ctx context.Context, from, to common.Address, amount *big.Int) (uint64, error) {
	return execute(cb.breaker, ctx, "estimate_gas", func(ctx context.Context) (uint64, error) {
		return cb.wrapped.EstimateTransferGas(ctx, from, to, amount)
	})
}

func (cb *CircuitBreakerArbRPC) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return execute(cb.breaker, ctx, "gas_price", cb.wrapped.SuggestGasPrice)
}

func (cb *CircuitBreakerArbRPC) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return cb.wrapped.WaitMined(ctx, tx)
}

func (cb *CircuitBreakerArbRPC) TransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error) {
	return execute(cb.breaker, ctx, "transaction_receipt", func(ctx context.Context) (*types.Receipt, error) {
		return cb.wrapped.TransactionReceipt(ctx, hash)
	})
}

// CircuitBreakerDydx wraps dydx.IClient with circuit breaker functionality
type CircuitBreakerDydx struct {
	*breaker
	wrapped dydx.IClient
}

func NewCircuitBreakerDydx(wrapped dydx.IClient, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerDydx {
	return &CircuitBreakerDydx{
		breaker: breakerFor(DydxLCD, config, DefaultTimeoutConfig, metrics, logger),
		wrapped: wrapped,
	}
}

func (cb *CircuitBreakerDydx) GetBalances(ctx context.Context, address string) ([]dydx.Coin, error) {
	return execute(cb.breaker, ctx, "balances", func(ctx context.Context) ([]dydx.Coin, error) {
		return cb.wrapped.GetBalances(ctx, address)
	})
}

func (cb *CircuitBreakerDydx) GetUSDCBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	return execute(cb.breaker, ctx, "usdc_balance", func(ctx context.Context) (decimal.Decimal, error) {
		return cb.wrapped.GetUSDCBalance(ctx, address)
	})
}

// CircuitBreakerHyperliquid guards the Hyperliquid info API. Contract calls
// are already covered by the Arbitrum RPC breaker.
type CircuitBreakerHyperliquid struct {
	*breaker
	hyperliquid.IClient
}

func NewCircuitBreakerHyperliquid(wrapped hyperliquid.IClient, config CircuitBreakerConfig, metrics *ExternalAPIMetrics, logger *logger.Logger) *CircuitBreakerHyperliquid {
	return &CircuitBreakerHyperliquid{
		breaker: breakerFor(HyperliquidInfo, config, DefaultTimeoutConfig, metrics, logger),
		IClient: wrapped,
	}
}

func (cb *CircuitBreakerHyperliquid) GetAccountValue(ctx context.Context, address string) (decimal.Decimal, error) {
	return execute(cb.breaker, ctx, "clearinghouse_state", func(ctx context.Context) (decimal.Decimal, error) {
		return cb.IClient.GetAccountValue(ctx, address)
	})
}
