package orchestrator

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/hyperliquid"
	"github.com/dwarvesf/perp-bridge/internal/lifi"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/skipgo"
)

const (
	skipToolName          = "Skip Go (CCTP)"
	skipDefaultEstimate   = "~3-5 min"
	quoteProviderSkip     = "skip"
	quoteProviderLifi     = "lifi"
	quoteCacheName        = "quote"
	balanceKeyDydx        = "dydx"
	balanceKeyArbitrum    = "arbitrum"
	balanceKeyHyperliquid = "hyperliquid"
)

type quoteEntry struct {
	quote *model.BridgeQuote
	route *model.RouteQuote
}

func (o *Orchestrator) Quote(ctx context.Context, amount decimal.Decimal, direction model.Direction) (*model.BridgeQuote, error) {
	if direction == "" {
		direction = model.DirectionDydxToHL
	}
	if direction != model.DirectionDydxToHL {
		return nil, errors.Wrapf(errs.ErrUnsupportedDirection, "%s", direction)
	}
	if !amount.IsPositive() {
		return nil, errors.Wrap(errs.ErrInvalidAmount, "Amount must be greater than 0")
	}

	quote, _, err := o.quote(ctx, amount)
	if err != nil {
		return nil, err
	}
	out := *quote
	return &out, nil
}

// quote returns the combined estimate and the raw route hop 1 will execute.
// Answers are cached per amount for a short while.
func (o *Orchestrator) quote(ctx context.Context, amount decimal.Decimal) (*model.BridgeQuote, *model.RouteQuote, error) {
	key := fmt.Sprintf("%s:%s", model.DirectionDydxToHL, amount.String())
	if cached, ok := o.quotes.Get(key); ok {
		o.recordCache("hit")
		entry := cached.(quoteEntry)
		return entry.quote, entry.route, nil
	}
	o.recordCache("miss")

	started := o.now()
	route, err := o.skip.GetRoute(ctx, skipgo.RouteRequest{
		AmountIn:      model.NewWeb3BigInt(amount, consts.USDC_DECIMALS).Value,
		SourceDenom:   o.appConfig.Dydx.USDCDenom,
		SourceChainID: o.appConfig.Dydx.ChainID,
		DestDenom:     o.appConfig.Hyperliquid.USDCAddress,
		DestChainID:   strconv.FormatInt(o.appConfig.Arbitrum.ChainID, 10),
		GoFast:        o.appConfig.SkipGo.GoFast,
		Bridges:       skipgo.DefaultBridges,
	})
	if err != nil {
		o.recordQuote(quoteProviderSkip, "failure", started)
		o.logger.Error("[quote][GetRoute]", map[string]string{
			"amount": amount.String(),
			"error":  err.Error(),
		})
		return nil, nil, err
	}
	o.recordQuote(quoteProviderSkip, "success", started)

	hop1 := skipHopQuote(amount, route)
	hop2 := o.bridge.Quote(hop1.OutputAmount)
	quote := &model.BridgeQuote{
		Amount:          amount,
		Direction:       model.DirectionDydxToHL,
		Hop1:            hop1,
		Hop2:            hop2,
		Hop2Alternative: o.lifiAlternative(ctx, hop1.OutputAmount),
		TotalFeeUSD:     hop1.FeeUSD.Add(hop2.FeeUSD),
		EstimatedOutput: hop2.OutputAmount,
	}

	o.quotes.Set(key, quoteEntry{quote: quote, route: route}, cache.DefaultExpiration)
	return quote, route, nil
}

func skipHopQuote(amount decimal.Decimal, route *model.RouteQuote) model.HopQuote {
	estimate := skipDefaultEstimate
	if route.EstimatedDurationSeconds > 0 {
		estimate = fmt.Sprintf("~%d min", int(math.Ceil(float64(route.EstimatedDurationSeconds)/60)))
	}
	return model.HopQuote{
		Tool:                     skipToolName,
		EstimatedDurationSeconds: route.EstimatedDurationSeconds,
		EstimatedTime:            estimate,
		FeeUSD:                   route.EstimatedFeeUSD,
		OutputAmount:             amount.Sub(route.EstimatedFeeUSD),
	}
}

// lifiAlternative asks LI.FI for the same Arbitrum to Hyperliquid leg. It is
// informational, so any failure just leaves it out.
func (o *Orchestrator) lifiAlternative(ctx context.Context, amount decimal.Decimal) *model.HopQuote {
	if o.lifi == nil || !o.appConfig.Lifi.Enabled || o.wallets == nil || o.wallets.EVM == nil || !amount.IsPositive() {
		return nil
	}

	started := o.now()
	q, err := o.lifi.GetQuote(ctx, lifi.QuoteRequest{
		FromChain:   strconv.FormatInt(o.appConfig.Arbitrum.ChainID, 10),
		FromToken:   o.appConfig.Hyperliquid.USDCAddress,
		FromAmount:  model.NewWeb3BigInt(amount, consts.USDC_DECIMALS).Value,
		FromAddress: o.wallets.EVM.Address().Hex(),
	})
	if err != nil {
		o.recordQuote(quoteProviderLifi, "failure", started)
		o.logger.Warn("[lifiAlternative][GetQuote]", map[string]string{
			"error": err.Error(),
		})
		return nil
	}
	o.recordQuote(quoteProviderLifi, "success", started)

	hop := lifiHopQuote(q)
	return &hop
}

func lifiHopQuote(q *lifi.Quote) model.HopQuote {
	fee := decimal.Zero
	for _, costs := range [][]lifi.Cost{q.Estimate.FeeCosts, q.Estimate.GasCosts} {
		for _, c := range costs {
			if usd, err := decimal.NewFromString(c.AmountUSD); err == nil {
				fee = fee.Add(usd)
			}
		}
	}

	output := decimal.Zero
	if out, err := decimal.NewFromString(q.Estimate.ToAmount); err == nil {
		output = out.Shift(-consts.USDC_DECIMALS)
	}

	seconds := int(math.Ceil(q.Estimate.ExecutionDuration))
	estimate := hyperliquid.EstimatedTime
	if seconds > 0 {
		estimate = fmt.Sprintf("~%d min", int(math.Ceil(float64(seconds)/60)))
	}

	return model.HopQuote{
		Tool:                     q.Tool,
		EstimatedDurationSeconds: seconds,
		EstimatedTime:            estimate,
		FeeUSD:                   fee,
		OutputAmount:             output,
	}
}

func (o *Orchestrator) ValidateAmount(ctx context.Context, raw string, direction model.Direction) Validation {
	if direction != "" && direction != model.DirectionDydxToHL {
		return Validation{Errors: []string{errs.ErrUnsupportedDirection.Error()}}
	}

	var balance *decimal.Decimal
	if o.wallets != nil && o.wallets.Cosmos != nil {
		if address, err := o.wallets.Cosmos.Address(ctx); err == nil && address != "" {
			balance = o.sourceBalance(ctx, address)
		}
	}
	return ValidateAmount(raw, balance, o.appConfig.Bridge.MinAmount)
}

func (o *Orchestrator) Balances(ctx context.Context) (*Balances, error) {
	addrs, err := o.wallets.Connect(ctx)
	if err != nil {
		return nil, err
	}

	out := &Balances{Cosmos: addrs.Cosmos, EVM: addrs.EVM, Errors: map[string]string{}}

	if balance, err := o.dydx.GetUSDCBalance(ctx, addrs.Cosmos); err != nil {
		out.Errors[balanceKeyDydx] = err.Error()
	} else {
		out.Dydx = &balance
	}
	if balance, err := o.bridge.GetBalance(ctx, addrs.EVM); err != nil {
		out.Errors[balanceKeyArbitrum] = err.Error()
	} else {
		out.Arbitrum = &balance
	}
	if value, err := o.bridge.GetAccountValue(ctx, addrs.EVM); err != nil {
		out.Errors[balanceKeyHyperliquid] = err.Error()
	} else {
		out.Hyperliquid = &value
	}

	if len(out.Errors) == 0 {
		out.Errors = nil
	}
	return out, nil
}

func (o *Orchestrator) EstimateGas(ctx context.Context, amount decimal.Decimal) (*hyperliquid.GasEstimate, error) {
	if !amount.IsPositive() {
		return nil, errors.Wrap(errs.ErrInvalidAmount, "Amount must be greater than 0")
	}
	return o.bridge.EstimateDepositGas(ctx, amount)
}

func (o *Orchestrator) recordQuote(provider, status string, started time.Time) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordQuote(provider, status, o.now().Sub(started).Seconds())
}

func (o *Orchestrator) recordCache(operation string) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordCacheOperation(quoteCacheName, operation)
}
