package orchestrator

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/lifi"
	"github.com/dwarvesf/perp-bridge/internal/model"
)

func TestQuote_CombinesHops(t *testing.T) {
	env := newTestEnv(t)

	quote, err := env.o.Quote(context.Background(), decimal.NewFromInt(10), model.DirectionDydxToHL)
	require.NoError(t, err)

	assert.Equal(t, "Skip Go (CCTP)", quote.Hop1.Tool)
	assert.Equal(t, "~3 min", quote.Hop1.EstimatedTime)
	assert.True(t, quote.Hop1.FeeUSD.Equal(decimal.RequireFromString("0.5")))
	assert.True(t, quote.Hop1.OutputAmount.Equal(decimal.RequireFromString("9.5")))

	assert.Equal(t, "Hyperliquid Bridge", quote.Hop2.Tool)
	assert.Equal(t, "~1 min", quote.Hop2.EstimatedTime)
	assert.True(t, quote.Hop2.OutputAmount.Equal(decimal.RequireFromString("9.5")))

	assert.True(t, quote.TotalFeeUSD.Equal(decimal.RequireFromString("0.55")))
	assert.True(t, quote.EstimatedOutput.Equal(decimal.RequireFromString("9.5")))
	assert.Nil(t, quote.Hop2Alternative)
}

func TestQuote_DefaultEstimateWithoutDuration(t *testing.T) {
	env := newTestEnv(t)
	env.skip.route.EstimatedDurationSeconds = 0

	quote, err := env.o.Quote(context.Background(), decimal.NewFromInt(10), "")
	require.NoError(t, err)
	assert.Equal(t, "~3-5 min", quote.Hop1.EstimatedTime)
}

func TestQuote_IsCachedPerAmount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.o.Quote(ctx, decimal.NewFromInt(10), model.DirectionDydxToHL)
	require.NoError(t, err)
	_, err = env.o.Quote(ctx, decimal.NewFromInt(10), model.DirectionDydxToHL)
	require.NoError(t, err)
	assert.Equal(t, 1, env.skip.routeCalls)

	_, err = env.o.Quote(ctx, decimal.NewFromInt(11), model.DirectionDydxToHL)
	require.NoError(t, err)
	assert.Equal(t, 2, env.skip.routeCalls)
}

func TestQuote_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.o.Quote(ctx, decimal.NewFromInt(10), model.DirectionHLToDydx)
	assert.True(t, errors.Is(err, errs.ErrUnsupportedDirection))

	_, err = env.o.Quote(ctx, decimal.Zero, model.DirectionDydxToHL)
	assert.True(t, errors.Is(err, errs.ErrInvalidAmount))

	env.skip.routeErr = errs.ErrInvalidRoute
	_, err = env.o.Quote(ctx, decimal.NewFromInt(10), model.DirectionDydxToHL)
	assert.True(t, errors.Is(err, errs.ErrInvalidRoute))
}

func TestLifiHopQuote(t *testing.T) {
	hop := lifiHopQuote(&lifi.Quote{
		Tool: "hyperliquid",
		Estimate: lifi.Estimate{
			ToAmount:          "9400000",
			ExecutionDuration: 95,
			FeeCosts:          []lifi.Cost{{AmountUSD: "0.10"}},
			GasCosts:          []lifi.Cost{{AmountUSD: "0.05"}, {AmountUSD: "n/a"}},
		},
	})

	assert.Equal(t, "hyperliquid", hop.Tool)
	assert.Equal(t, 95, hop.EstimatedDurationSeconds)
	assert.Equal(t, "~2 min", hop.EstimatedTime)
	assert.True(t, hop.FeeUSD.Equal(decimal.RequireFromString("0.15")))
	assert.True(t, hop.OutputAmount.Equal(decimal.RequireFromString("9.4")))
}

func TestBalances(t *testing.T) {
	env := newTestEnv(t)
	env.bridge.balances = []decimal.Decimal{decimal.NewFromInt(7)}

	balances, err := env.o.Balances(context.Background())
	require.NoError(t, err)

	assert.Equal(t, testCosmosAddress, balances.Cosmos)
	require.NotNil(t, balances.Dydx)
	assert.True(t, balances.Dydx.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, balances.Arbitrum)
	assert.True(t, balances.Arbitrum.Equal(decimal.NewFromInt(7)))
	require.NotNil(t, balances.Hyperliquid)
	assert.Nil(t, balances.Errors)

	env.dydx.err = errors.New("lcd down")
	balances, err = env.o.Balances(context.Background())
	require.NoError(t, err)
	assert.Nil(t, balances.Dydx)
	assert.Equal(t, "lcd down", balances.Errors["dydx"])
}
