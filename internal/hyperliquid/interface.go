package hyperliquid

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/poller"
)

type IClient interface {
	Address() string

	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
	CheckAllowance(ctx context.Context, owner string) (decimal.Decimal, error)
	Approve(ctx context.Context, amount decimal.Decimal) (string, error)
	Transfer(ctx context.Context, amount decimal.Decimal) (*model.TransferResult, error)
	SignPermit(ctx context.Context, amount decimal.Decimal, deadline int64) (*Permit, error)
	DepositWithPermit(ctx context.Context, amount decimal.Decimal, deadline int64) (*model.TransferResult, error)
	EstimateDepositGas(ctx context.Context, amount decimal.Decimal) (*GasEstimate, error)

	GetAccountValue(ctx context.Context, address string) (decimal.Decimal, error)
	WaitForCredit(ctx context.Context, address string, expected decimal.Decimal, cfg poller.Config) (*CreditResult, error)

	Quote(amount decimal.Decimal) model.HopQuote
}
