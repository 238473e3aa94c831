package orchestrator

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/hyperliquid"
	"github.com/dwarvesf/perp-bridge/internal/model"
)

type IOrchestrator interface {
	// Quote estimates both hops for amount without touching any wallet.
	Quote(ctx context.Context, amount decimal.Decimal, direction model.Direction) (*model.BridgeQuote, error)

	// ValidateAmount checks raw against the configured minimum and, when the
	// wallets are connected, the source balance.
	ValidateAmount(ctx context.Context, raw string, direction model.Direction) Validation

	Balances(ctx context.Context) (*Balances, error)
	EstimateGas(ctx context.Context, amount decimal.Decimal) (*hyperliquid.GasEstimate, error)

	// Start launches a full run in the background and returns its first
	// snapshot. Run does the same work on the caller's goroutine.
	Start(req RunRequest) (RunContext, error)
	Run(ctx context.Context, req RunRequest) (RunContext, error)

	// StartResume and Resume continue a run from its history entry, or send
	// the Arbitrum balance to Hyperliquid when no entry is given.
	StartResume(req ResumeRequest) (RunContext, error)
	Resume(ctx context.Context, req ResumeRequest) (RunContext, error)

	Snapshot() RunContext
	PendingCount() int
	RefreshPending(ctx context.Context) (int, error)

	// Wait blocks until every background run has returned.
	Wait()
}

type RunRequest struct {
	Amount    decimal.Decimal
	Direction model.Direction
}

// ResumeRequest picks up where a run stopped. TxID names the history entry
// to continue; Amount overrides the hop-2 amount, which otherwise is the
// whole Arbitrum balance.
type ResumeRequest struct {
	TxID   string
	Amount *decimal.Decimal
}

// Balances holds one reading per venue. A nil value means the read failed;
// the reason is in Errors under the same key.
type Balances struct {
	Cosmos      string            `json:"cosmos_address"`
	EVM         string            `json:"evm_address"`
	Dydx        *decimal.Decimal  `json:"dydx,omitempty"`
	Arbitrum    *decimal.Decimal  `json:"arbitrum,omitempty"`
	Hyperliquid *decimal.Decimal  `json:"hyperliquid,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
}
