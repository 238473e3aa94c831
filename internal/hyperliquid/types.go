package hyperliquid

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	ToolName      = "Hyperliquid Bridge"
	EstimatedTime = "~1 min"
)

var DefaultFeeUSD = decimal.NewFromFloat(0.05)

// Permit is an EIP-2612 authorisation for the bridge to pull USDC.
type Permit struct {
	Owner    string   `json:"owner"`
	Spender  string   `json:"spender"`
	Amount   *big.Int `json:"amount"`
	Nonce    *big.Int `json:"nonce"`
	Deadline int64    `json:"deadline"`
	V        uint8    `json:"v"`
	R        [32]byte `json:"r"`
	S        [32]byte `json:"s"`
}

type GasEstimate struct {
	GasLimit         uint64          `json:"gas_limit"`
	GasPriceGwei     decimal.Decimal `json:"gas_price_gwei"`
	EstimatedCostETH decimal.Decimal `json:"estimated_cost_eth"`
}

// CreditResult reports whether the venue balance reached the expected
// amount. Error explains a false Success.
type CreditResult struct {
	Success  bool            `json:"success"`
	Balance  decimal.Decimal `json:"balance"`
	Attempts int             `json:"attempts"`
	Error    string          `json:"error,omitempty"`
}

type clearinghouseStateRequest struct {
	Type string `json:"type"`
	User string `json:"user"`
}

type clearinghouseState struct {
	MarginSummary *struct {
		AccountValue string `json:"accountValue"`
	} `json:"marginSummary"`
}
