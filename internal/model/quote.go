package model

import "github.com/shopspring/decimal"

type HopQuote struct {
	Tool                     string          `json:"tool"`
	EstimatedDurationSeconds int             `json:"estimated_duration_seconds"`
	EstimatedTime            string          `json:"estimated_time"`
	FeeUSD                   decimal.Decimal `json:"fee_usd"`
	OutputAmount             decimal.Decimal `json:"output_amount"`
}

// BridgeQuote is the combined estimate for both hops. Hop2Alternative holds
// the LI.FI route for comparison; the direct bridge transfer is what runs.
type BridgeQuote struct {
	Amount          decimal.Decimal `json:"amount"`
	Direction       Direction       `json:"direction"`
	Hop1            HopQuote        `json:"hop1"`
	Hop2            HopQuote        `json:"hop2"`
	Hop2Alternative *HopQuote       `json:"hop2_alternative,omitempty"`
	TotalFeeUSD     decimal.Decimal `json:"total_fee_usd"`
	EstimatedOutput decimal.Decimal `json:"estimated_output"`
}

// TransferResult identifies an included EVM transaction.
type TransferResult struct {
	TxHash      string `json:"tx_hash"`
	BlockNumber uint64 `json:"block_number"`
}
