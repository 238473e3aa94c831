package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RouteQuote is a routing-service answer normalised to one shape.
// Amounts are base-unit integer strings. Operations are passed back to the
// service untouched.
type RouteQuote struct {
	SourceChainID            string            `json:"source_chain_id"`
	SourceDenom              string            `json:"source_denom"`
	DestChainID              string            `json:"dest_chain_id"`
	DestDenom                string            `json:"dest_denom"`
	AmountIn                 string            `json:"amount_in"`
	AmountOut                string            `json:"amount_out"`
	EstimatedDurationSeconds int               `json:"estimated_duration_seconds"`
	EstimatedFeeUSD          decimal.Decimal   `json:"estimated_fee_usd"`
	Operations               []json.RawMessage `json:"operations"`
	RequiredChainAddresses   []string          `json:"required_chain_addresses"`
	TxsRequired              int               `json:"txs_required"`
	Tool                     string            `json:"tool,omitempty"`
}

type PayloadKind string

const (
	PayloadCosmos PayloadKind = "cosmos"
	PayloadEVM    PayloadKind = "evm"
	PayloadSVM    PayloadKind = "svm"
)

// SignablePayload is one transaction the wallet must sign, in route order.
type SignablePayload struct {
	Kind    PayloadKind `json:"kind"`
	ChainID string      `json:"chain_id"`
	Cosmos  *CosmosTx   `json:"cosmos,omitempty"`
	EVM     *EVMTx      `json:"evm,omitempty"`
}

type EVMTx struct {
	ChainID       string `json:"chain_id"`
	To            string `json:"to"`
	Value         string `json:"value"`
	Data          string `json:"data"`
	SignerAddress string `json:"signer_address"`
}
