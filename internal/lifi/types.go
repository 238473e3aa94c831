package lifi

import "encoding/json"

const (
	ToolHyperliquid = "hyperliquid"

	StatusDone    = "DONE"
	StatusFailed  = "FAILED"
	StatusPending = "PENDING"

	OrderFastest     = "FASTEST"
	OrderRecommended = "RECOMMENDED"

	DefaultSlippage       = 0.005
	DefaultMaxPriceImpact = 0.4
)

type QuoteRequest struct {
	FromChain   string
	ToChain     string
	FromToken   string
	ToToken     string
	FromAmount  string
	FromAddress string
	Order       string
	Slippage    float64
}

type Quote struct {
	ID                 string     `json:"id"`
	Tool               string     `json:"tool"`
	Estimate           Estimate   `json:"estimate"`
	TransactionRequest *TxRequest `json:"transactionRequest,omitempty"`
}

type Estimate struct {
	FromAmount        string  `json:"fromAmount"`
	ToAmount          string  `json:"toAmount"`
	ToAmountMin       string  `json:"toAmountMin"`
	ExecutionDuration float64 `json:"executionDuration"`
	FeeCosts          []Cost  `json:"feeCosts"`
	GasCosts          []Cost  `json:"gasCosts"`
}

type Cost struct {
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	AmountUSD string `json:"amountUSD"`
}

type TxRequest struct {
	To       string `json:"to"`
	From     string `json:"from"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	GasLimit string `json:"gasLimit"`
	GasPrice string `json:"gasPrice"`
	ChainID  int64  `json:"chainId"`
}

type RoutesRequest struct {
	FromChainID      int64
	FromAmount       string
	FromTokenAddress string
	FromAddress      string
	ToChainID        string
	ToTokenAddress   string
	Order            string
	Slippage         float64
	MaxPriceImpact   float64
}

type routesRequestBody struct {
	FromChainID      int64         `json:"fromChainId"`
	FromAmount       string        `json:"fromAmount"`
	FromTokenAddress string        `json:"fromTokenAddress"`
	FromAddress      string        `json:"fromAddress,omitempty"`
	ToChainID        string        `json:"toChainId"`
	ToTokenAddress   string        `json:"toTokenAddress"`
	Options          routesOptions `json:"options"`
}

type routesOptions struct {
	Order          string  `json:"order"`
	Slippage       float64 `json:"slippage"`
	MaxPriceImpact float64 `json:"maxPriceImpact"`
}

type Route struct {
	ID          string            `json:"id"`
	FromAmount  string            `json:"fromAmount"`
	ToAmount    string            `json:"toAmount"`
	ToAmountMin string            `json:"toAmountMin"`
	GasCostUSD  string            `json:"gasCostUSD"`
	Steps       []json.RawMessage `json:"steps"`
}

type routesResponse struct {
	Routes []Route `json:"routes"`
}

type StatusRequest struct {
	TxHash    string
	Bridge    string
	FromChain string
	ToChain   string
}

type Status struct {
	Status    string `json:"status"`
	Substatus string `json:"substatus"`
	Message   string `json:"substatusMessage"`
	TxLink    string `json:"lifiExplorerLink"`
}

func (s Status) IsSuccess() bool {
	return s.Status == StatusDone
}

func (s Status) IsFailure() bool {
	return s.Status == StatusFailed
}

type CompletionResult struct {
	Success  bool    `json:"success"`
	Status   *Status `json:"status"`
	Error    string  `json:"error,omitempty"`
	Attempts int     `json:"attempts"`
}

type Chain struct {
	ID        json.Number `json:"id"`
	Key       string      `json:"key"`
	Name      string      `json:"name"`
	ChainType string      `json:"chainType"`
}

type chainsResponse struct {
	Chains []Chain `json:"chains"`
}

type Token struct {
	Address  string      `json:"address"`
	ChainID  json.Number `json:"chainId"`
	Symbol   string      `json:"symbol"`
	Decimals int         `json:"decimals"`
	Name     string      `json:"name"`
	PriceUSD string      `json:"priceUSD"`
}

type tokensResponse struct {
	Tokens map[string][]Token `json:"tokens"`
}
