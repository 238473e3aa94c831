package skipgo

import "encoding/json"

const (
	StateCompletedSuccess = "STATE_COMPLETED_SUCCESS"
	StateCompletedError   = "STATE_COMPLETED_ERROR"
	StateAbandoned        = "STATE_ABANDONED"
)

var DefaultBridges = []string{"CCTP", "IBC", "AXELAR"}

type Chain struct {
	ChainID      string `json:"chain_id"`
	ChainName    string `json:"chain_name"`
	ChainType    string `json:"chain_type"`
	Bech32Prefix string `json:"bech32_prefix"`
}

type chainsResponse struct {
	Chains []Chain `json:"chains"`
}

// RouteRequest asks for a route moving AmountIn base units of SourceDenom.
type RouteRequest struct {
	AmountIn      string
	SourceDenom   string
	SourceChainID string
	DestDenom     string
	DestChainID   string
	GoFast        bool
	Bridges       []string
}

type routeRequestBody struct {
	SourceAssetDenom          string           `json:"source_asset_denom"`
	SourceAssetChainID        string           `json:"source_asset_chain_id"`
	DestAssetDenom            string           `json:"dest_asset_denom"`
	DestAssetChainID          string           `json:"dest_asset_chain_id"`
	AmountIn                  string           `json:"amount_in"`
	CumulativeAffiliateFeeBps string           `json:"cumulative_affiliate_fee_bps"`
	AllowUnsafe               bool             `json:"allow_unsafe"`
	SmartRelay                bool             `json:"smart_relay"`
	GoFast                    bool             `json:"go_fast"`
	Bridges                   []string         `json:"bridges"`
	SmartSwapOptions          smartSwapOptions `json:"smart_swap_options"`
}

type smartSwapOptions struct {
	SplitRoutes bool `json:"split_routes"`
	EVMSwaps    bool `json:"evm_swaps"`
}

type msgsRequestBody struct {
	SourceAssetDenom         string            `json:"source_asset_denom"`
	SourceAssetChainID       string            `json:"source_asset_chain_id"`
	DestAssetDenom           string            `json:"dest_asset_denom"`
	DestAssetChainID         string            `json:"dest_asset_chain_id"`
	AmountIn                 string            `json:"amount_in"`
	AmountOut                string            `json:"amount_out"`
	AddressList              []string          `json:"address_list"`
	Operations               []json.RawMessage `json:"operations"`
	SlippageTolerancePercent string            `json:"slippage_tolerance_percent"`
}

type statusRequestBody struct {
	TxHash  string `json:"tx_hash"`
	ChainID string `json:"chain_id"`
}

// TxStatus is the lifecycle state of a routed transfer.
type TxStatus struct {
	State string          `json:"state"`
	Error string          `json:"error,omitempty"`
	Raw   json.RawMessage `json:"raw,omitempty"`
}

func (s TxStatus) IsSuccess() bool {
	return s.State == StateCompletedSuccess
}

func (s TxStatus) IsFailure() bool {
	return s.State == StateCompletedError || s.State == StateAbandoned
}

type CompletionResult struct {
	Success  bool      `json:"success"`
	Status   *TxStatus `json:"status"`
	Error    string    `json:"error,omitempty"`
	Attempts int       `json:"attempts"`
}
