package skipgo

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/model"
)

// object gives access to a JSON object whose keys may be spelled in
// snake_case or camelCase. Only this file looks at raw field names.
type object map[string]json.RawMessage

func parseObject(raw []byte) (object, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	o := object{}
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, false
	}
	return o, true
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func (o object) raw(keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := o[k]; ok && !isNull(v) {
			return v
		}
	}
	return nil
}

func (o object) has(keys ...string) bool {
	return o.raw(keys...) != nil
}

func (o object) str(keys ...string) string {
	v := o.raw(keys...)
	if v == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}

func (o object) int(keys ...string) int {
	s := o.str(keys...)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func (o object) obj(keys ...string) object {
	v := o.raw(keys...)
	if v == nil {
		return nil
	}
	nested, ok := parseObject(v)
	if !ok {
		return nil
	}
	return nested
}

func (o object) list(keys ...string) []json.RawMessage {
	v := o.raw(keys...)
	if v == nil {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil
	}
	return items
}

func (o object) strings(keys ...string) []string {
	var out []string
	for _, item := range o.list(keys...) {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var n json.Number
		if err := json.Unmarshal(item, &n); err == nil {
			out = append(out, n.String())
		}
	}
	return out
}

// normalizeRoute validates and converts a /fungible/route answer.
func normalizeRoute(raw []byte) (*model.RouteQuote, error) {
	o, ok := parseObject(raw)
	if !ok {
		return nil, errs.Newf(errs.ErrInvalidRoute, "Invalid route response from Skip API")
	}

	operations := o.raw("operations")
	if o.str("source_asset_chain_id", "sourceAssetChainID", "sourceAssetChainId") == "" ||
		o.str("dest_asset_chain_id", "destAssetChainID", "destAssetChainId") == "" ||
		operations == nil {
		return nil, errs.Newf(errs.ErrInvalidRoute, "Invalid route response from Skip API")
	}

	var ops []json.RawMessage
	if err := json.Unmarshal(operations, &ops); err != nil {
		return nil, errs.Newf(errs.ErrInvalidRoute, "Invalid route response from Skip API: operations is not a list")
	}

	quote := &model.RouteQuote{
		SourceChainID:            o.str("source_asset_chain_id", "sourceAssetChainID", "sourceAssetChainId"),
		SourceDenom:              o.str("source_asset_denom", "sourceAssetDenom"),
		DestChainID:              o.str("dest_asset_chain_id", "destAssetChainID", "destAssetChainId"),
		DestDenom:                o.str("dest_asset_denom", "destAssetDenom"),
		AmountIn:                 o.str("amount_in", "amountIn"),
		AmountOut:                o.str("amount_out", "amountOut"),
		EstimatedDurationSeconds: o.int("estimated_route_duration_seconds", "estimatedRouteDurationSeconds"),
		Operations:               ops,
		RequiredChainAddresses:   o.strings("required_chain_addresses", "requiredChainAddresses"),
		TxsRequired:              o.int("txs_required", "txsRequired"),
		Tool:                     "Skip Go",
	}

	quote.EstimatedFeeUSD = decimal.NewFromFloat(0.5)
	if fees := o.list("estimated_fees", "estimatedFees"); len(fees) > 0 {
		if fee, ok := parseObject(fees[0]); ok {
			if usd, err := decimal.NewFromString(fee.str("usd_amount", "usdAmount")); err == nil {
				quote.EstimatedFeeUSD = usd
			}
		}
	}

	return quote, nil
}

// normalizeMsgs converts a /fungible/msgs answer into ordered payloads.
func normalizeMsgs(raw []byte) ([]model.SignablePayload, error) {
	o, ok := parseObject(raw)
	if !ok {
		return nil, errs.Newf(errs.ErrInvalidPayload, "Invalid msgs response from Skip API")
	}

	txs := o.list("txs")
	if len(txs) == 0 {
		if msg := o.str("message", "error"); msg != "" {
			return nil, errs.Newf(errs.ErrInvalidPayload, "%s", msg)
		}
		return nil, errs.Newf(errs.ErrInvalidPayload, "No transactions returned from Skip API")
	}

	payloads := make([]model.SignablePayload, 0, len(txs))
	for i, rawTx := range txs {
		tx, ok := parseObject(rawTx)
		if !ok {
			return nil, errs.Newf(errs.ErrInvalidPayload, "transaction %d is not an object", i)
		}

		switch {
		case tx.has("cosmos_tx", "cosmosTx"):
			cosmos, err := normalizeCosmosTx(tx.obj("cosmos_tx", "cosmosTx"), tx.str("chain_id", "chainID", "chainId"))
			if err != nil {
				return nil, err
			}
			payloads = append(payloads, model.SignablePayload{Kind: model.PayloadCosmos, ChainID: cosmos.ChainID, Cosmos: cosmos})

		case tx.has("evm_tx", "evmTx"):
			e := tx.obj("evm_tx", "evmTx")
			evm := &model.EVMTx{
				ChainID:       e.str("chain_id", "chainID", "chainId"),
				To:            e.str("to"),
				Value:         e.str("value"),
				Data:          e.str("data"),
				SignerAddress: e.str("signer_address", "signerAddress"),
			}
			payloads = append(payloads, model.SignablePayload{Kind: model.PayloadEVM, ChainID: evm.ChainID, EVM: evm})

		case tx.has("svm_tx", "svmTx"):
			s := tx.obj("svm_tx", "svmTx")
			payloads = append(payloads, model.SignablePayload{Kind: model.PayloadSVM, ChainID: s.str("chain_id", "chainID", "chainId")})

		default:
			return nil, errs.Newf(errs.ErrInvalidPayload, "transaction %d has no known payload", i)
		}
	}

	return payloads, nil
}

func normalizeCosmosTx(c object, outerChainID string) (*model.CosmosTx, error) {
	if c == nil {
		return nil, errs.Newf(errs.ErrInvalidPayload, "cosmos_tx is not an object")
	}

	chainID := c.str("chain_id", "chainID", "chainId")
	if chainID == "" {
		chainID = outerChainID
	}

	rawMsgs := c.list("msgs")
	if len(rawMsgs) == 0 {
		return nil, errs.Newf(errs.ErrInvalidPayload, "No messages in transaction")
	}

	msgs := make([]model.CosmosMsg, 0, len(rawMsgs))
	for _, rawMsg := range rawMsgs {
		msg, err := normalizeCosmosMsg(rawMsg)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}

	return &model.CosmosTx{
		ChainID:       chainID,
		SignerAddress: c.str("signer_address", "signerAddress"),
		Msgs:          msgs,
	}, nil
}

// normalizeCosmosMsg resolves the message body, which may sit under "msg" or
// "value" (possibly as a JSON-encoded string) or be the entry itself.
func normalizeCosmosMsg(raw json.RawMessage) (model.CosmosMsg, error) {
	entry, ok := parseObject(raw)
	if !ok {
		return model.CosmosMsg{}, errs.Newf(errs.ErrInvalidPayload, "cosmos message is not an object")
	}

	typeURL := entry.str("msg_type_url", "typeUrl", "type_url")

	body := entry.raw("msg", "value")
	if body == nil {
		body = raw
	}
	var encoded string
	if err := json.Unmarshal(body, &encoded); err == nil {
		body = json.RawMessage(encoded)
	}

	value, ok := parseObject(body)
	if !ok {
		return model.CosmosMsg{}, errs.Newf(errs.ErrInvalidPayload, "cosmos message %s has no object body", typeURL)
	}

	if typeURL != consts.COSMOS_MSG_TRANSFER {
		return model.CosmosMsg{TypeURL: typeURL, Value: json.RawMessage(body)}, nil
	}

	transfer, err := normalizeTransfer(value)
	if err != nil {
		return model.CosmosMsg{}, err
	}
	canonical, err := json.Marshal(transfer)
	if err != nil {
		return model.CosmosMsg{}, errors.Wrap(err, "failed to encode transfer")
	}

	return model.CosmosMsg{TypeURL: typeURL, Value: canonical, Transfer: transfer}, nil
}

func normalizeTransfer(v object) (*model.IBCTransfer, error) {
	token := v.obj("token")
	if token == nil {
		if inner := v.obj("value"); inner != nil {
			token = inner.obj("token")
		}
	}
	if token == nil {
		return nil, errs.Newf(errs.ErrInvalidPayload, "No token found in IBC transfer message")
	}

	height := v.obj("timeout_height", "timeoutHeight")
	if height == nil {
		height = object{}
	}

	return &model.IBCTransfer{
		SourcePort:    defaultString(v.str("source_port", "sourcePort"), "transfer"),
		SourceChannel: v.str("source_channel", "sourceChannel"),
		Token: model.Coin{
			Denom:  token.str("denom"),
			Amount: token.str("amount"),
		},
		Sender:   v.str("sender"),
		Receiver: v.str("receiver"),
		TimeoutHeight: model.Height{
			RevisionNumber: defaultString(height.str("revision_number", "revisionNumber"), "0"),
			RevisionHeight: defaultString(height.str("revision_height", "revisionHeight"), "0"),
		},
		TimeoutTimestamp: defaultString(v.str("timeout_timestamp", "timeoutTimestamp"), "0"),
		Memo:             v.str("memo"),
	}, nil
}

func normalizeStatus(raw []byte) (*TxStatus, error) {
	o, ok := parseObject(raw)
	if !ok {
		return nil, errors.New("invalid status response from Skip API")
	}

	status := &TxStatus{
		State: o.str("state"),
		Raw:   json.RawMessage(raw),
	}
	if e := o.str("error"); e != "" {
		status.Error = e
	} else if eo := o.obj("error"); eo != nil {
		status.Error = eo.str("message")
	}
	return status, nil
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
