package model

import "encoding/json"

type CosmosTx struct {
	ChainID       string      `json:"chain_id"`
	SignerAddress string      `json:"signer_address"`
	Msgs          []CosmosMsg `json:"msgs"`
}

// CosmosMsg is a single message of a cosmos transaction. Transfer is set
// when the message is an IBC MsgTransfer.
type CosmosMsg struct {
	TypeURL  string          `json:"type_url"`
	Value    json.RawMessage `json:"value"`
	Transfer *IBCTransfer    `json:"-"`
}

type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type Height struct {
	RevisionNumber string `json:"revision_number"`
	RevisionHeight string `json:"revision_height"`
}

type IBCTransfer struct {
	SourcePort       string `json:"source_port"`
	SourceChannel    string `json:"source_channel"`
	Token            Coin   `json:"token"`
	Sender           string `json:"sender"`
	Receiver         string `json:"receiver"`
	TimeoutHeight    Height `json:"timeout_height"`
	TimeoutTimestamp string `json:"timeout_timestamp"`
	Memo             string `json:"memo"`
}

type CosmosFee struct {
	Amount []Coin `json:"amount"`
	Gas    string `json:"gas"`
}

// CosmosSignRequest is what the cosmos wallet receives to sign and broadcast.
type CosmosSignRequest struct {
	ChainID       string      `json:"chain_id"`
	RPCURL        string      `json:"rpc_url"`
	SignerAddress string      `json:"signer_address"`
	Msgs          []CosmosMsg `json:"msgs"`
	Fee           CosmosFee   `json:"fee"`
	Memo          string      `json:"memo"`
}

type BroadcastResult struct {
	TxHash string `json:"tx_hash"`
	Code   uint32 `json:"code"`
	RawLog string `json:"raw_log"`
	Height int64  `json:"height"`
}
