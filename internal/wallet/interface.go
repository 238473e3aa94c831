package wallet

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/dwarvesf/perp-bridge/internal/model"
)

// IEVMSigner signs Arbitrum transactions and EIP-712 payloads.
type IEVMSigner interface {
	Address() common.Address
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
	SignTypedData(data apitypes.TypedData) ([]byte, error)
}

// ICosmosSigner signs and broadcasts dYdX transactions.
type ICosmosSigner interface {
	Address(ctx context.Context) (string, error)
	SignAndBroadcast(ctx context.Context, req model.CosmosSignRequest) (*model.BroadcastResult, error)
}
