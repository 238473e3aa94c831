package arbrpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/dwarvesf/perp-bridge/contracts/hlbridge"
	"github.com/dwarvesf/perp-bridge/internal/model"
)

type IArbRPC interface {
	ChainID() *big.Int
	USDCAddress() common.Address
	BridgeAddress() common.Address
	BlockNumber(ctx context.Context) (uint64, error)

	USDCBalanceOf(ctx context.Context, address string) (*model.Web3BigInt, error)
	USDCAllowance(ctx context.Context, owner, spender string) (*model.Web3BigInt, error)
	PermitNonce(ctx context.Context, owner string) (*big.Int, error)

	ApproveUSDC(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error)
	TransferUSDC(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*types.Transaction, error)
	BatchedDepositWithPermit(opts *bind.TransactOpts, deposits []hlbridge.DepositWithPermit) (*types.Transaction, error)

	EstimateTransferGas(ctx context.Context, from, to common.Address, amount *big.Int) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	// TransactionReceipt returns ethereum.NotFound while hash is unmined.
	TransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error)
}
