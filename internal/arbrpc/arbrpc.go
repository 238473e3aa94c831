package arbrpc

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/contracts/hlbridge"
	"github.com/dwarvesf/perp-bridge/contracts/usdc"
	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/retry"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

// Backend is the subset of ethclient.Client the RPC layer needs.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BlockNumber(ctx context.Context) (uint64, error)
}

type contracts struct {
	usdcAddress   common.Address
	bridgeAddress common.Address
	usdc          *usdc.Usdc
	bridge        *hlbridge.Hlbridge
}

type ArbRPC struct {
	appConfig *config.AppConfig
	logger    *logger.Logger
	backend   Backend
	chainID   *big.Int
	contracts contracts
	policy    retry.Policy
}

func New(appConfig *config.AppConfig, logger *logger.Logger) (IArbRPC, error) {
	client, err := ethclient.Dial(appConfig.Arbitrum.RPCURL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial arbitrum rpc %s", appConfig.Arbitrum.RPCURL)
	}
	return NewWithBackend(appConfig, logger, client)
}

func NewWithBackend(appConfig *config.AppConfig, logger *logger.Logger, backend Backend) (*ArbRPC, error) {
	usdcAddress := common.HexToAddress(appConfig.Hyperliquid.USDCAddress)
	usdcInstance, err := usdc.NewUsdc(usdcAddress, backend)
	if err != nil {
		return nil, err
	}

	bridgeAddress := common.HexToAddress(appConfig.Hyperliquid.BridgeAddress)
	bridgeInstance, err := hlbridge.NewHlbridge(bridgeAddress, backend)
	if err != nil {
		return nil, err
	}

	return &ArbRPC{
		appConfig: appConfig,
		logger:    logger,
		backend:   backend,
		chainID:   big.NewInt(appConfig.Arbitrum.ChainID),
		contracts: contracts{
			usdcAddress:   usdcAddress,
			bridgeAddress: bridgeAddress,
			usdc:          usdcInstance,
			bridge:        bridgeInstance,
		},
		policy: retry.Policy{
			MaxAttempts:       3,
			InitialDelay:      time.Second,
			MaxDelay:          5 * time.Second,
			BackoffMultiplier: 2,
			ShouldRetry:       retry.IsTransient,
		},
	}, nil
}

func (a *ArbRPC) ChainID() *big.Int {
	return new(big.Int).Set(a.chainID)
}

func (a *ArbRPC) USDCAddress() common.Address {
	return a.contracts.usdcAddress
}

func (a *ArbRPC) BridgeAddress() common.Address {
	return a.contracts.bridgeAddress
}

func (a *ArbRPC) read(op string) retry.Policy {
	p := a.policy
	p.OnRetry = func(err error, attempt int, delay time.Duration) {
		a.logger.Warn(fmt.Sprintf("[arbrpc.%s][retry]", op), map[string]string{
			"attempt": strconv.Itoa(attempt),
			"error":   err.Error(),
		})
	}
	return p
}

func (a *ArbRPC) BlockNumber(ctx context.Context) (uint64, error) {
	return retry.Do(ctx, a.read("BlockNumber"), func(ctx context.Context) (uint64, error) {
		return a.backend.BlockNumber(ctx)
	})
}

func (a *ArbRPC) TransactionReceipt(ctx context.Context, hash string) (*types.Receipt, error) {
	receipt, err := retry.Do(ctx, a.read("TransactionReceipt"), func(ctx context.Context) (*types.Receipt, error) {
		return a.backend.TransactionReceipt(ctx, common.HexToHash(hash))
	})
	if err != nil && !errors.Is(err, ethereum.NotFound) {
		a.logger.Error("[TransactionReceipt]", map[string]string{
			"hash":  hash,
			"error": err.Error(),
		})
	}
	return receipt, err
}

func (a *ArbRPC) USDCBalanceOf(ctx context.Context, address string) (*model.Web3BigInt, error) {
	balance, err := retry.Do(ctx, a.read("USDCBalanceOf"), func(ctx context.Context) (*big.Int, error) {
		return a.contracts.usdc.BalanceOf(&bind.CallOpts{Context: ctx}, common.HexToAddress(address))
	})
	if err != nil {
		a.logger.Error("[USDCBalanceOf][BalanceOf]", map[string]string{
			"address": address,
			"error":   err.Error(),
		})
		return nil, err
	}
	return model.Web3BigIntFromBig(balance, consts.USDC_DECIMALS), nil
}

func (a *ArbRPC) USDCAllowance(ctx context.Context, owner, spender string) (*model.Web3BigInt, error) {
	allowance, err := retry.Do(ctx, a.read("USDCAllowance"), func(ctx context.Context) (*big.Int, error) {
		return a.contracts.usdc.Allowance(&bind.CallOpts{Context: ctx}, common.HexToAddress(owner), common.HexToAddress(spender))
	})
	if err != nil {
		a.logger.Error("[USDCAllowance][Allowance]", map[string]string{
			"owner":   owner,
			"spender": spender,
			"error":   err.Error(),
		})
		return nil, err
	}
	return model.Web3BigIntFromBig(allowance, consts.USDC_DECIMALS), nil
}

func (a *ArbRPC) PermitNonce(ctx context.Context, owner string) (*big.Int, error) {
	return retry.Do(ctx, a.read("PermitNonce"), func(ctx context.Context) (*big.Int, error) {
		return a.contracts.usdc.Nonces(&bind.CallOpts{Context: ctx}, common.HexToAddress(owner))
	})
}

func (a *ArbRPC) ApproveUSDC(opts *bind.TransactOpts, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	tx, err := a.contracts.usdc.Approve(opts, spender, amount)
	if err != nil {
		a.logger.Error("[ApproveUSDC][Approve]", map[string]string{
			"spender": spender.Hex(),
			"amount":  amount.String(),
			"error":   err.Error(),
		})
		return nil, err
	}
	return tx, nil
}

func (a *ArbRPC) TransferUSDC(opts *bind.TransactOpts, to common.Address, amount *big.Int) (*types.Transaction, error) {
	tx, err := a.contracts.usdc.Transfer(opts, to, amount)
	if err != nil {
		a.logger.Error("[TransferUSDC][Transfer]", map[string]string{
			"to":     to.Hex(),
			"amount": amount.String(),
			"error":  err.Error(),
		})
		return nil, err
	}
	a.logger.Info("[TransferUSDC][Transfer]", map[string]string{
		"to":     to.Hex(),
		"amount": amount.String(),
		"txHash": tx.Hash().Hex(),
	})
	return tx, nil
}

func (a *ArbRPC) BatchedDepositWithPermit(opts *bind.TransactOpts, deposits []hlbridge.DepositWithPermit) (*types.Transaction, error) {
	tx, err := a.contracts.bridge.BatchedDepositWithPermit(opts, deposits)
	if err != nil {
		a.logger.Error("[BatchedDepositWithPermit][Transact]", map[string]string{
			"deposits": strconv.Itoa(len(deposits)),
			"error":    err.Error(),
		})
		return nil, err
	}
	return tx, nil
}

// EstimateTransferGas estimates a USDC transfer as if sent from `from`.
func (a *ArbRPC) EstimateTransferGas(ctx context.Context, from, to common.Address, amount *big.Int) (uint64, error) {
	parsed, err := usdc.UsdcMetaData.GetAbi()
	if err != nil {
		return 0, err
	}
	data, err := parsed.Pack("transfer", to, amount)
	if err != nil {
		return 0, errors.Wrap(err, "failed to pack transfer call")
	}

	usdcAddress := a.contracts.usdcAddress
	return retry.Do(ctx, a.read("EstimateTransferGas"), func(ctx context.Context) (uint64, error) {
		return a.backend.EstimateGas(ctx, ethereum.CallMsg{
			From: from,
			To:   &usdcAddress,
			Data: data,
		})
	})
}

func (a *ArbRPC) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return retry.Do(ctx, a.read("SuggestGasPrice"), func(ctx context.Context) (*big.Int, error) {
		return a.backend.SuggestGasPrice(ctx)
	})
}

func (a *ArbRPC) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, a.backend, tx)
	if err != nil {
		a.logger.Error("[WaitMined]", map[string]string{
			"txHash": tx.Hash().Hex(),
			"error":  err.Error(),
		})
		return nil, err
	}
	return receipt, nil
}
