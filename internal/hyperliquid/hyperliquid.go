// Package hyperliquid moves USDC from Arbitrum into Hyperliquid through the
// Bridge2 contract and watches the venue balance for the credit.
package hyperliquid

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/contracts/hlbridge"
	"github.com/dwarvesf/perp-bridge/internal/arbrpc"
	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/model"
	"github.com/dwarvesf/perp-bridge/internal/retry"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
	"github.com/dwarvesf/perp-bridge/internal/wallet"
)

const infoTimeout = 15 * time.Second

type Hyperliquid struct {
	appConfig *config.AppConfig
	logger    *logger.Logger
	rpc       arbrpc.IArbRPC
	signer    wallet.IEVMSigner
	info      *resty.Client
	policy    retry.Policy
	now       func() time.Time
}

func New(appConfig *config.AppConfig, logger *logger.Logger, rpc arbrpc.IArbRPC, signer wallet.IEVMSigner) *Hyperliquid {
	info := resty.New().SetTimeout(infoTimeout).SetHeader("Content-Type", "application/json")
	return NewWithInfoClient(appConfig, logger, rpc, signer, info, retry.DefaultPolicy())
}

func NewWithInfoClient(appConfig *config.AppConfig, logger *logger.Logger, rpc arbrpc.IArbRPC, signer wallet.IEVMSigner, info *resty.Client, policy retry.Policy) *Hyperliquid {
	return &Hyperliquid{
		appConfig: appConfig,
		logger:    logger,
		rpc:       rpc,
		signer:    signer,
		info:      info,
		policy:    policy,
		now:       time.Now,
	}
}

// Address is the EVM account that signs deposits, or "" without a signer.
func (h *Hyperliquid) Address() string {
	if h.signer == nil {
		return ""
	}
	return h.signer.Address().Hex()
}

func toBaseUnits(amount decimal.Decimal) *big.Int {
	return model.NewWeb3BigInt(amount, consts.USDC_DECIMALS).BigInt()
}

func (h *Hyperliquid) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	balance, err := h.rpc.USDCBalanceOf(ctx, address)
	if err != nil {
		return decimal.Zero, formatContractError(err, "Failed to get USDC balance")
	}
	return balance.ToDecimal(), nil
}

func (h *Hyperliquid) CheckAllowance(ctx context.Context, owner string) (decimal.Decimal, error) {
	allowance, err := h.rpc.USDCAllowance(ctx, owner, h.rpc.BridgeAddress().Hex())
	if err != nil {
		return decimal.Zero, formatContractError(err, "Failed to check allowance")
	}
	return allowance.ToDecimal(), nil
}

// Approve grants the bridge an allowance of amount. It returns "" without
// sending anything when the current allowance already covers amount.
func (h *Hyperliquid) Approve(ctx context.Context, amount decimal.Decimal) (string, error) {
	if h.signer == nil {
		return "", errs.ErrWalletNotConnected
	}

	current, err := h.CheckAllowance(ctx, h.Address())
	if err != nil {
		return "", err
	}
	if current.GreaterThanOrEqual(amount) {
		h.logger.Info("[Approve] allowance already sufficient", map[string]string{
			"allowance": current.String(),
			"amount":    amount.String(),
		})
		return "", nil
	}

	opts, err := h.signer.TransactOpts(ctx)
	if err != nil {
		return "", formatContractError(err, "Failed to approve USDC")
	}
	tx, err := h.rpc.ApproveUSDC(opts, h.rpc.BridgeAddress(), toBaseUnits(amount))
	if err != nil {
		return "", formatContractError(err, "Failed to approve USDC")
	}
	if _, err := h.waitSuccessful(ctx, tx, errApprovalFailed); err != nil {
		return "", formatContractError(err, "Failed to approve USDC")
	}
	return tx.Hash().Hex(), nil
}

// Transfer sends amount USDC straight to the bridge contract, which credits
// the sender's Hyperliquid account.
func (h *Hyperliquid) Transfer(ctx context.Context, amount decimal.Decimal) (*model.TransferResult, error) {
	if h.signer == nil {
		return nil, errs.ErrWalletNotConnected
	}

	opts, err := h.signer.TransactOpts(ctx)
	if err != nil {
		return nil, formatContractError(err, "Failed to deposit to bridge")
	}
	tx, err := h.rpc.TransferUSDC(opts, h.rpc.BridgeAddress(), toBaseUnits(amount))
	if err != nil {
		return nil, formatContractError(err, "Failed to deposit to bridge")
	}

	receipt, err := h.waitSuccessful(ctx, tx, errs.Newf(errs.ErrTransferFailed, "Transfer transaction failed"))
	if err != nil {
		return nil, formatContractError(err, "Failed to deposit to bridge")
	}
	return &model.TransferResult{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

func (h *Hyperliquid) waitSuccessful(ctx context.Context, tx *types.Transaction, failure error) (*types.Receipt, error) {
	receipt, err := h.rpc.WaitMined(ctx, tx)
	if err != nil {
		return nil, err
	}
	if receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
		return nil, failure
	}
	return receipt, nil
}

func (h *Hyperliquid) permitTypedData(owner common.Address, value, nonce *big.Int, deadline int64) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Permit": {
				{Name: "owner", Type: "address"},
				{Name: "spender", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "deadline", Type: "uint256"},
			},
		},
		PrimaryType: "Permit",
		Domain: apitypes.TypedDataDomain{
			Name:              h.appConfig.Hyperliquid.PermitDomainName,
			Version:           h.appConfig.Hyperliquid.PermitDomainVersion,
			ChainId:           (*math.HexOrDecimal256)(h.rpc.ChainID()),
			VerifyingContract: h.rpc.USDCAddress().Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"owner":    owner.Hex(),
			"spender":  h.rpc.BridgeAddress().Hex(),
			"value":    value.String(),
			"nonce":    nonce.String(),
			"deadline": big.NewInt(deadline).String(),
		},
	}
}

// SignPermit signs an EIP-2612 permit letting the bridge pull amount USDC
// until deadline (unix seconds).
func (h *Hyperliquid) SignPermit(ctx context.Context, amount decimal.Decimal, deadline int64) (*Permit, error) {
	if h.signer == nil {
		return nil, errs.ErrWalletNotConnected
	}
	if deadline <= h.now().Unix() {
		return nil, errors.New("Failed to sign permit: deadline must be in the future")
	}

	owner := h.signer.Address()
	nonce, err := h.rpc.PermitNonce(ctx, owner.Hex())
	if err != nil {
		return nil, formatContractError(err, "Failed to sign permit")
	}

	value := toBaseUnits(amount)
	sig, err := h.signer.SignTypedData(h.permitTypedData(owner, value, nonce, deadline))
	if err != nil {
		return nil, formatContractError(err, "Failed to sign permit")
	}
	if len(sig) != 65 {
		return nil, errors.Errorf("Failed to sign permit: unexpected signature length %d", len(sig))
	}

	permit := &Permit{
		Owner:    owner.Hex(),
		Spender:  h.rpc.BridgeAddress().Hex(),
		Amount:   value,
		Nonce:    nonce,
		Deadline: deadline,
		V:        sig[64],
	}
	copy(permit.R[:], sig[:32])
	copy(permit.S[:], sig[32:64])
	return permit, nil
}

// DepositWithPermit deposits through batchedDepositWithPermit, skipping the
// separate approve transaction.
func (h *Hyperliquid) DepositWithPermit(ctx context.Context, amount decimal.Decimal, deadline int64) (*model.TransferResult, error) {
	permit, err := h.SignPermit(ctx, amount, deadline)
	if err != nil {
		return nil, err
	}

	deposit := hlbridge.DepositWithPermit{
		User:     common.HexToAddress(permit.Owner),
		Usd:      permit.Amount.Uint64(),
		Deadline: uint64(deadline),
		Signature: hlbridge.Signature{
			R: permit.R,
			S: permit.S,
			V: permit.V,
		},
	}

	opts, err := h.signer.TransactOpts(ctx)
	if err != nil {
		return nil, formatContractError(err, "Failed to deposit with permit")
	}
	tx, err := h.rpc.BatchedDepositWithPermit(opts, []hlbridge.DepositWithPermit{deposit})
	if err != nil {
		return nil, formatContractError(err, "Failed to deposit with permit")
	}

	receipt, err := h.waitSuccessful(ctx, tx, errDepositFailed)
	if err != nil {
		return nil, formatContractError(err, "Failed to deposit with permit")
	}
	return &model.TransferResult{
		TxHash:      tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Uint64(),
	}, nil
}

// EstimateDepositGas prices a plain transfer deposit of amount.
func (h *Hyperliquid) EstimateDepositGas(ctx context.Context, amount decimal.Decimal) (*GasEstimate, error) {
	from := common.Address{}
	if h.signer != nil {
		from = h.signer.Address()
	}

	gasLimit, err := h.rpc.EstimateTransferGas(ctx, from, h.rpc.BridgeAddress(), toBaseUnits(amount))
	if err != nil {
		return nil, formatContractError(err, "Failed to estimate gas")
	}
	gasPrice, err := h.rpc.SuggestGasPrice(ctx)
	if err != nil {
		return nil, formatContractError(err, "Failed to estimate gas")
	}

	cost := new(big.Int).Mul(new(big.Int).SetUint64(gasLimit), gasPrice)
	return &GasEstimate{
		GasLimit:         gasLimit,
		GasPriceGwei:     decimal.NewFromBigInt(gasPrice, -9),
		EstimatedCostETH: decimal.NewFromBigInt(cost, -18),
	}, nil
}

// Quote describes the direct bridge hop. Output is 1:1 with the input.
func (h *Hyperliquid) Quote(amount decimal.Decimal) model.HopQuote {
	return model.HopQuote{
		Tool:                     ToolName,
		EstimatedDurationSeconds: 60,
		EstimatedTime:            EstimatedTime,
		FeeUSD:                   DefaultFeeUSD,
		OutputAmount:             amount,
	}
}
