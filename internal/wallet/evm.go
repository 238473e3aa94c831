package wallet

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/utils/config"
	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
	"github.com/dwarvesf/perp-bridge/internal/utils/vault"
)

type LocalSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

func NewLocalSigner(hexKey string, chainID *big.Int) (*LocalSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid evm private key")
	}
	return &LocalSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		chainID: new(big.Int).Set(chainID),
	}, nil
}

// LoadEVMSigner takes the key from ARBITRUM_PRIVATE_KEY, or from Vault when
// a Vault address is configured.
func LoadEVMSigner(appConfig *config.AppConfig, logger *logger.Logger) (*LocalSigner, error) {
	chainID := big.NewInt(appConfig.Arbitrum.ChainID)
	if appConfig.Arbitrum.PrivateKey != "" {
		return NewLocalSigner(appConfig.Arbitrum.PrivateKey, chainID)
	}
	if appConfig.Vault.Addr == "" {
		return nil, errs.ErrWalletNotConnected
	}

	vc, err := vault.New(appConfig.Vault.Addr, appConfig.Vault.KVSecretPath, appConfig.Vault.Role)
	if err != nil {
		logger.Error("[LoadEVMSigner][vault.New]", map[string]string{"error": err.Error()})
		return nil, err
	}
	key, err := vc.GetKV(appConfig.Vault.EVMKeySecret)
	if err != nil {
		logger.Error("[LoadEVMSigner][GetKV]", map[string]string{"error": err.Error()})
		return nil, err
	}
	return NewLocalSigner(key, chainID)
}

func (s *LocalSigner) Address() common.Address {
	return s.address
}

func (s *LocalSigner) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := bind.NewKeyedTransactorWithChainID(s.key, s.chainID)
	if err != nil {
		return nil, err
	}
	opts.Context = ctx
	return opts, nil
}

// SignTypedData returns a 65-byte r||s||v signature with v in {27, 28}.
func (s *LocalSigner) SignTypedData(data apitypes.TypedData) ([]byte, error) {
	hash, _, err := apitypes.TypedDataAndHash(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash typed data")
	}
	sig, err := crypto.Sign(hash, s.key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
