// Package wallet holds the two signers a bridge run needs: an EVM key for
// Arbitrum and a Cosmos signer for dYdX.
package wallet

import (
	"context"

	"github.com/dwarvesf/perp-bridge/internal/errs"
)

type Addresses struct {
	Cosmos string `json:"cosmos"`
	EVM    string `json:"evm"`
}

type Wallets struct {
	EVM    IEVMSigner
	Cosmos ICosmosSigner
}

// Connect resolves both addresses. It fails with ErrWalletNotConnected when a
// signer is missing.
func (w *Wallets) Connect(ctx context.Context) (Addresses, error) {
	if w == nil || w.EVM == nil || w.Cosmos == nil {
		return Addresses{}, errs.ErrWalletNotConnected
	}

	cosmos, err := w.Cosmos.Address(ctx)
	if err != nil {
		return Addresses{}, err
	}
	if cosmos == "" {
		return Addresses{}, errs.ErrWalletNotConnected
	}

	return Addresses{
		Cosmos: cosmos,
		EVM:    w.EVM.Address().Hex(),
	}, nil
}
