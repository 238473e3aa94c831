package skipgo

import (
	"context"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/errs"
	"github.com/dwarvesf/perp-bridge/internal/model"
)

var knownPrefixes = map[string]string{
	"dydx-mainnet-1":    "dydx",
	"dydx-testnet-4":    "dydx",
	"noble-1":           "noble",
	"grand-1":           "noble",
	"osmosis-1":         "osmo",
	"osmo-test-5":       "osmo",
	"cosmoshub-4":       "cosmos",
	"theta-testnet-001": "cosmos",
}

// IsNobleChain reports whether chainID is a Noble network, whose
// transactions go through the Noble RPC instead of the dYdX one.
func IsNobleChain(chainID string) bool {
	return knownPrefixes[chainID] == "noble" || strings.Contains(chainID, "noble")
}

// IsEVMChain reports whether a chain id is numeric, which is how EVM chains
// are identified by the routing service.
func IsEVMChain(chainID string) bool {
	_, err := strconv.ParseUint(chainID, 10, 64)
	return err == nil
}

// ConvertBech32 re-encodes a cosmos address under another prefix.
func ConvertBech32(address, prefix string) (string, error) {
	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return "", errors.Wrapf(err, "invalid bech32 address %q", address)
	}
	if hrp == prefix {
		return address, nil
	}
	return bech32.Encode(prefix, data)
}

// AddressList returns one address per chain the route passes through, in the
// route's order. EVM chains get the EVM address; cosmos chains get the cosmos
// address re-encoded with the chain's prefix.
func (s *SkipGo) AddressList(ctx context.Context, route *model.RouteQuote, cosmosAddress, evmAddress string) ([]string, error) {
	if route == nil || len(route.RequiredChainAddresses) == 0 {
		s.logger.Warn("[skipgo.AddressList] route names no required chains, using source and destination addresses", map[string]string{
			"cosmos": cosmosAddress,
			"evm":    evmAddress,
		})
		return []string{cosmosAddress, evmAddress}, nil
	}

	var chainPrefixes map[string]string
	addresses := make([]string, 0, len(route.RequiredChainAddresses))
	for _, chainID := range route.RequiredChainAddresses {
		if IsEVMChain(chainID) {
			addresses = append(addresses, evmAddress)
			continue
		}

		prefix, ok := knownPrefixes[chainID]
		if !ok {
			if chainPrefixes == nil {
				chainPrefixes = s.lookupPrefixes(ctx)
			}
			prefix, ok = chainPrefixes[chainID]
		}
		if !ok || prefix == "" {
			addresses = append(addresses, cosmosAddress)
			continue
		}

		converted, err := ConvertBech32(cosmosAddress, prefix)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, converted)
	}
	return addresses, nil
}

// checkAddressList fails when the list cannot be matched to the route's
// chains: one non-empty address per required chain, or at least one address
// when the route names none.
func checkAddressList(route *model.RouteQuote, addresses []string) error {
	required := len(route.RequiredChainAddresses)
	if required > 0 && len(addresses) != required {
		return errs.Newf(errs.ErrAddressMismatch, "Address list has %d entries but the route requires %d chains", len(addresses), required)
	}
	if len(addresses) == 0 {
		return errs.Newf(errs.ErrAddressMismatch, "Address list is empty")
	}
	for i, addr := range addresses {
		if strings.TrimSpace(addr) == "" {
			chain := ""
			if i < required {
				chain = route.RequiredChainAddresses[i]
			}
			return errs.Newf(errs.ErrAddressMismatch, "Missing address for chain %q at position %d", chain, i)
		}
	}
	return nil
}

func (s *SkipGo) lookupPrefixes(ctx context.Context) map[string]string {
	prefixes := map[string]string{}
	chains, err := s.GetChains(ctx)
	if err != nil {
		s.logger.Warn("[skipgo.AddressList][GetChains]", map[string]string{"error": err.Error()})
		return prefixes
	}
	for _, c := range chains {
		prefixes[c.ChainID] = c.Bech32Prefix
	}
	return prefixes
}
