package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v2"
)

//go:embed networks.yaml
var networksYAML []byte

// NetworkPreset holds the addresses and endpoints that differ between mainnet and testnet.
type NetworkPreset struct {
	ArbitrumChainID     int64  `yaml:"arbitrum_chain_id"`
	BridgeAddress       string `yaml:"bridge_address"`
	USDCAddress         string `yaml:"usdc_address"`
	PermitDomainName    string `yaml:"permit_domain_name"`
	PermitDomainVersion string `yaml:"permit_domain_version"`
	HyperliquidInfoURL  string `yaml:"hyperliquid_info_url"`
	ArbitrumRPCURL      string `yaml:"arbitrum_rpc_url"`
	ArbitrumExplorerURL string `yaml:"arbitrum_explorer_url"`
	DydxChainID         string `yaml:"dydx_chain_id"`
	DydxUSDCDenom       string `yaml:"dydx_usdc_denom"`
	DydxLCDURL          string `yaml:"dydx_lcd_url"`
	DydxRPCURL          string `yaml:"dydx_rpc_url"`
	NobleRPCURL         string `yaml:"noble_rpc_url"`
	DydxExplorerURL     string `yaml:"dydx_explorer_url"`
}

// LoadNetworkPreset returns the embedded preset for the named network.
func LoadNetworkPreset(name string) (NetworkPreset, error) {
	presets := map[string]NetworkPreset{}
	if err := yaml.Unmarshal(networksYAML, &presets); err != nil {
		return NetworkPreset{}, fmt.Errorf("failed to parse network presets: %v", err)
	}

	preset, ok := presets[name]
	if !ok {
		return NetworkPreset{}, fmt.Errorf("unknown network %q", name)
	}

	return preset, nil
}
