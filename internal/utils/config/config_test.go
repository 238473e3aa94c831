package config

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/types/environments"
)

var _ = Describe("Config", func() {
	setEnv := func(kv map[string]string) {
		for k, v := range kv {
			Expect(os.Setenv(k, v)).To(Succeed())
			key := k
			DeferCleanup(func() { os.Unsetenv(key) })
		}
	}

	Describe("#LoadNetworkPreset", func() {
		It("should load the mainnet bridge and permit domain", func() {
			preset, err := LoadNetworkPreset("mainnet")
			Expect(err).NotTo(HaveOccurred())
			Expect(preset.ArbitrumChainID).To(Equal(int64(42161)))
			Expect(preset.BridgeAddress).To(Equal("0x2Df1c51E09aECF9cacB7bc98cB1742757f163dF7"))
			Expect(preset.USDCAddress).To(Equal("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"))
			Expect(preset.PermitDomainName).To(Equal("USD Coin"))
			Expect(preset.PermitDomainVersion).To(Equal("2"))
		})

		It("should load the testnet permit domain", func() {
			preset, err := LoadNetworkPreset("testnet")
			Expect(err).NotTo(HaveOccurred())
			Expect(preset.BridgeAddress).To(Equal("0x08cfc1B6b2dCF36A1480b99353A354AA8AC56f89"))
			Expect(preset.PermitDomainName).To(Equal("USDC2"))
			Expect(preset.PermitDomainVersion).To(Equal("1"))
		})

		It("should reject an unknown network", func() {
			_, err := LoadNetworkPreset("devnet")
			Expect(err).To(MatchError(ContainSubstring("unknown network")))
		})
	})

	Describe("#New", func() {
		It("should apply defaults when nothing is set", func() {
			setEnv(map[string]string{"APP_ENV": "test"})

			cfg := New()
			Expect(cfg.Environment).To(Equal(environments.Test))
			Expect(cfg.Network).To(Equal("mainnet"))
			Expect(cfg.History.Key).To(Equal("perp-bridge-history"))
			Expect(cfg.History.MaxItems).To(Equal(50))
			Expect(cfg.Dydx.FeeAmount).To(Equal("5000"))
			Expect(cfg.Dydx.GasLimit).To(Equal("200000"))
			Expect(cfg.Bridge.MinAmount.Equal(decimal.NewFromInt(1))).To(BeTrue())
			Expect(cfg.Bridge.BalancePollInterval).To(Equal(10 * time.Second))
			Expect(cfg.Bridge.BalancePollTimeout).To(Equal(600 * time.Second))
			Expect(cfg.SkipGo.APIURL).To(Equal("https://api.skip.build/v2"))
			Expect(cfg.Lifi.Enabled).To(BeTrue())
			Expect(cfg.Jobs.ReconcilePeriod).To(Equal("@every 2m"))
		})

		It("should let env vars override preset values", func() {
			setEnv(map[string]string{
				"APP_ENV":                      "test",
				"NETWORK":                      "testnet",
				"HISTORY_MAX_ITEMS":            "10",
				"BRIDGE_MIN_AMOUNT":            "2.5",
				"BRIDGE_BALANCE_POLL_INTERVAL": "1s",
				"ARBITRUM_RPC_URL":             "http://localhost:8545",
				"LIFI_ENABLED":                 "false",
				"HYPERLIQUID_WAIT_FOR_CREDIT":  "true",
			})

			cfg := New()
			Expect(cfg.Hyperliquid.BridgeAddress).To(Equal("0x08cfc1B6b2dCF36A1480b99353A354AA8AC56f89"))
			Expect(cfg.Arbitrum.ChainID).To(Equal(int64(421614)))
			Expect(cfg.Arbitrum.RPCURL).To(Equal("http://localhost:8545"))
			Expect(cfg.History.MaxItems).To(Equal(10))
			Expect(cfg.Bridge.MinAmount.String()).To(Equal("2.5"))
			Expect(cfg.Bridge.BalancePollInterval).To(Equal(time.Second))
			Expect(cfg.Lifi.Enabled).To(BeFalse())
			Expect(cfg.Hyperliquid.WaitForCredit).To(BeTrue())
		})

		It("should panic on a malformed integer", func() {
			setEnv(map[string]string{"APP_ENV": "test", "HISTORY_MAX_ITEMS": "many"})
			Expect(func() { New() }).To(Panic())
		})
	})

	Describe("#Validate", func() {
		It("should accept the defaults", func() {
			setEnv(map[string]string{"APP_ENV": "test"})
			Expect(New().Validate()).To(Succeed())
		})

		It("should report every broken field", func() {
			setEnv(map[string]string{
				"APP_ENV":                    "test",
				"HISTORY_BACKEND":            "etcd",
				"PORT":                       "http",
				"HYPERLIQUID_BRIDGE_ADDRESS": "not-an-address",
			})

			err := New().Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("History.Backend"))
			Expect(err.Error()).To(ContainSubstring("ApiServer.Port"))
			Expect(err.Error()).To(ContainSubstring("Hyperliquid.BridgeAddress"))
		})

		It("should require a positive minimum amount", func() {
			setEnv(map[string]string{"APP_ENV": "test", "BRIDGE_MIN_AMOUNT": "0"})
			Expect(New().Validate()).To(MatchError(ContainSubstring("MinAmount")))
		})

		It("should require postgres settings for the postgres backend", func() {
			setEnv(map[string]string{"APP_ENV": "test", "HISTORY_BACKEND": "postgres"})
			Expect(New().Validate()).To(MatchError(ContainSubstring("Postgres.Host")))
		})
	})
})
