package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/dwarvesf/perp-bridge/internal/types/environments"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	Network     string
	Preset      NetworkPreset
	History     HistoryConfig
	Postgres    DBConnection
	Sqlite      SqliteConfig
	Redis       RedisConfig
	Vault       VaultConfig
	Dydx        DydxConfig
	Arbitrum    ArbitrumConfig
	Hyperliquid HyperliquidConfig
	SkipGo      SkipGoConfig
	Lifi        LifiConfig
	Bridge      BridgeConfig
	Jobs        JobsConfig
}

type ApiServerConfig struct {
	AllowedOrigins string
	Port           string `validate:"required,numeric"`
}

// HistoryConfig selects where the bridge history blob lives.
// Backend is one of memory, sqlite, postgres, redis.
type HistoryConfig struct {
	Backend  string `validate:"oneof=memory sqlite postgres redis"`
	Key      string
	MaxItems int `validate:"gt=0"`
}

type DBConnection struct {
	Host string
	Port string
	User string
	Name string
	Pass string

	SSLMode string
}

type SqliteConfig struct {
	Path string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type VaultConfig struct {
	Addr         string
	KVSecretPath string
	Role         string
	EVMKeySecret string
}

type DydxConfig struct {
	ChainID     string
	LCDURL      string
	RPCURL      string
	NobleRPCURL string
	USDCDenom   string
	FeeAmount   string
	GasLimit    string
	// SignerURL points at the Cosmos signing service that holds the dYdX key.
	SignerURL   string
	SignerToken string
	Address     string
}

type ArbitrumConfig struct {
	RPCURL     string `validate:"required,url"`
	ChainID    int64  `validate:"gt=0"`
	PrivateKey string
}

type HyperliquidConfig struct {
	InfoURL             string `validate:"required,url"`
	BridgeAddress       string `validate:"eth_addr"`
	USDCAddress         string `validate:"eth_addr"`
	PermitDomainName    string
	PermitDomainVersion string
	WaitForCredit       bool
}

type SkipGoConfig struct {
	APIURL string `validate:"required,url"`
	GoFast bool
}

type LifiConfig struct {
	APIURL  string
	Enabled bool
}

type BridgeConfig struct {
	MinAmount           decimal.Decimal
	BalancePollInterval time.Duration
	BalancePollTimeout  time.Duration
	RunTimeout          time.Duration
}

type JobsConfig struct {
	ReconcilePeriod  string `validate:"required"`
	StaleAfter       time.Duration
	UptimeWebhookURL string
}

func New() *AppConfig {
	env := environments.Parse(os.Getenv("APP_ENV"))

	// this will not override env variables if they already exist
	godotenv.Load(".env." + string(env))

	network := envVarOr("NETWORK", "mainnet")
	preset, err := LoadNetworkPreset(network)
	if err != nil {
		panic(err)
	}

	return &AppConfig{
		Environment: env,
		ApiServer: ApiServerConfig{
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
			Port:           envVarOr("PORT", "8080"),
		},
		Network: network,
		Preset:  preset,
		History: HistoryConfig{
			Backend:  envVarOr("HISTORY_BACKEND", "sqlite"),
			Key:      envVarOr("HISTORY_KEY", "perp-bridge-history"),
			MaxItems: envVarAtoi("HISTORY_MAX_ITEMS", 50),
		},
		Postgres: DBConnection{
			Host:    os.Getenv("DB_HOST"),
			Port:    os.Getenv("DB_PORT"),
			User:    os.Getenv("DB_USER"),
			Name:    os.Getenv("DB_NAME"),
			Pass:    os.Getenv("DB_PASS"),
			SSLMode: os.Getenv("DB_SSL_MODE"),
		},
		Sqlite: SqliteConfig{
			Path: envVarOr("SQLITE_PATH", "perp-bridge.db"),
		},
		Redis: RedisConfig{
			Addr:     envVarOr("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envVarAtoi("REDIS_DB", 0),
		},
		Vault: VaultConfig{
			Addr:         os.Getenv("VAULT_ADDR"),
			KVSecretPath: os.Getenv("VAULT_KV_SECRET_PATH"),
			Role:         os.Getenv("VAULT_ROLE"),
			EVMKeySecret: envVarOr("VAULT_EVM_KEY_SECRET", "arbitrum_private_key"),
		},
		Dydx: DydxConfig{
			ChainID:     envVarOr("DYDX_CHAIN_ID", preset.DydxChainID),
			LCDURL:      envVarOr("DYDX_LCD_URL", preset.DydxLCDURL),
			RPCURL:      envVarOr("DYDX_RPC_URL", preset.DydxRPCURL),
			NobleRPCURL: envVarOr("NOBLE_RPC_URL", preset.NobleRPCURL),
			USDCDenom:   envVarOr("DYDX_USDC_DENOM", preset.DydxUSDCDenom),
			FeeAmount:   envVarOr("DYDX_FEE_AMOUNT", "5000"),
			GasLimit:    envVarOr("DYDX_GAS_LIMIT", "200000"),
			SignerURL:   os.Getenv("COSMOS_SIGNER_URL"),
			SignerToken: os.Getenv("COSMOS_SIGNER_TOKEN"),
			Address:     os.Getenv("DYDX_ADDRESS"),
		},
		Arbitrum: ArbitrumConfig{
			RPCURL:     envVarOr("ARBITRUM_RPC_URL", preset.ArbitrumRPCURL),
			ChainID:    int64(envVarAtoi("ARBITRUM_CHAIN_ID", int(preset.ArbitrumChainID))),
			PrivateKey: os.Getenv("ARBITRUM_PRIVATE_KEY"),
		},
		Hyperliquid: HyperliquidConfig{
			InfoURL:             envVarOr("HYPERLIQUID_INFO_URL", preset.HyperliquidInfoURL),
			BridgeAddress:       envVarOr("HYPERLIQUID_BRIDGE_ADDRESS", preset.BridgeAddress),
			USDCAddress:         envVarOr("ARBITRUM_USDC_ADDRESS", preset.USDCAddress),
			PermitDomainName:    preset.PermitDomainName,
			PermitDomainVersion: preset.PermitDomainVersion,
			WaitForCredit:       envVarAsBool("HYPERLIQUID_WAIT_FOR_CREDIT"),
		},
		SkipGo: SkipGoConfig{
			APIURL: envVarOr("SKIP_API_URL", "https://api.skip.build/v2"),
			GoFast: envVarAsBool("SKIP_GO_FAST"),
		},
		Lifi: LifiConfig{
			APIURL:  envVarOr("LIFI_API_URL", "https://li.quest/v1"),
			Enabled: os.Getenv("LIFI_ENABLED") != "false",
		},
		Bridge: BridgeConfig{
			MinAmount:           envVarAsDecimal("BRIDGE_MIN_AMOUNT", decimal.NewFromInt(1)),
			BalancePollInterval: envVarAsDuration("BRIDGE_BALANCE_POLL_INTERVAL", 10*time.Second),
			BalancePollTimeout:  envVarAsDuration("BRIDGE_BALANCE_POLL_TIMEOUT", 600*time.Second),
			RunTimeout:          envVarAsDuration("BRIDGE_RUN_TIMEOUT", 30*time.Minute),
		},
		Jobs: JobsConfig{
			ReconcilePeriod:  envVarOr("RECONCILE_PERIOD", "@every 2m"),
			StaleAfter:       envVarAsDuration("RECONCILE_STALE_AFTER", time.Hour),
			UptimeWebhookURL: os.Getenv("UPTIME_WEBHOOK_URL"),
		},
	}
}

func envVarOr(envName, fallback string) string {
	if v := os.Getenv(envName); v != "" {
		return v
	}
	return fallback
}

func envVarAtoi(envName string, fallback int) int {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		panic(err)
	}

	return value
}

func envVarAsBool(envName string) bool {
	valueStr := os.Getenv(envName)
	return valueStr == "true"
}

func envVarAsDuration(envName string, fallback time.Duration) time.Duration {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		panic(err)
	}

	return value
}

func envVarAsDecimal(envName string, fallback decimal.Decimal) decimal.Decimal {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return fallback
	}

	return decimal.RequireFromString(valueStr)
}
