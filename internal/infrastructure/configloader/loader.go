package configloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pulse_tracker/internal/domain/entity"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port                string `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"readTimeoutSeconds"`
	WriteTimeoutSeconds int    `yaml:"writeTimeoutSeconds"`
	IdleTimeoutSeconds  int    `yaml:"idleTimeoutSeconds"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines int `yaml:"max_concurrent_routines"`
	RPCCallTimeoutSeconds int `yaml:"rpc_call_timeout_seconds"`
}

// PricingConfig holds the tunables of the valuation engine.
type PricingConfig struct {
	// MinLiquidityFloorNative is the minimum wrapped-native reserve a pair
	// must hold before its quote is accepted. Near-empty pools produce
	// meaningless prices.
	MinLiquidityFloorNative float64 `yaml:"minLiquidityFloorNative"`
	// FallbackReferencePriceUSD is returned when no stablecoin pair yields
	// a usable wrapped-native price, so a scan never blocks on it.
	FallbackReferencePriceUSD float64 `yaml:"fallbackReferencePriceUSD"`
	ReferenceCacheTTLSeconds  int     `yaml:"referenceCacheTTLSeconds"`
	TokenCacheTTLSeconds      int     `yaml:"tokenCacheTTLSeconds"`
	CacheSweepIntervalSeconds int     `yaml:"cacheSweepIntervalSeconds"`
	// DisableLPAnalysis swaps the LP position analyzer for a no-op that
	// reports every LP token as unvalued.
	DisableLPAnalysis bool `yaml:"disableLPAnalysis"`
}

// ScanAPIConfig holds configuration for the external token discovery API.
type ScanAPIConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RateLimitPerSecond   float64 `yaml:"rateLimitPerSecond"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig           `yaml:"server"`
	Logging     LoggingConfig          `yaml:"logging"`
	Performance PerformanceConfig      `yaml:"performance"`
	Chain       entity.ChainDefinition `yaml:"chain"`
	Pricing     PricingConfig          `yaml:"pricing"`
	ScanAPI     ScanAPIConfig          `yaml:"scanAPI"`
}

// PulseChain is the default chain landscape: PulseX factories ordered oldest
// to newest and the bridged stablecoins used for reference price discovery.
var PulseChain = entity.ChainDefinition{
	ChainID: 369,
	Name:    "PulseChain",
	RPCEndpoints: []string{
		"https://rpc.pulsechain.com",
		"https://pulsechain-rpc.publicnode.com",
		"https://rpc-pulsechain.g4mm4.io",
	},
	WrappedNativeAddress: "0xA1077a294dDE1B09bB078844df40758a5D0f9a27", // WPLS
	WrappedNativeSymbol:  "WPLS",
	FactoryAddresses: []string{
		"0x1715a3E4A142d8b698131108995174F37aEBA10D", // PulseX v1
		"0x29eA7545DEf87022BAdc76323F373EA1e707C523", // PulseX v2
	},
	Stablecoins: []entity.StablecoinDefinition{
		{Symbol: "DAI", Address: "0xefD766cCb38EaF1dfd701853BFCe31359239F305", Decimals: 18},
		{Symbol: "USDC", Address: "0x15D38573d2feeb82e7ad5187aB8c1D52810B1f07", Decimals: 6},
		{Symbol: "USDT", Address: "0x0Cb6F5a34ad42ec934882A05265A7d5F59b51A2f", Decimals: 6},
	},
}

// Load reads the YAML configuration file from the given path and unmarshals it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a configuration usable without any config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 30
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 60
	}
	if cfg.Server.IdleTimeoutSeconds <= 0 {
		cfg.Server.IdleTimeoutSeconds = 90
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 10
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}

	if len(cfg.Chain.RPCEndpoints) == 0 {
		cfg.Chain = PulseChain
	}

	if cfg.Pricing.MinLiquidityFloorNative <= 0 {
		cfg.Pricing.MinLiquidityFloorNative = 1000 // WPLS on the native side
	}
	if cfg.Pricing.FallbackReferencePriceUSD <= 0 {
		cfg.Pricing.FallbackReferencePriceUSD = 0.00003
	}
	if cfg.Pricing.ReferenceCacheTTLSeconds <= 0 {
		cfg.Pricing.ReferenceCacheTTLSeconds = 60
	}
	if cfg.Pricing.TokenCacheTTLSeconds <= 0 {
		cfg.Pricing.TokenCacheTTLSeconds = 300
	}
	if cfg.Pricing.CacheSweepIntervalSeconds <= 0 {
		cfg.Pricing.CacheSweepIntervalSeconds = 120
	}

	if cfg.ScanAPI.BaseURL == "" {
		cfg.ScanAPI.BaseURL = "https://api.scan.pulsechain.com/api/v2"
	}
	if cfg.ScanAPI.RequestTimeoutMillis <= 0 {
		cfg.ScanAPI.RequestTimeoutMillis = 10000
	}
	if cfg.ScanAPI.RateLimitPerSecond <= 0 {
		cfg.ScanAPI.RateLimitPerSecond = 5
	}
}
