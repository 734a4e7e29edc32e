package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: ":9090"
logging:
  level: "DEBUG"
performance:
  max_concurrent_routines: 3
pricing:
  minLiquidityFloorNative: 2500
  disableLPAnalysis: true
scanAPI:
  rateLimitPerSecond: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Port)
	require.Equal(t, "DEBUG", cfg.Logging.Level)
	require.Equal(t, 3, cfg.Performance.MaxConcurrentRoutines)
	require.Equal(t, 2500.0, cfg.Pricing.MinLiquidityFloorNative)
	require.True(t, cfg.Pricing.DisableLPAnalysis)
	require.Equal(t, 2.0, cfg.ScanAPI.RateLimitPerSecond)

	// Unset sections still get their defaults.
	require.Equal(t, 30, cfg.Server.ReadTimeoutSeconds)
	require.Equal(t, 0.00003, cfg.Pricing.FallbackReferencePriceUSD)
	require.Equal(t, PulseChain.WrappedNativeAddress, cfg.Chain.WrappedNativeAddress)
}

func TestLoad_FileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not: a: mapping")
	cfg, err := Load(path)
	require.Error(t, err)
	require.Nil(t, cfg)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	require.Equal(t, ":8080", cfg.Server.Port)
	require.Equal(t, "INFO", cfg.Logging.Level)
	require.Equal(t, 10, cfg.Performance.MaxConcurrentRoutines)

	require.Equal(t, uint64(369), cfg.Chain.ChainID)
	require.Len(t, cfg.Chain.FactoryAddresses, 2)
	// Factories stay ordered oldest to newest; discovery depends on it.
	require.Equal(t, "0x1715a3E4A142d8b698131108995174F37aEBA10D", cfg.Chain.FactoryAddresses[0])
	require.Equal(t, "0x29eA7545DEf87022BAdc76323F373EA1e707C523", cfg.Chain.FactoryAddresses[1])
	require.Len(t, cfg.Chain.Stablecoins, 3)

	require.Equal(t, 1000.0, cfg.Pricing.MinLiquidityFloorNative)
	require.Equal(t, 60, cfg.Pricing.ReferenceCacheTTLSeconds)
	require.Equal(t, 300, cfg.Pricing.TokenCacheTTLSeconds)
	require.False(t, cfg.Pricing.DisableLPAnalysis)

	require.Equal(t, "https://api.scan.pulsechain.com/api/v2", cfg.ScanAPI.BaseURL)
	require.Equal(t, int64(10000), cfg.ScanAPI.RequestTimeoutMillis)
}

func TestLoad_ChainOverrideReplacesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
chain:
  chainId: 943
  name: "PulseChain Testnet v4"
  rpcEndpoints:
    - "https://rpc.v4.testnet.pulsechain.com"
  wrappedNativeAddress: "0x70499adEBB11Efd915E3b69E700c331778628707"
  wrappedNativeSymbol: "WPLS"
  factoryAddresses:
    - "0x1715a3E4A142d8b698131108995174F37aEBA10D"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint64(943), cfg.Chain.ChainID)
	require.Len(t, cfg.Chain.RPCEndpoints, 1)
	require.Len(t, cfg.Chain.FactoryAddresses, 1)
	// A configured chain is taken as-is, not merged with the built-in one.
	require.Empty(t, cfg.Chain.Stablecoins)
}
