package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"pulse_tracker/internal/app/port"
	"pulse_tracker/internal/app/service"
	"pulse_tracker/internal/infrastructure/configloader"
	"pulse_tracker/internal/infrastructure/httpclient"
	networkclient "pulse_tracker/internal/infrastructure/network/client"
	"pulse_tracker/internal/pkg/logger"
)

// One-shot scanner: values the wallet addresses given as arguments and
// prints the resulting document as JSON to stdout.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <walletAddress> [walletAddress ...]\n", os.Args[0])
		os.Exit(2)
	}
	walletAddresses := os.Args[1:]

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		cfg = configloader.Default()
	}
	// Scan progress goes to stderr-style structured logs; stdout carries
	// only the JSON document.
	logger.InitSlog("WARN")
	appLogger := logger.NewSlogAdapter()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		logger.Fatal("Failed to initialize zap logger", "error", err)
	}
	defer zapLogger.Sync()

	providerPool, err := networkclient.NewProviderPool(cfg.Chain.RPCEndpoints, appLogger)
	if err != nil {
		logger.Fatal("Failed to initialize RPC provider pool", "error", err)
	}
	defer providerPool.Close()

	rpcCallTimeout := time.Duration(cfg.Performance.RPCCallTimeoutSeconds) * time.Second
	chainReader := networkclient.NewEVMClient(providerPool, appLogger, rpcCallTimeout)

	priceCache := service.NewPriceCache(
		time.Duration(cfg.Pricing.ReferenceCacheTTLSeconds)*time.Second,
		time.Duration(cfg.Pricing.TokenCacheTTLSeconds)*time.Second,
		time.Duration(cfg.Pricing.CacheSweepIntervalSeconds)*time.Second,
	)
	referenceResolver := service.NewReferencePriceService(
		chainReader, priceCache, appLogger, cfg.Chain, cfg.Pricing.FallbackReferencePriceUSD)
	tokenPriceResolver := service.NewTokenPriceService(
		chainReader, referenceResolver, priceCache, appLogger, cfg.Chain, cfg.Pricing.MinLiquidityFloorNative)

	var lpAnalyzer port.LPAnalyzer
	if cfg.Pricing.DisableLPAnalysis {
		lpAnalyzer = service.NewNoopLPAnalyzer()
	} else {
		lpAnalyzer = service.NewLPService(
			chainReader, tokenPriceResolver, referenceResolver, appLogger, cfg.Chain.WrappedNativeAddress)
	}

	discoveryClient := httpclient.NewScanClient(
		cfg.ScanAPI.BaseURL,
		time.Duration(cfg.ScanAPI.RequestTimeoutMillis)*time.Millisecond,
		cfg.ScanAPI.RateLimitPerSecond,
		zapLogger,
	)

	aggregator := service.NewAggregatorService(appLogger)
	scanService := service.NewScanService(
		discoveryClient, tokenPriceResolver, referenceResolver, lpAnalyzer, aggregator,
		appLogger, cfg.Chain.WrappedNativeAddress, cfg.Performance.MaxConcurrentRoutines)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := scanService.Scan(ctx, walletAddresses)
	if err != nil {
		logger.Fatal("Scan failed", "error", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		logger.Fatal("Failed to encode scan result", "error", err)
	}
}
