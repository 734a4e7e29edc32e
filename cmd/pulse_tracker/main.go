package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"pulse_tracker/internal/app/port"
	"pulse_tracker/internal/app/service"
	"pulse_tracker/internal/infrastructure/configloader"
	"pulse_tracker/internal/infrastructure/httpclient"
	networkclient "pulse_tracker/internal/infrastructure/network/client"
	"pulse_tracker/internal/infrastructure/restapi"
	"pulse_tracker/internal/pkg/logger"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// Bootstrap logging until the real config is loaded.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	slogHandler := zapslog.NewHandler(zapLogger.Core())
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := getEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Warnf("Failed to load configuration from %s, using defaults: %v", cfgPath, err)
		cfg = configloader.Default()
	}
	logger.InitSlog(cfg.Logging.Level)
	appLogger := logger.NewSlogAdapter()
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath), zap.String("chain", cfg.Chain.Name))

	providerPool, err := networkclient.NewProviderPool(cfg.Chain.RPCEndpoints, appLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize RPC provider pool", zap.Error(err))
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
		zapLogger.Info("LP position analysis disabled")
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

	scanHandler := restapi.NewScanHandler(scanService, appLogger)
	router := restapi.SetupRouter(scanHandler)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting")
}
