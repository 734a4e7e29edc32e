package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"pulse_tracker/internal/app/port"
	"pulse_tracker/internal/domain/entity"
	"pulse_tracker/internal/pkg/metrics"
	"pulse_tracker/internal/pkg/utils"
)

// ScanServiceImpl implements port.ScanService: per-wallet token discovery,
// valuation of every holding, LP decomposition, and for multi-wallet
// requests the combined portfolio.
type ScanServiceImpl struct {
	discovery             port.TokenDiscovery
	tokenPrices           port.TokenPriceResolver
	reference             port.ReferencePriceResolver
	lpAnalyzer            port.LPAnalyzer
	aggregator            *AggregatorServiceImpl
	logger                port.Logger
	wrappedNative         string
	maxConcurrentRoutines int
}

// NewScanService creates a new ScanServiceImpl.
func NewScanService(
	discovery port.TokenDiscovery,
	tokenPrices port.TokenPriceResolver,
	reference port.ReferencePriceResolver,
	lpAnalyzer port.LPAnalyzer,
	aggregator *AggregatorServiceImpl,
	l port.Logger,
	wrappedNativeAddress string,
	maxRoutines int,
) port.ScanService {
	if maxRoutines <= 0 {
		maxRoutines = 1
	}
	return &ScanServiceImpl{
		discovery:             discovery,
		tokenPrices:           tokenPrices,
		reference:             reference,
		lpAnalyzer:            lpAnalyzer,
		aggregator:            aggregator,
		logger:                l,
		wrappedNative:         wrappedNativeAddress,
		maxConcurrentRoutines: maxRoutines,
	}
}

// Scan values every wallet address. Wallets are scanned concurrently under
// a semaphore; per-token failures degrade into unpriced entries or
// ScanErrors, never into an aborted scan.
func (s *ScanServiceImpl) Scan(ctx context.Context, walletAddresses []string) (*entity.ScanResult, error) {
	if len(walletAddresses) == 0 {
		return nil, fmt.Errorf("no wallet addresses given")
	}
	started := time.Now()
	defer func() { metrics.ScanDuration.Observe(time.Since(started).Seconds()) }()

	s.logger.Debug("Starting scan", "wallet_count", len(walletAddresses))

	results := make([]entity.WalletResult, len(walletAddresses))
	errsByWallet := make([][]entity.ScanError, len(walletAddresses))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, s.maxConcurrentRoutines)
	for i, address := range walletAddresses {
		wg.Add(1)
		semaphore <- struct{}{}
		go func(idx int, walletAddress string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			results[idx], errsByWallet[idx] = s.scanWallet(ctx, walletAddress)
		}(i, address)
	}
	wg.Wait()

	scanResult := &entity.ScanResult{
		Wallets:       results,
		TotalValueUSD: decimal.Zero,
	}
	for i := range results {
		scanResult.TotalValueUSD = scanResult.TotalValueUSD.Add(results[i].TotalValueUSD)
		scanResult.Errors = append(scanResult.Errors, errsByWallet[i]...)
	}
	if len(walletAddresses) > 1 {
		scanResult.Combined = s.aggregator.Combine(results)
	}

	metrics.WalletsScanned.Add(float64(len(walletAddresses)))
	s.logger.Info("Scan finished",
		"wallet_count", len(walletAddresses),
		"total_value_usd", scanResult.TotalValueUSD,
		"error_count", len(scanResult.Errors))
	return scanResult, nil
}

// scanWallet discovers and values a single wallet's holdings.
func (s *ScanServiceImpl) scanWallet(ctx context.Context, walletAddress string) (entity.WalletResult, []entity.ScanError) {
	result := entity.WalletResult{
		Address:       walletAddress,
		Tokens:        []entity.TokenQuote{},
		TotalValueUSD: decimal.Zero,
	}

	discovered, err := s.discovery.DiscoverTokens(ctx, walletAddress)
	if err != nil {
		s.logger.Error("Token discovery failed for wallet", "wallet", walletAddress, "error", err)
		return result, []entity.ScanError{{
			WalletAddress: walletAddress,
			Message:       fmt.Sprintf("token discovery failed: %v", err),
		}}
	}

	var scanErrs []entity.ScanError
	for _, token := range discovered {
		if token.RawBalance == nil || token.RawBalance.Sign() == 0 {
			continue
		}

		if token.IsLPToken {
			if position := s.lpAnalyzer.AnalyzeLPPosition(ctx, token.Address, token.RawBalance, walletAddress); position != nil {
				result.LPPositions = append(result.LPPositions, *position)
				result.TotalValueUSD = result.TotalValueUSD.Add(position.ValueUSD)
				continue
			}
			scanErrs = append(scanErrs, entity.ScanError{
				WalletAddress: walletAddress,
				TokenAddress:  token.Address,
				TokenSymbol:   token.Symbol,
				Message:       "LP position could not be valued, kept as unpriced holding",
			})
			// Fall through: the holding stays visible as an unpriced entry.
		}

		result.Tokens = append(result.Tokens, s.quoteToken(ctx, token))
	}

	for i := range result.Tokens {
		result.TotalValueUSD = result.TotalValueUSD.Add(result.Tokens[i].ValueUSD)
	}
	sort.SliceStable(result.Tokens, func(i, j int) bool {
		return result.Tokens[i].ValueUSD.GreaterThan(result.Tokens[j].ValueUSD)
	})

	s.logger.Debug("Scanned wallet",
		"wallet", walletAddress,
		"token_count", len(result.Tokens),
		"lp_count", len(result.LPPositions),
		"total_value_usd", result.TotalValueUSD)
	return result, scanErrs
}

// quoteToken builds the valuation entry for one plain token holding.
func (s *ScanServiceImpl) quoteToken(ctx context.Context, token entity.DiscoveredToken) entity.TokenQuote {
	var priceResult entity.TokenPriceResult
	if strings.EqualFold(token.Address, s.wrappedNative) {
		// The wrapped native token has no pair against itself; its price
		// comes straight from the reference resolver.
		priceResult = entity.TokenPriceResult{
			PriceUSD: s.reference.ResolveReferencePrice(ctx),
			HasPrice: true,
		}
	} else {
		priceResult = s.tokenPrices.ResolveTokenPrice(ctx, token.Address, token.Decimals)
	}

	balanceFormatted := utils.ToDecimal(token.RawBalance, token.Decimals)
	return entity.TokenQuote{
		Address:           token.Address,
		Symbol:            token.Symbol,
		Name:              token.Name,
		Decimals:          token.Decimals,
		RawBalance:        token.RawBalance,
		RawBalanceString:  utils.BigIntString(token.RawBalance),
		BalanceFormatted:  balanceFormatted,
		PriceUSD:          priceResult.PriceUSD,
		ValueUSD:          balanceFormatted.Mul(priceResult.PriceUSD),
		HasPrice:          priceResult.HasPrice,
		LiquidityEstimate: priceResult.Liquidity,
	}
}
