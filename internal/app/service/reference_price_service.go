package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"pulse_tracker/internal/app/port"
	"pulse_tracker/internal/domain/entity"
	"pulse_tracker/internal/pkg/metrics"
	"pulse_tracker/internal/pkg/utils"
)

const wrappedNativeDecimals = uint8(18)

var two = decimal.NewFromInt(2)

// ReferencePriceServiceImpl implements port.ReferencePriceResolver by
// scanning every factory x stablecoin combination for a wrapped-native pair
// and keeping the quote backed by the deepest stablecoin reserve.
type ReferencePriceServiceImpl struct {
	chain         port.ChainReader
	cache         *PriceCache
	logger        port.Logger
	wrappedNative common.Address
	factories     []common.Address
	stablecoins   []entity.StablecoinDefinition
	fallbackPrice decimal.Decimal
}

// NewReferencePriceService creates a new ReferencePriceServiceImpl.
func NewReferencePriceService(
	chain port.ChainReader,
	cache *PriceCache,
	l port.Logger,
	chainDef entity.ChainDefinition,
	fallbackPriceUSD float64,
) port.ReferencePriceResolver {
	factories := make([]common.Address, len(chainDef.FactoryAddresses))
	for i, addr := range chainDef.FactoryAddresses {
		factories[i] = common.HexToAddress(addr)
	}
	return &ReferencePriceServiceImpl{
		chain:         chain,
		cache:         cache,
		logger:        l,
		wrappedNative: common.HexToAddress(chainDef.WrappedNativeAddress),
		factories:     factories,
		stablecoins:   chainDef.Stablecoins,
		fallbackPrice: decimal.NewFromFloat(fallbackPriceUSD),
	}
}

// ResolveReferencePrice returns the USD price of the wrapped native token.
// Every factory x stablecoin combination is evaluated (no short-circuit):
// the selection rule is best-of-liquidity, which requires seeing every
// candidate. When nothing usable is found the configured fallback constant
// is returned so the overall scan never blocks on the reference price.
func (s *ReferencePriceServiceImpl) ResolveReferencePrice(ctx context.Context) decimal.Decimal {
	if price, found := s.cache.GetReferencePrice(); found {
		metrics.ReferencePriceLookups.WithLabelValues("hit").Inc()
		return price
	}

	bestPrice := decimal.Zero
	bestLiquidity := decimal.Zero
	var bestStable string

	for _, factory := range s.factories {
		for _, stable := range s.stablecoins {
			price, liquidity, ok := s.quoteAgainstStable(ctx, factory, stable)
			if !ok {
				continue
			}
			if liquidity.GreaterThan(bestLiquidity) {
				bestPrice = price
				bestLiquidity = liquidity
				bestStable = stable.Symbol
			}
		}
	}

	if !bestLiquidity.IsPositive() {
		s.logger.Warn("No usable stablecoin pair for wrapped native token, using fallback price",
			"fallback", s.fallbackPrice)
		metrics.ReferencePriceLookups.WithLabelValues("fallback").Inc()
		return s.fallbackPrice
	}

	s.logger.Debug("Resolved reference price",
		"price", bestPrice, "liquidity", bestLiquidity, "stablecoin", bestStable)
	metrics.ReferencePriceLookups.WithLabelValues("resolved").Inc()
	s.cache.SetReferencePrice(bestPrice)
	return bestPrice
}

// quoteAgainstStable prices the wrapped native token against one stablecoin
// on one factory. ok is false when the pair does not exist or cannot yield
// a positive quote; that is not an error, the next candidate is tried.
func (s *ReferencePriceServiceImpl) quoteAgainstStable(
	ctx context.Context,
	factory common.Address,
	stable entity.StablecoinDefinition,
) (price, liquidity decimal.Decimal, ok bool) {
	stableAddr := common.HexToAddress(stable.Address)

	pair, err := s.chain.GetPair(ctx, factory, s.wrappedNative, stableAddr)
	if err != nil {
		s.logger.Warn("getPair failed for stablecoin candidate",
			"factory", factory.Hex(), "stablecoin", stable.Symbol, "error", err)
		return decimal.Zero, decimal.Zero, false
	}
	if pair == (common.Address{}) {
		return decimal.Zero, decimal.Zero, false
	}

	reserves, err := s.chain.GetReserves(ctx, pair)
	if err != nil {
		s.logger.Warn("getReserves failed for stablecoin pair",
			"pair", pair.Hex(), "stablecoin", stable.Symbol, "error", err)
		return decimal.Zero, decimal.Zero, false
	}
	token0, err := s.chain.Token0(ctx, pair)
	if err != nil {
		s.logger.Warn("token0 read failed for stablecoin pair",
			"pair", pair.Hex(), "stablecoin", stable.Symbol, "error", err)
		return decimal.Zero, decimal.Zero, false
	}

	nativeReserve, stableReserve := reserves.Reserve0, reserves.Reserve1
	if token0 != s.wrappedNative {
		nativeReserve, stableReserve = stableReserve, nativeReserve
	}

	// Stablecoin decimals vary per coin (6 for bridged USDC/USDT, 18 for
	// DAI), so the stable side is normalized with the candidate's own count.
	nativeAmount := utils.ToDecimal(nativeReserve, wrappedNativeDecimals)
	stableAmount := utils.ToDecimal(stableReserve, stable.Decimals)
	if !nativeAmount.IsPositive() {
		return decimal.Zero, decimal.Zero, false
	}

	// Both sides valued, treating the stable side as ground truth.
	return stableAmount.Div(nativeAmount), stableAmount.Mul(two), true
}
