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

// TokenPriceServiceImpl implements port.TokenPriceResolver. An arbitrary
// token is priced through its wrapped-native pair: the first factory
// (scanned oldest-first) that has a pair with nonzero reserves on both
// sides wins; later factories are only consulted when earlier ones have no
// pair at all.
type TokenPriceServiceImpl struct {
	chain              port.ChainReader
	reference          port.ReferencePriceResolver
	cache              *PriceCache
	logger             port.Logger
	wrappedNative      common.Address
	factories          []common.Address
	minNativeLiquidity decimal.Decimal
}

// NewTokenPriceService creates a new TokenPriceServiceImpl.
func NewTokenPriceService(
	chain port.ChainReader,
	reference port.ReferencePriceResolver,
	cache *PriceCache,
	l port.Logger,
	chainDef entity.ChainDefinition,
	minLiquidityFloorNative float64,
) port.TokenPriceResolver {
	factories := make([]common.Address, len(chainDef.FactoryAddresses))
	for i, addr := range chainDef.FactoryAddresses {
		factories[i] = common.HexToAddress(addr)
	}
	return &TokenPriceServiceImpl{
		chain:              chain,
		reference:          reference,
		cache:              cache,
		logger:             l,
		wrappedNative:      common.HexToAddress(chainDef.WrappedNativeAddress),
		factories:          factories,
		minNativeLiquidity: decimal.NewFromFloat(minLiquidityFloorNative),
	}
}

var unpriced = entity.TokenPriceResult{PriceUSD: decimal.Zero, HasPrice: false, Liquidity: decimal.Zero}

// ResolveTokenPrice returns a USD quote for the token, or the degraded
// zero result when no usable pair exists anywhere. Resolution failures are
// absorbed here; a token that cannot be priced never aborts a scan.
func (s *TokenPriceServiceImpl) ResolveTokenPrice(ctx context.Context, tokenAddress string, decimals uint8) entity.TokenPriceResult {
	if result, found := s.cache.GetTokenPrice(tokenAddress); found {
		metrics.PriceLookups.WithLabelValues("hit").Inc()
		return result
	}

	token := common.HexToAddress(tokenAddress)
	referencePrice := s.reference.ResolveReferencePrice(ctx)

	for _, factory := range s.factories {
		pair, err := s.chain.GetPair(ctx, factory, token, s.wrappedNative)
		if err != nil {
			s.logger.Warn("getPair failed during token price resolution",
				"factory", factory.Hex(), "token", tokenAddress, "error", err)
			continue
		}
		if pair == (common.Address{}) {
			continue
		}

		reserves, err := s.chain.GetReserves(ctx, pair)
		if err != nil {
			s.logger.Warn("getReserves failed during token price resolution",
				"pair", pair.Hex(), "token", tokenAddress, "error", err)
			continue
		}
		if reserves.Reserve0 == nil || reserves.Reserve1 == nil ||
			reserves.Reserve0.Sign() == 0 || reserves.Reserve1.Sign() == 0 {
			// Empty pair counts as no pair; the next factory may still have one.
			continue
		}

		token0, err := s.chain.Token0(ctx, pair)
		if err != nil {
			s.logger.Warn("token0 read failed during token price resolution",
				"pair", pair.Hex(), "token", tokenAddress, "error", err)
			continue
		}

		tokenReserve, nativeReserve := reserves.Reserve0, reserves.Reserve1
		if token0 == s.wrappedNative {
			tokenReserve, nativeReserve = nativeReserve, tokenReserve
		}

		tokenAmount := utils.ToDecimal(tokenReserve, decimals)
		nativeAmount := utils.ToDecimal(nativeReserve, wrappedNativeDecimals)

		// Guards against near-empty pools producing meaningless prices.
		// A pair below the floor ends the search: factories are first-found,
		// not best-of.
		if nativeAmount.LessThan(s.minNativeLiquidity) {
			s.logger.Debug("Pair below native liquidity floor, token stays unpriced",
				"pair", pair.Hex(), "token", tokenAddress,
				"nativeAmount", nativeAmount, "floor", s.minNativeLiquidity)
			break
		}

		priceInNative := nativeAmount.Div(tokenAmount)
		result := entity.TokenPriceResult{
			PriceUSD:  priceInNative.Mul(referencePrice),
			HasPrice:  true,
			Liquidity: nativeAmount.Mul(referencePrice).Mul(two),
		}
		metrics.PriceLookups.WithLabelValues("resolved").Inc()
		s.cache.SetTokenPrice(tokenAddress, result)
		return result
	}

	metrics.PriceLookups.WithLabelValues("unpriced").Inc()
	return unpriced
}
