package port

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"pulse_tracker/internal/domain/entity"
)

// ReferencePriceResolver discovers the USD price of the chain's wrapped
// native token. It never fails: when no usable stablecoin pair exists it
// returns a configured fallback constant.
type ReferencePriceResolver interface {
	ResolveReferencePrice(ctx context.Context) decimal.Decimal
}

// TokenPriceResolver discovers a USD price for an arbitrary token via its
// wrapped-native pair. A token with no usable pair yields the zero result
// with HasPrice false; resolution never raises an error to the caller.
type TokenPriceResolver interface {
	ResolveTokenPrice(ctx context.Context, tokenAddress string, decimals uint8) entity.TokenPriceResult
}

// LPAnalyzer decomposes an LP token balance into the holder's pool share
// and underlying asset amounts. Nil means the position could not be valued
// (zero balance, degenerate pool, or a failed read); callers skip it and
// keep the raw token entry unvalued.
type LPAnalyzer interface {
	AnalyzeLPPosition(ctx context.Context, lpTokenAddress string, holderBalance *big.Int, holderAddress string) *entity.LPPosition
}

// TokenDiscovery lists the token holdings of a wallet. The engine does not
// own discovery transport; implementations wrap external balance APIs.
type TokenDiscovery interface {
	DiscoverTokens(ctx context.Context, walletAddress string) ([]entity.DiscoveredToken, error)
}
