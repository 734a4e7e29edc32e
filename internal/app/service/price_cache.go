package service

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"pulse_tracker/internal/domain/entity"
)

const (
	referencePriceCacheKey = "native_usd"
	tokenPriceKeyPrefix    = "token:"
)

// PriceCache stores resolved prices with per-entry TTLs. Two entry classes
// coexist: the wrapped-native reference price under a fixed key with a short
// TTL, and per-token quotes keyed by lower-cased address with a longer TTL.
// The reference price is consulted far more often and must track market
// movement more tightly.
//
// Entries are replaced wholesale on refresh, never mutated in place, and the
// background janitor sweeps expired entries. A miss is not an error; callers
// compute and populate.
type PriceCache struct {
	store        *gocache.Cache
	referenceTTL time.Duration
	tokenTTL     time.Duration
}

// NewPriceCache creates a cache with the two TTL classes and a background
// sweep at the given interval.
func NewPriceCache(referenceTTL, tokenTTL, sweepInterval time.Duration) *PriceCache {
	return &PriceCache{
		store:        gocache.New(gocache.NoExpiration, sweepInterval),
		referenceTTL: referenceTTL,
		tokenTTL:     tokenTTL,
	}
}

// GetReferencePrice returns the cached wrapped-native USD price, if fresh.
func (c *PriceCache) GetReferencePrice() (decimal.Decimal, bool) {
	if cached, found := c.store.Get(referencePriceCacheKey); found {
		if price, ok := cached.(decimal.Decimal); ok {
			return price, true
		}
	}
	return decimal.Zero, false
}

// SetReferencePrice caches the wrapped-native USD price under the short TTL.
func (c *PriceCache) SetReferencePrice(price decimal.Decimal) {
	c.store.Set(referencePriceCacheKey, price, c.referenceTTL)
}

// GetTokenPrice returns the cached quote for a token address, if fresh.
func (c *PriceCache) GetTokenPrice(tokenAddress string) (entity.TokenPriceResult, bool) {
	if cached, found := c.store.Get(tokenPriceKey(tokenAddress)); found {
		if result, ok := cached.(entity.TokenPriceResult); ok {
			return result, true
		}
	}
	return entity.TokenPriceResult{}, false
}

// SetTokenPrice caches a token quote under the longer TTL.
func (c *PriceCache) SetTokenPrice(tokenAddress string, result entity.TokenPriceResult) {
	c.store.Set(tokenPriceKey(tokenAddress), result, c.tokenTTL)
}

func tokenPriceKey(tokenAddress string) string {
	return tokenPriceKeyPrefix + strings.ToLower(tokenAddress)
}
