package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ZeroAddress represents the EVM zero address, returned by factories for
// non-existent pairs.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// TokenQuote is a point-in-time valuation of one token held by one wallet.
// Quotes are immutable once produced; a refresh supersedes the quote, it is
// never mutated in place.
type TokenQuote struct {
	Address          string          `json:"address"`
	Symbol           string          `json:"symbol"`
	Name             string          `json:"name"`
	Decimals         uint8           `json:"decimals"`
	RawBalance       *big.Int        `json:"-"`
	RawBalanceString string          `json:"rawBalance"`
	BalanceFormatted decimal.Decimal `json:"balanceFormatted"`
	PriceUSD         decimal.Decimal `json:"priceUSD"`
	ValueUSD         decimal.Decimal `json:"valueUSD"`
	HasPrice         bool            `json:"hasPrice"`
	// LiquidityEstimate is the USD depth of the pool the price was read from,
	// counting both sides. Zero when HasPrice is false.
	LiquidityEstimate decimal.Decimal `json:"liquidityEstimate"`
}

// TokenPriceResult is the outcome of a single token price resolution.
// A failed resolution is the zero value with HasPrice false, never an error.
type TokenPriceResult struct {
	PriceUSD  decimal.Decimal
	HasPrice  bool
	Liquidity decimal.Decimal
}

// DiscoveredToken is one entry of a wallet's token holdings as reported by
// the external discovery API. Balances arrive raw; valuation happens later.
type DiscoveredToken struct {
	Address    string
	Symbol     string
	Name       string
	Decimals   uint8
	RawBalance *big.Int
	IsLPToken  bool
}

// TokenMetadata holds the on-chain ERC20 descriptor fields. Each field is
// read independently; a reverting call leaves the documented default in
// place (symbol/name "Unknown", 18 decimals).
type TokenMetadata struct {
	Symbol   string
	Name     string
	Decimals uint8
}
