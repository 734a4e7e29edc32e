package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// LPLeg is one underlying side of a decomposed LP position.
type LPLeg struct {
	Address  string          `json:"address"`
	Symbol   string          `json:"symbol"`
	Decimals uint8           `json:"decimals"`
	Amount   decimal.Decimal `json:"amount"`
	PriceUSD decimal.Decimal `json:"priceUSD"`
	ValueUSD decimal.Decimal `json:"valueUSD"`
}

// LPPosition is a TokenQuote for an LP token, extended with the holder's
// pool share and the decomposed underlying legs. LP tokens have no market
// price of their own: ValueUSD is always Token0.ValueUSD + Token1.ValueUSD,
// and PriceUSD is the synthetic value-per-LP-token derived from it.
type LPPosition struct {
	TokenQuote
	Token0            LPLeg           `json:"token0"`
	Token1            LPLeg           `json:"token1"`
	UserSharePercent  decimal.Decimal `json:"userSharePercent"`
	TotalSupply       *big.Int        `json:"-"`
	TotalSupplyString string          `json:"totalSupply"`
}
