package utils

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToDecimal converts a raw integer token amount into its human denomination
// by shifting the decimal point left. The conversion is exact; no float is
// involved.
// Example: amount=1234500000000000000, decimals=18 => 1.2345
func ToDecimal(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// BigIntString renders a raw balance for the JSON boundary. Integer balances
// cross the boundary as decimal strings, never as floating-point numbers.
func BigIntString(amount *big.Int) string {
	if amount == nil {
		return "0"
	}
	return amount.String()
}
