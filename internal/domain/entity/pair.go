package entity

import "math/big"

// PairReserves is a point-in-time read of an AMM pair contract. Reserves
// change every block, so these are never cached.
type PairReserves struct {
	PairAddress        string
	Token0             string
	Token1             string
	Reserve0           *big.Int
	Reserve1           *big.Int
	BlockTimestampLast uint32
}
