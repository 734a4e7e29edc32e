package port

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"pulse_tracker/internal/domain/entity"
)

// ProviderSelector hands out RPC clients from a fixed endpoint list.
// The reference implementation is pure round-robin with no liveness
// tracking; a failed call propagates to the caller, who may simply retry
// and receive the next endpoint.
type ProviderSelector interface {
	Next() *ethclient.Client
}

// ChainReader is the minimal read-only contract-call surface the valuation
// engine needs. Implementations are specific to chain families (EVM here).
type ChainReader interface {
	// GetPair asks an AMM factory for the pair of two tokens. The zero
	// address means the pair does not exist; that is not an error.
	GetPair(ctx context.Context, factory, tokenA, tokenB common.Address) (common.Address, error)

	// GetReserves reads a pair's current reserves and last block timestamp.
	GetReserves(ctx context.Context, pair common.Address) (entity.PairReserves, error)

	// Token0 returns the pair's canonical first token, used to orient
	// reserve0/reserve1 against the tokens the caller asked about.
	Token0(ctx context.Context, pair common.Address) (common.Address, error)

	Token1(ctx context.Context, pair common.Address) (common.Address, error)

	TotalSupply(ctx context.Context, token common.Address) (*big.Int, error)

	BalanceOf(ctx context.Context, token, holder common.Address) (*big.Int, error)

	// TokenMetadata reads symbol, name and decimals. Each call is
	// independently fallible: a reverting field keeps its sentinel default
	// ("Unknown", 18 decimals) and never fails the whole read.
	TokenMetadata(ctx context.Context, token common.Address) entity.TokenMetadata

	// LPSnapshot reads token0, token1, reserves, totalSupply and the
	// holder's balance from an LP contract in a single batched round trip.
	LPSnapshot(ctx context.Context, pair, holder common.Address) (LPSnapshot, error)
}

// LPSnapshot is the one-round-trip state read of an LP contract used by the
// position analyzer.
type LPSnapshot struct {
	Token0        common.Address
	Token1        common.Address
	Reserves      entity.PairReserves
	TotalSupply   *big.Int
	HolderBalance *big.Int
}
