package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"pulse_tracker/internal/app/port"
	"pulse_tracker/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakePair is one synthetic AMM pair registered on a fakeChainReader.
type fakePair struct {
	address  common.Address
	token0   common.Address
	token1   common.Address
	reserve0 *big.Int
	reserve1 *big.Int
}

// fakeChainReader serves synthetic pairs and LP snapshots and records the
// factories consulted by getPair, in order.
type fakeChainReader struct {
	pairs        map[string]*fakePair // keyed by factory|tokenA|tokenB
	snapshots    map[common.Address]port.LPSnapshot
	snapshotErrs map[common.Address]error
	metadata     map[common.Address]entity.TokenMetadata
	getPairCalls []common.Address
}

func newFakeChainReader() *fakeChainReader {
	return &fakeChainReader{
		pairs:        make(map[string]*fakePair),
		snapshots:    make(map[common.Address]port.LPSnapshot),
		snapshotErrs: make(map[common.Address]error),
		metadata:     make(map[common.Address]entity.TokenMetadata),
	}
}

func pairKey(factory, tokenA, tokenB common.Address) string {
	return factory.Hex() + "|" + tokenA.Hex() + "|" + tokenB.Hex()
}

func (f *fakeChainReader) addPair(factory common.Address, pair *fakePair) {
	f.pairs[pairKey(factory, pair.token0, pair.token1)] = pair
}

func (f *fakeChainReader) GetPair(_ context.Context, factory, tokenA, tokenB common.Address) (common.Address, error) {
	f.getPairCalls = append(f.getPairCalls, factory)
	if pair, ok := f.pairs[pairKey(factory, tokenA, tokenB)]; ok {
		return pair.address, nil
	}
	if pair, ok := f.pairs[pairKey(factory, tokenB, tokenA)]; ok {
		return pair.address, nil
	}
	return common.Address{}, nil
}

func (f *fakeChainReader) findPair(pair common.Address) (*fakePair, error) {
	for _, candidate := range f.pairs {
		if candidate.address == pair {
			return candidate, nil
		}
	}
	return nil, fmt.Errorf("unknown pair %s", pair.Hex())
}

func (f *fakeChainReader) GetReserves(_ context.Context, pair common.Address) (entity.PairReserves, error) {
	found, err := f.findPair(pair)
	if err != nil {
		return entity.PairReserves{}, err
	}
	return entity.PairReserves{
		PairAddress: pair.Hex(),
		Token0:      found.token0.Hex(),
		Token1:      found.token1.Hex(),
		Reserve0:    found.reserve0,
		Reserve1:    found.reserve1,
	}, nil
}

func (f *fakeChainReader) Token0(_ context.Context, pair common.Address) (common.Address, error) {
	found, err := f.findPair(pair)
	if err != nil {
		return common.Address{}, err
	}
	return found.token0, nil
}

func (f *fakeChainReader) Token1(_ context.Context, pair common.Address) (common.Address, error) {
	found, err := f.findPair(pair)
	if err != nil {
		return common.Address{}, err
	}
	return found.token1, nil
}

func (f *fakeChainReader) TotalSupply(_ context.Context, token common.Address) (*big.Int, error) {
	if snapshot, ok := f.snapshots[token]; ok {
		return snapshot.TotalSupply, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeChainReader) BalanceOf(_ context.Context, token, _ common.Address) (*big.Int, error) {
	if snapshot, ok := f.snapshots[token]; ok {
		return snapshot.HolderBalance, nil
	}
	return big.NewInt(0), nil
}

func (f *fakeChainReader) TokenMetadata(_ context.Context, token common.Address) entity.TokenMetadata {
	if meta, ok := f.metadata[token]; ok {
		return meta
	}
	return entity.TokenMetadata{Symbol: "Unknown", Name: "Unknown", Decimals: 18}
}

func (f *fakeChainReader) LPSnapshot(_ context.Context, pair, _ common.Address) (port.LPSnapshot, error) {
	if err, ok := f.snapshotErrs[pair]; ok {
		return port.LPSnapshot{}, err
	}
	if snapshot, ok := f.snapshots[pair]; ok {
		return snapshot, nil
	}
	return port.LPSnapshot{}, fmt.Errorf("unknown LP contract %s", pair.Hex())
}

// stubReference returns a fixed reference price.
type stubReference struct {
	price decimal.Decimal
}

func (s stubReference) ResolveReferencePrice(context.Context) decimal.Decimal {
	return s.price
}

// stubTokenPrices serves fixed per-token USD prices.
type stubTokenPrices struct {
	prices map[string]decimal.Decimal
}

func (s stubTokenPrices) ResolveTokenPrice(_ context.Context, tokenAddress string, _ uint8) entity.TokenPriceResult {
	if price, ok := s.prices[strings.ToLower(tokenAddress)]; ok {
		return entity.TokenPriceResult{PriceUSD: price, HasPrice: true, Liquidity: decimal.NewFromInt(1)}
	}
	return entity.TokenPriceResult{}
}

// stubDiscovery serves fixed token lists per wallet.
type stubDiscovery struct {
	tokens map[string][]entity.DiscoveredToken
	err    error
}

func (s stubDiscovery) DiscoverTokens(_ context.Context, walletAddress string) ([]entity.DiscoveredToken, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tokens[strings.ToLower(walletAddress)], nil
}

// units scales n by 10^decimals, for building raw reserve fixtures.
func units(n int64, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Mul(big.NewInt(n), scale)
}

var (
	addrWPLS = common.HexToAddress("0xA1077a294dDE1B09bB078844df40758a5D0f9a27")
	addrDAI  = common.HexToAddress("0xefD766cCb38EaF1dfd701853BFCe31359239F305")
	addrUSDC = common.HexToAddress("0x15D38573d2feeb82e7ad5187aB8c1D52810B1f07")

	factoryV1 = common.HexToAddress("0x1111111111111111111111111111111111111111")
	factoryV2 = common.HexToAddress("0x2222222222222222222222222222222222222222")
	factoryV3 = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func testChainDef(factories ...common.Address) entity.ChainDefinition {
	factoryHexes := make([]string, len(factories))
	for i, factory := range factories {
		factoryHexes[i] = factory.Hex()
	}
	return entity.ChainDefinition{
		ChainID:              369,
		Name:                 "PulseChain",
		WrappedNativeAddress: addrWPLS.Hex(),
		WrappedNativeSymbol:  "WPLS",
		FactoryAddresses:     factoryHexes,
		Stablecoins: []entity.StablecoinDefinition{
			{Symbol: "DAI", Address: addrDAI.Hex(), Decimals: 18},
			{Symbol: "USDC", Address: addrUSDC.Hex(), Decimals: 6},
		},
	}
}

func testPriceCache() *PriceCache {
	return NewPriceCache(time.Minute, 5*time.Minute, time.Minute)
}
