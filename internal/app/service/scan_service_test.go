package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"pulse_tracker/internal/domain/entity"
)

const (
	walletOne = "0x9999999999999999999999999999999999999901"
	walletTwo = "0x9999999999999999999999999999999999999902"
)

// stubLPAnalyzer returns a canned position per LP token address.
type stubLPAnalyzer struct {
	positions map[string]*entity.LPPosition
}

func (s stubLPAnalyzer) AnalyzeLPPosition(_ context.Context, lpTokenAddress string, _ *big.Int, _ string) *entity.LPPosition {
	return s.positions[strings.ToLower(lpTokenAddress)]
}

func newScanService(discovery stubDiscovery, prices map[string]decimal.Decimal, lpAnalyzer stubLPAnalyzer) *ScanServiceImpl {
	svc := NewScanService(
		discovery,
		stubTokenPrices{prices: prices},
		stubReference{price: decimal.RequireFromString("0.00003")},
		lpAnalyzer,
		NewAggregatorService(nopLogger{}),
		nopLogger{},
		addrWPLS.Hex(),
		4,
	)
	return svc.(*ScanServiceImpl)
}

func TestScan_RejectsEmptyInput(t *testing.T) {
	svc := newScanService(stubDiscovery{}, nil, stubLPAnalyzer{})
	result, err := svc.Scan(context.Background(), nil)
	require.Error(t, err)
	require.Nil(t, result)
}

func TestScan_ValuesDiscoveredTokens(t *testing.T) {
	discovery := stubDiscovery{tokens: map[string][]entity.DiscoveredToken{
		strings.ToLower(walletOne): {
			{Address: addrTKN.Hex(), Symbol: "TKN", Decimals: 18, RawBalance: units(10, 18)},
			{Address: addrDAI.Hex(), Symbol: "DAI", Decimals: 18, RawBalance: units(3, 18)},
			{Address: "0xdead00000000000000000000000000000000dead", Symbol: "DUST", Decimals: 18, RawBalance: big.NewInt(0)},
		},
	}}
	svc := newScanService(discovery, map[string]decimal.Decimal{
		strings.ToLower(addrTKN.Hex()): decimal.NewFromInt(2),
		strings.ToLower(addrDAI.Hex()): decimal.NewFromInt(1),
	}, stubLPAnalyzer{})

	result, err := svc.Scan(context.Background(), []string{walletOne})
	require.NoError(t, err)
	require.Len(t, result.Wallets, 1)
	require.Empty(t, result.Errors)

	wallet := result.Wallets[0]
	// Zero balances are dropped before any pricing round trip.
	require.Len(t, wallet.Tokens, 2)
	// Tokens come back ordered by descending value: 10 TKN at 2 first.
	require.Equal(t, "TKN", wallet.Tokens[0].Symbol)
	require.True(t, wallet.Tokens[0].ValueUSD.Equal(decimal.NewFromInt(20)))
	require.Equal(t, "DAI", wallet.Tokens[1].Symbol)
	require.True(t, wallet.TotalValueUSD.Equal(decimal.NewFromInt(23)))
	require.True(t, result.TotalValueUSD.Equal(decimal.NewFromInt(23)))

	// Single wallet scans do not produce a combined section.
	require.Nil(t, result.Combined)
}

func TestScan_WrappedNativeUsesReferencePrice(t *testing.T) {
	discovery := stubDiscovery{tokens: map[string][]entity.DiscoveredToken{
		strings.ToLower(walletOne): {
			// Mixed-case address must still match the wrapped native token.
			{Address: strings.ToLower(addrWPLS.Hex()), Symbol: "WPLS", Decimals: 18, RawBalance: units(1_000_000, 18)},
		},
	}}
	svc := newScanService(discovery, nil, stubLPAnalyzer{})

	result, err := svc.Scan(context.Background(), []string{walletOne})
	require.NoError(t, err)
	wallet := result.Wallets[0]
	require.Len(t, wallet.Tokens, 1)
	require.True(t, wallet.Tokens[0].HasPrice)
	require.True(t, wallet.Tokens[0].PriceUSD.Equal(decimal.RequireFromString("0.00003")))
	require.True(t, wallet.TotalValueUSD.Equal(decimal.NewFromInt(30)))
}

func TestScan_LPTokensRoutedToAnalyzer(t *testing.T) {
	lpAddr := addrLP.Hex()
	position := &entity.LPPosition{
		TokenQuote: entity.TokenQuote{
			Address:          lpAddr,
			Symbol:           "PLP",
			Decimals:         18,
			RawBalance:       units(50, 18),
			BalanceFormatted: decimal.NewFromInt(50),
			ValueUSD:         decimal.NewFromInt(40),
			HasPrice:         true,
		},
		UserSharePercent: decimal.NewFromInt(5),
	}
	discovery := stubDiscovery{tokens: map[string][]entity.DiscoveredToken{
		strings.ToLower(walletOne): {
			{Address: lpAddr, Symbol: "PLP", Decimals: 18, RawBalance: units(50, 18), IsLPToken: true},
		},
	}}
	svc := newScanService(discovery, nil, stubLPAnalyzer{positions: map[string]*entity.LPPosition{
		strings.ToLower(lpAddr): position,
	}})

	result, err := svc.Scan(context.Background(), []string{walletOne})
	require.NoError(t, err)
	wallet := result.Wallets[0]
	require.Len(t, wallet.LPPositions, 1)
	require.Empty(t, wallet.Tokens)
	require.True(t, wallet.TotalValueUSD.Equal(decimal.NewFromInt(40)))
}

func TestScan_UnvaluedLPFallsThroughAsToken(t *testing.T) {
	lpAddr := addrLP.Hex()
	discovery := stubDiscovery{tokens: map[string][]entity.DiscoveredToken{
		strings.ToLower(walletOne): {
			{Address: lpAddr, Symbol: "PLP", Decimals: 18, RawBalance: units(50, 18), IsLPToken: true},
		},
	}}
	svc := newScanService(discovery, nil, stubLPAnalyzer{})

	result, err := svc.Scan(context.Background(), []string{walletOne})
	require.NoError(t, err)
	wallet := result.Wallets[0]
	require.Empty(t, wallet.LPPositions)
	// The holding stays visible, unpriced, and the failure is reported.
	require.Len(t, wallet.Tokens, 1)
	require.False(t, wallet.Tokens[0].HasPrice)
	require.Len(t, result.Errors, 1)
	require.Equal(t, lpAddr, result.Errors[0].TokenAddress)
}

func TestScan_DiscoveryFailureIsPerWallet(t *testing.T) {
	discovery := stubDiscovery{err: fmt.Errorf("scan API unavailable")}
	svc := newScanService(discovery, nil, stubLPAnalyzer{})

	result, err := svc.Scan(context.Background(), []string{walletOne, walletTwo})
	require.NoError(t, err)
	require.Len(t, result.Wallets, 2)
	require.Len(t, result.Errors, 2)
	require.True(t, result.TotalValueUSD.IsZero())
	for _, scanErr := range result.Errors {
		require.Contains(t, scanErr.Message, "token discovery failed")
	}
}

func TestScan_CombinedOnlyForMultipleWallets(t *testing.T) {
	discovery := stubDiscovery{tokens: map[string][]entity.DiscoveredToken{
		strings.ToLower(walletOne): {
			{Address: addrTKN.Hex(), Symbol: "TKN", Decimals: 18, RawBalance: units(10, 18)},
		},
		strings.ToLower(walletTwo): {
			{Address: addrTKN.Hex(), Symbol: "TKN", Decimals: 18, RawBalance: units(5, 18)},
		},
	}}
	prices := map[string]decimal.Decimal{strings.ToLower(addrTKN.Hex()): decimal.NewFromInt(2)}
	svc := newScanService(discovery, prices, stubLPAnalyzer{})

	result, err := svc.Scan(context.Background(), []string{walletOne, walletTwo})
	require.NoError(t, err)
	require.Len(t, result.Combined, 1)
	require.Equal(t, 2, result.Combined[0].WalletCount)
	require.True(t, result.Combined[0].TotalAmount.Equal(decimal.NewFromInt(15)))
	require.True(t, result.TotalValueUSD.Equal(decimal.NewFromInt(30)))

	// Wallet order in the result matches the request order even though the
	// scans run concurrently.
	require.Equal(t, walletOne, result.Wallets[0].Address)
	require.Equal(t, walletTwo, result.Wallets[1].Address)
}
