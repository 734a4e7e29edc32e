package entity

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// WalletResult is one wallet's normalized scan output: plain token quotes
// plus decomposed LP positions, with the wallet's total USD value.
type WalletResult struct {
	Address       string          `json:"address"`
	Label         string          `json:"label,omitempty"`
	Tokens        []TokenQuote    `json:"tokens"`
	LPPositions   []LPPosition    `json:"lpPositions,omitempty"`
	TotalValueUSD decimal.Decimal `json:"totalValueUSD"`
}

// WalletShare is one wallet's contribution to a CombinedToken.
type WalletShare struct {
	WalletLabel string          `json:"walletLabel"`
	Amount      decimal.Decimal `json:"amount"`
	ValueUSD    decimal.Decimal `json:"valueUSD"`
}

// CombinedLPData accumulates LP decompositions of the same pool across
// wallets. TotalSharePercent is the arithmetic sum of each wallet's share
// and can exceed 100 when several wallets hold positions in the same pool.
type CombinedLPData struct {
	Token0Symbol      string          `json:"token0Symbol"`
	Token1Symbol      string          `json:"token1Symbol"`
	Token0Amount      decimal.Decimal `json:"token0Amount"`
	Token1Amount      decimal.Decimal `json:"token1Amount"`
	Token0ValueUSD    decimal.Decimal `json:"token0ValueUSD"`
	Token1ValueUSD    decimal.Decimal `json:"token1ValueUSD"`
	TotalSharePercent decimal.Decimal `json:"totalSharePercent"`
}

// CombinedToken is one token aggregated across all wallets of a multi-wallet
// scan, keyed by lower-cased token address. Raw balances are summed with
// big.Int so large integer balances never lose precision.
type CombinedToken struct {
	Address               string          `json:"address"`
	Symbol                string          `json:"symbol"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	TotalRawBalance       *big.Int        `json:"-"`
	TotalRawBalanceString string          `json:"totalRawBalance"`
	TotalValueUSD         decimal.Decimal `json:"totalValueUSD"`
	WalletCount           int             `json:"walletCount"`
	PerWalletBreakdown    []WalletShare   `json:"perWalletBreakdown"`
	CombinedLPData        *CombinedLPData `json:"combinedLPData,omitempty"`
}

// ScanResult is the full outcome of a scan request. Combined is populated
// only when more than one address was scanned.
type ScanResult struct {
	Wallets       []WalletResult  `json:"wallets"`
	Combined      []CombinedToken `json:"combined,omitempty"`
	TotalValueUSD decimal.Decimal `json:"totalValueUSD"`
	Errors        []ScanError     `json:"errors,omitempty"`
}
