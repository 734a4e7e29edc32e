package service

import (
	"math/big"
	"sort"
	"strings"

	"pulse_tracker/internal/app/port"
	"pulse_tracker/internal/domain/entity"
	"pulse_tracker/internal/pkg/utils"
)

// AggregatorServiceImpl merges per-wallet scan results into one
// de-duplicated portfolio. It is a pure fold over the wallet sequence:
// no shared state, no intermediate suspended states.
type AggregatorServiceImpl struct {
	logger port.Logger
}

// NewAggregatorService creates a new AggregatorServiceImpl.
func NewAggregatorService(l port.Logger) *AggregatorServiceImpl {
	return &AggregatorServiceImpl{logger: l}
}

// Combine folds every wallet's tokens and LP positions into CombinedTokens
// keyed by lower-cased address. Raw balances are summed with big.Int so
// integer precision is never lost to floating point; formatted amounts and
// values use exact decimal arithmetic. The result is sorted by descending
// total USD value.
//
// For LP entries each wallet's share percent is added, not renormalized
// against a combined total supply, so the sum can exceed 100 when several
// wallets hold separate positions in the same pool.
func (s *AggregatorServiceImpl) Combine(wallets []entity.WalletResult) []entity.CombinedToken {
	combined := make(map[string]*entity.CombinedToken)
	var order []string

	for _, wallet := range wallets {
		label := wallet.Label
		if label == "" {
			label = wallet.Address
		}
		for _, token := range wallet.Tokens {
			s.fold(combined, &order, label, token, nil)
		}
		for _, position := range wallet.LPPositions {
			s.fold(combined, &order, label, position.TokenQuote, &entity.CombinedLPData{
				Token0Symbol:      position.Token0.Symbol,
				Token1Symbol:      position.Token1.Symbol,
				Token0Amount:      position.Token0.Amount,
				Token1Amount:      position.Token1.Amount,
				Token0ValueUSD:    position.Token0.ValueUSD,
				Token1ValueUSD:    position.Token1.ValueUSD,
				TotalSharePercent: position.UserSharePercent,
			})
		}
	}

	result := make([]entity.CombinedToken, 0, len(order))
	for _, key := range order {
		token := combined[key]
		token.TotalRawBalanceString = utils.BigIntString(token.TotalRawBalance)
		result = append(result, *token)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalValueUSD.GreaterThan(result[j].TotalValueUSD)
	})
	return result
}

func (s *AggregatorServiceImpl) fold(
	combined map[string]*entity.CombinedToken,
	order *[]string,
	walletLabel string,
	quote entity.TokenQuote,
	lpData *entity.CombinedLPData,
) {
	key := strings.ToLower(quote.Address)
	share := entity.WalletShare{
		WalletLabel: walletLabel,
		Amount:      quote.BalanceFormatted,
		ValueUSD:    quote.ValueUSD,
	}

	existing, found := combined[key]
	if !found {
		raw := big.NewInt(0)
		if quote.RawBalance != nil {
			raw = new(big.Int).Set(quote.RawBalance)
		}
		combined[key] = &entity.CombinedToken{
			Address:            quote.Address,
			Symbol:             quote.Symbol,
			TotalAmount:        quote.BalanceFormatted,
			TotalRawBalance:    raw,
			TotalValueUSD:      quote.ValueUSD,
			WalletCount:        1,
			PerWalletBreakdown: []entity.WalletShare{share},
			CombinedLPData:     lpData,
		}
		*order = append(*order, key)
		return
	}

	if quote.RawBalance != nil {
		existing.TotalRawBalance.Add(existing.TotalRawBalance, quote.RawBalance)
	}
	existing.TotalAmount = existing.TotalAmount.Add(quote.BalanceFormatted)
	existing.TotalValueUSD = existing.TotalValueUSD.Add(quote.ValueUSD)
	existing.WalletCount++
	existing.PerWalletBreakdown = append(existing.PerWalletBreakdown, share)

	if lpData == nil {
		return
	}
	if existing.CombinedLPData == nil {
		existing.CombinedLPData = lpData
		return
	}

	accumulated := existing.CombinedLPData
	accumulated.Token0Amount = accumulated.Token0Amount.Add(lpData.Token0Amount)
	accumulated.Token1Amount = accumulated.Token1Amount.Add(lpData.Token1Amount)
	accumulated.Token0ValueUSD = accumulated.Token0ValueUSD.Add(lpData.Token0ValueUSD)
	accumulated.Token1ValueUSD = accumulated.Token1ValueUSD.Add(lpData.Token1ValueUSD)
	accumulated.TotalSharePercent = accumulated.TotalSharePercent.Add(lpData.TotalSharePercent)
}
