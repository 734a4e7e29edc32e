package service

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"pulse_tracker/internal/app/port"
	"pulse_tracker/internal/domain/entity"
	"pulse_tracker/internal/pkg/metrics"
	"pulse_tracker/internal/pkg/utils"
)

var oneHundred = decimal.NewFromInt(100)

// LPServiceImpl implements port.LPAnalyzer: it decomposes an LP token
// balance into the holder's pool share and the underlying asset amounts,
// then values each leg in USD.
type LPServiceImpl struct {
	chain         port.ChainReader
	tokenPrices   port.TokenPriceResolver
	reference     port.ReferencePriceResolver
	logger        port.Logger
	wrappedNative common.Address
}

// NewLPService creates a new LPServiceImpl.
func NewLPService(
	chain port.ChainReader,
	tokenPrices port.TokenPriceResolver,
	reference port.ReferencePriceResolver,
	l port.Logger,
	wrappedNativeAddress string,
) port.LPAnalyzer {
	return &LPServiceImpl{
		chain:         chain,
		tokenPrices:   tokenPrices,
		reference:     reference,
		logger:        l,
		wrappedNative: common.HexToAddress(wrappedNativeAddress),
	}
}

// AnalyzeLPPosition values an LP token balance. Nil means the position is
// not reportable: the holder no longer participates in the pool, the pool
// is degenerate, or a read failed mid-sequence. Callers skip nil and keep
// the holder's raw token entry unvalued.
func (s *LPServiceImpl) AnalyzeLPPosition(ctx context.Context, lpTokenAddress string, holderBalance *big.Int, holderAddress string) *entity.LPPosition {
	position, err := s.analyze(ctx, lpTokenAddress, holderBalance, holderAddress)
	if err != nil {
		s.logger.Warn("LP position analysis failed, skipping position",
			"lpToken", lpTokenAddress, "holder", holderAddress, "error", err)
		metrics.LPAnalyses.WithLabelValues("failed").Inc()
		return nil
	}
	if position == nil {
		metrics.LPAnalyses.WithLabelValues("skipped").Inc()
		return nil
	}
	metrics.LPAnalyses.WithLabelValues("valued").Inc()
	return position
}

func (s *LPServiceImpl) analyze(ctx context.Context, lpTokenAddress string, holderBalance *big.Int, holderAddress string) (*entity.LPPosition, error) {
	pair := common.HexToAddress(lpTokenAddress)
	holder := common.HexToAddress(holderAddress)

	snapshot, err := s.chain.LPSnapshot(ctx, pair, holder)
	if err != nil {
		return nil, err
	}

	balance := holderBalance
	if balance == nil {
		balance = snapshot.HolderBalance
	}
	if balance == nil || balance.Sign() == 0 {
		// A pool the user no longer participates in is not reportable.
		return nil, nil
	}
	if snapshot.TotalSupply == nil || snapshot.TotalSupply.Sign() == 0 {
		return nil, nil
	}

	// LP tokens are minted with 18 decimals regardless of the legs.
	balanceFormatted := utils.ToDecimal(balance, wrappedNativeDecimals)
	supplyFormatted := utils.ToDecimal(snapshot.TotalSupply, wrappedNativeDecimals)
	userSharePercent := balanceFormatted.Div(supplyFormatted).Mul(oneHundred)

	// The legs are independent round trips; resolve them together.
	var leg0, leg1 entity.LPLeg
	g, legCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		leg0 = s.resolveLeg(legCtx, snapshot.Token0, snapshot.Reserves.Reserve0, userSharePercent)
		return nil
	})
	g.Go(func() error {
		leg1 = s.resolveLeg(legCtx, snapshot.Token1, snapshot.Reserves.Reserve1, userSharePercent)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lpMeta := s.chain.TokenMetadata(ctx, pair)
	totalValue := leg0.ValueUSD.Add(leg1.ValueUSD)

	return &entity.LPPosition{
		TokenQuote: entity.TokenQuote{
			Address:          lpTokenAddress,
			Symbol:           lpMeta.Symbol,
			Name:             lpMeta.Name,
			Decimals:         wrappedNativeDecimals,
			RawBalance:       balance,
			RawBalanceString: utils.BigIntString(balance),
			BalanceFormatted: balanceFormatted,
			PriceUSD:         totalValue.Div(balanceFormatted),
			ValueUSD:         totalValue,
			HasPrice:         true,
			LiquidityEstimate: totalValue,
		},
		Token0:            leg0,
		Token1:            leg1,
		UserSharePercent:  userSharePercent,
		TotalSupply:       snapshot.TotalSupply,
		TotalSupplyString: utils.BigIntString(snapshot.TotalSupply),
	}, nil
}

// resolveLeg decomposes one side of the pool into the holder's share of its
// reserve and a USD valuation. Metadata and price failures degrade to
// sentinels; a leg is never the reason a whole position fails.
func (s *LPServiceImpl) resolveLeg(ctx context.Context, token common.Address, reserve *big.Int, userSharePercent decimal.Decimal) entity.LPLeg {
	meta := s.chain.TokenMetadata(ctx, token)
	reserveFormatted := utils.ToDecimal(reserve, meta.Decimals)
	amount := userSharePercent.Div(oneHundred).Mul(reserveFormatted)

	var price decimal.Decimal
	if token == s.wrappedNative {
		// A wrapped-native/wrapped-native pair lookup is degenerate, so this
		// leg is priced straight off the reference resolver.
		price = s.reference.ResolveReferencePrice(ctx)
	} else {
		price = s.tokenPrices.ResolveTokenPrice(ctx, token.Hex(), meta.Decimals).PriceUSD
	}

	return entity.LPLeg{
		Address:  token.Hex(),
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Amount:   amount,
		PriceUSD: price,
		ValueUSD: amount.Mul(price),
	}
}

// NoopLPAnalyzer is the null implementation selected when LP analysis is
// disabled: every LP token stays an unvalued raw entry.
type NoopLPAnalyzer struct{}

// NewNoopLPAnalyzer creates a NoopLPAnalyzer.
func NewNoopLPAnalyzer() port.LPAnalyzer {
	return &NoopLPAnalyzer{}
}

// AnalyzeLPPosition implements port.LPAnalyzer; it always reports the
// position as unvalued.
func (*NoopLPAnalyzer) AnalyzeLPPosition(context.Context, string, *big.Int, string) *entity.LPPosition {
	return nil
}
