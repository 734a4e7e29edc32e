package httpclient

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"pulse_tracker/internal/domain/entity"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// tokenBalanceItem mirrors one entry of the Blockscout-style
// /addresses/{address}/token-balances response. Numeric fields arrive as
// strings.
type tokenBalanceItem struct {
	Token struct {
		Address  string `json:"address"`
		Symbol   string `json:"symbol"`
		Name     string `json:"name"`
		Decimals string `json:"decimals"`
		Type     string `json:"type"`
	} `json:"token"`
	Value string `json:"value"`
}

// scanClientImpl implements port.TokenDiscovery against the PulseChain Scan
// explorer API.
type scanClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewScanClient creates a PulseChain Scan discovery client. Requests are
// rate limited; the public explorer throttles aggressive callers.
func NewScanClient(baseURL string, timeout time.Duration, ratePerSecond float64, logger *zap.Logger) *scanClientImpl {
	return &scanClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		logger:  logger.Named("ScanClient"),
	}
}

// DiscoverTokens implements port.TokenDiscovery.
func (c *scanClientImpl) DiscoverTokens(ctx context.Context, walletAddress string) ([]entity.DiscoveredToken, error) {
	if walletAddress == "" {
		return nil, fmt.Errorf("wallet address cannot be empty")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	requestURL := fmt.Sprintf("%s/addresses/%s/token-balances", c.baseURL, walletAddress)
	c.logger.Debug("Requesting token balances from scan API", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("scan API request for %s failed: %w", walletAddress, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("scan API returned status %d for %s", resp.StatusCode(), walletAddress)
	}

	var items []tokenBalanceItem
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, fmt.Errorf("failed to decode scan API response for %s: %w", walletAddress, err)
	}

	tokens := make([]entity.DiscoveredToken, 0, len(items))
	for _, item := range items {
		token, ok := c.toDiscoveredToken(item)
		if !ok {
			continue
		}
		tokens = append(tokens, token)
	}

	c.logger.Debug("Discovered tokens for wallet",
		zap.String("wallet", walletAddress), zap.Int("count", len(tokens)))
	return tokens, nil
}

func (c *scanClientImpl) toDiscoveredToken(item tokenBalanceItem) (entity.DiscoveredToken, bool) {
	if item.Token.Address == "" {
		return entity.DiscoveredToken{}, false
	}

	rawBalance, ok := new(big.Int).SetString(item.Value, 10)
	if !ok {
		c.logger.Warn("Unparseable token balance value from scan API",
			zap.String("token", item.Token.Address), zap.String("value", item.Value))
		return entity.DiscoveredToken{}, false
	}

	decimals := uint8(18)
	if item.Token.Decimals != "" {
		parsed, err := strconv.ParseUint(item.Token.Decimals, 10, 8)
		if err != nil {
			c.logger.Warn("Unparseable token decimals from scan API, defaulting to 18",
				zap.String("token", item.Token.Address), zap.String("decimals", item.Token.Decimals))
		} else {
			decimals = uint8(parsed)
		}
	}

	return entity.DiscoveredToken{
		Address:    item.Token.Address,
		Symbol:     item.Token.Symbol,
		Name:       item.Token.Name,
		Decimals:   decimals,
		RawBalance: rawBalance,
		IsLPToken:  isLPToken(item.Token.Symbol, item.Token.Name),
	}, true
}

// isLPToken recognizes PulseX pool receipt tokens by their ERC20 descriptor.
func isLPToken(symbol, name string) bool {
	if strings.EqualFold(symbol, "PLP") {
		return true
	}
	return strings.Contains(name, "PulseX LP")
}
