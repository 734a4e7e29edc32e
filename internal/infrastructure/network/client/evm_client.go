package client

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"pulse_tracker/internal/app/port"
	"pulse_tracker/internal/domain/entity"
)

// Minimal ABI covering the factory, pair and ERC20 methods the valuation
// engine reads. Packing and unpacking only needs the method definitions, so
// one parsed ABI serves all three contract kinds.
const dexReaderABI = `[
{"constant":true,"inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"name":"getPair","outputs":[{"name":"pair","type":"address"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"getReserves","outputs":[{"name":"reserve0","type":"uint112"},{"name":"reserve1","type":"uint112"},{"name":"blockTimestampLast","type":"uint32"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"token0","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"token1","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"totalSupply","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

var (
	parsedDexABI     abi.ABI
	parsedDexABIOnce sync.Once
)

func initParsedDexABI() {
	parsedDexABIOnce.Do(func() {
		var err error
		parsedDexABI, err = abi.JSON(strings.NewReader(dexReaderABI))
		if err != nil {
			// The ABI literal is static; failing to parse it is a programming error.
			panic(fmt.Sprintf("failed to parse DEX reader ABI: %v", err))
		}
	})
}

// Sentinel defaults for independently-failing metadata reads.
const (
	unknownTokenField    = "Unknown"
	defaultTokenDecimals = uint8(18)
)

// EVMClient implements port.ChainReader against EVM-compatible chains,
// spreading read load across the provider pool.
type EVMClient struct {
	providers      port.ProviderSelector
	logger         port.Logger
	rpcCallTimeout time.Duration
}

// NewEVMClient creates a chain reader backed by the given provider selector.
func NewEVMClient(providers port.ProviderSelector, log port.Logger, rpcCallTimeout time.Duration) *EVMClient {
	initParsedDexABI()
	return &EVMClient{
		providers:      providers,
		logger:         log,
		rpcCallTimeout: rpcCallTimeout,
	}
}

// call packs a method call, executes it against the next provider and
// unpacks the outputs.
func (c *EVMClient) call(ctx context.Context, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := parsedDexABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", method, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	out, err := c.providers.Next().CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call to %s failed: %w", method, to.Hex(), err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s call to %s returned no data", method, to.Hex())
	}

	unpacked, err := parsedDexABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result from %s: %w", method, to.Hex(), err)
	}
	return unpacked, nil
}

// GetPair implements port.ChainReader. The zero address means the factory
// has no pair for the two tokens; callers treat that as "not found".
func (c *EVMClient) GetPair(ctx context.Context, factory, tokenA, tokenB common.Address) (common.Address, error) {
	unpacked, err := c.call(ctx, factory, "getPair", tokenA, tokenB)
	if err != nil {
		return common.Address{}, err
	}
	pair, ok := unpacked[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected getPair result type %T", unpacked[0])
	}
	return pair, nil
}

// GetReserves implements port.ChainReader.
func (c *EVMClient) GetReserves(ctx context.Context, pair common.Address) (entity.PairReserves, error) {
	unpacked, err := c.call(ctx, pair, "getReserves")
	if err != nil {
		return entity.PairReserves{}, err
	}
	return decodeReserves(pair, unpacked)
}

func decodeReserves(pair common.Address, unpacked []interface{}) (entity.PairReserves, error) {
	if len(unpacked) != 3 {
		return entity.PairReserves{}, fmt.Errorf("getReserves on %s returned %d values, want 3", pair.Hex(), len(unpacked))
	}
	reserve0, ok0 := unpacked[0].(*big.Int)
	reserve1, ok1 := unpacked[1].(*big.Int)
	timestamp, ok2 := unpacked[2].(uint32)
	if !ok0 || !ok1 || !ok2 {
		return entity.PairReserves{}, fmt.Errorf("unexpected getReserves result types on %s", pair.Hex())
	}
	return entity.PairReserves{
		PairAddress:        pair.Hex(),
		Reserve0:           reserve0,
		Reserve1:           reserve1,
		BlockTimestampLast: timestamp,
	}, nil
}

// Token0 implements port.ChainReader.
func (c *EVMClient) Token0(ctx context.Context, pair common.Address) (common.Address, error) {
	return c.addressCall(ctx, pair, "token0")
}

// Token1 implements port.ChainReader.
func (c *EVMClient) Token1(ctx context.Context, pair common.Address) (common.Address, error) {
	return c.addressCall(ctx, pair, "token1")
}

func (c *EVMClient) addressCall(ctx context.Context, to common.Address, method string) (common.Address, error) {
	unpacked, err := c.call(ctx, to, method)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := unpacked[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected %s result type %T", method, unpacked[0])
	}
	return addr, nil
}

// TotalSupply implements port.ChainReader.
func (c *EVMClient) TotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	return c.bigIntCall(ctx, token, "totalSupply")
}

// BalanceOf implements port.ChainReader.
func (c *EVMClient) BalanceOf(ctx context.Context, token, holder common.Address) (*big.Int, error) {
	return c.bigIntCall(ctx, token, "balanceOf", holder)
}

func (c *EVMClient) bigIntCall(ctx context.Context, to common.Address, method string, args ...interface{}) (*big.Int, error) {
	unpacked, err := c.call(ctx, to, method, args...)
	if err != nil {
		return nil, err
	}
	value, ok := unpacked[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected %s result type %T", method, unpacked[0])
	}
	return value, nil
}

// TokenMetadata implements port.ChainReader. Each field is read
// independently; a reverting call keeps its sentinel default instead of
// failing the whole read.
func (c *EVMClient) TokenMetadata(ctx context.Context, token common.Address) entity.TokenMetadata {
	meta := entity.TokenMetadata{
		Symbol:   unknownTokenField,
		Name:     unknownTokenField,
		Decimals: defaultTokenDecimals,
	}

	if unpacked, err := c.call(ctx, token, "symbol"); err == nil {
		if symbol, ok := unpacked[0].(string); ok {
			meta.Symbol = symbol
		}
	} else {
		c.logger.Debug("symbol() read failed, using sentinel", "token", token.Hex(), "error", err)
	}

	if unpacked, err := c.call(ctx, token, "name"); err == nil {
		if name, ok := unpacked[0].(string); ok {
			meta.Name = name
		}
	} else {
		c.logger.Debug("name() read failed, using sentinel", "token", token.Hex(), "error", err)
	}

	if unpacked, err := c.call(ctx, token, "decimals"); err == nil {
		if decimals, ok := unpacked[0].(uint8); ok {
			meta.Decimals = decimals
		}
	} else {
		c.logger.Debug("decimals() read failed, using sentinel", "token", token.Hex(), "error", err)
	}

	return meta
}

// LPSnapshot implements port.ChainReader. All five reads of the LP contract
// go out as one JSON-RPC batch so the snapshot is as close to a single
// point in time as the transport allows.
func (c *EVMClient) LPSnapshot(ctx context.Context, pair, holder common.Address) (port.LPSnapshot, error) {
	methods := []struct {
		name string
		args []interface{}
	}{
		{"token0", nil},
		{"token1", nil},
		{"getReserves", nil},
		{"totalSupply", nil},
		{"balanceOf", []interface{}{holder}},
	}

	batchElems := make([]rpc.BatchElem, len(methods))
	for i, m := range methods {
		data, err := parsedDexABI.Pack(m.name, m.args...)
		if err != nil {
			return port.LPSnapshot{}, fmt.Errorf("failed to pack %s call: %w", m.name, err)
		}
		callArgs := map[string]interface{}{
			"to":   pair,
			"data": hexutil.Bytes(data),
		}
		batchElems[i] = rpc.BatchElem{
			Method: "eth_call",
			Args:   []interface{}{callArgs, "latest"},
			Result: new(hexutil.Bytes),
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	rawRPCClient := c.providers.Next().Client()
	if err := rawRPCClient.BatchCallContext(callCtx, batchElems); err != nil {
		return port.LPSnapshot{}, fmt.Errorf("LP snapshot batch call for %s failed: %w", pair.Hex(), err)
	}

	unpackedResults := make([][]interface{}, len(methods))
	for i, elem := range batchElems {
		if elem.Error != nil {
			return port.LPSnapshot{}, fmt.Errorf("%s on %s failed in batch: %w", methods[i].name, pair.Hex(), elem.Error)
		}
		raw, ok := elem.Result.(*hexutil.Bytes)
		if !ok || raw == nil || len(*raw) == 0 {
			return port.LPSnapshot{}, fmt.Errorf("%s on %s returned no data", methods[i].name, pair.Hex())
		}
		unpacked, err := parsedDexABI.Unpack(methods[i].name, *raw)
		if err != nil {
			return port.LPSnapshot{}, fmt.Errorf("failed to unpack %s result from %s: %w", methods[i].name, pair.Hex(), err)
		}
		unpackedResults[i] = unpacked
	}

	token0, ok0 := unpackedResults[0][0].(common.Address)
	token1, ok1 := unpackedResults[1][0].(common.Address)
	totalSupply, ok3 := unpackedResults[3][0].(*big.Int)
	holderBalance, ok4 := unpackedResults[4][0].(*big.Int)
	if !ok0 || !ok1 || !ok3 || !ok4 {
		return port.LPSnapshot{}, fmt.Errorf("unexpected result types in LP snapshot of %s", pair.Hex())
	}
	reserves, err := decodeReserves(pair, unpackedResults[2])
	if err != nil {
		return port.LPSnapshot{}, err
	}
	reserves.Token0 = token0.Hex()
	reserves.Token1 = token1.Hex()

	return port.LPSnapshot{
		Token0:        token0,
		Token1:        token1,
		Reserves:      reserves,
		TotalSupply:   totalSupply,
		HolderBalance: holderBalance,
	}, nil
}
