package dex

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	usdc   = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	weth   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	other  = common.HexToAddress("0x1111111111111111111111111111111111111111")
	pairV2 = common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc")
	poolV3 = common.HexToAddress("0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640")
)

type reserves struct {
	r0, r1 *big.Int
}

type fakeReader struct {
	mu            sync.Mutex
	reserves      map[common.Address]reserves
	tokens        map[common.Address][2]common.Address
	sqrtPrices    map[common.Address]*big.Int
	decimals      map[common.Address]uint8
	balances      map[common.Address]*big.Int // keyed by token, owner ignored
	failCall      string
	decimalsCalls int
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		reserves:   make(map[common.Address]reserves),
		tokens:     make(map[common.Address][2]common.Address),
		sqrtPrices: make(map[common.Address]*big.Int),
		decimals:   make(map[common.Address]uint8),
		balances:   make(map[common.Address]*big.Int),
	}
}

var errFakeRPC = errors.New("connection refused")

func (f *fakeReader) fail(call string, address common.Address) error {
	return rpcError(call, address, errFakeRPC)
}

func (f *fakeReader) Reserves(_ context.Context, pool common.Address) (*big.Int, *big.Int, error) {
	if f.failCall == "getReserves" {
		return nil, nil, f.fail("getReserves", pool)
	}
	r, ok := f.reserves[pool]
	if !ok {
		return nil, nil, f.fail("getReserves", pool)
	}
	return r.r0, r.r1, nil
}

func (f *fakeReader) TokenAddress(_ context.Context, pool common.Address, slot int) (common.Address, error) {
	pair, ok := f.tokens[pool]
	if !ok || f.failCall == "token0" {
		return common.Address{}, f.fail("token0", pool)
	}
	return pair[slot], nil
}

func (f *fakeReader) SqrtPriceX96(_ context.Context, pool common.Address) (*big.Int, error) {
	sqrt, ok := f.sqrtPrices[pool]
	if !ok || f.failCall == "slot0" {
		return nil, f.fail("slot0", pool)
	}
	return sqrt, nil
}

func (f *fakeReader) Decimals(_ context.Context, token common.Address) (uint8, error) {
	f.mu.Lock()
	f.decimalsCalls++
	f.mu.Unlock()
	d, ok := f.decimals[token]
	if !ok || f.failCall == "decimals" {
		return 0, f.fail("decimals", token)
	}
	return d, nil
}

func (f *fakeReader) BalanceOf(_ context.Context, token common.Address, _ common.Address) (*big.Int, error) {
	balance, ok := f.balances[token]
	if !ok || f.failCall == "balanceOf" {
		return nil, f.fail("balanceOf", token)
	}
	return balance, nil
}

func pow10Int(exp int64) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil)
}

func mulPow10(n int64, exp int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), pow10Int(exp))
}
