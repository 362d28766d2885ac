package dex

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var q96 = new(big.Int).Lsh(big.NewInt(1), 96)

func newV3Reader(sqrt *big.Int, token0, token1 common.Address, d0, d1 uint8) *fakeReader {
	reader := newFakeReader()
	reader.tokens[poolV3] = [2]common.Address{token0, token1}
	reader.sqrtPrices[poolV3] = sqrt
	reader.decimals[token0] = d0
	reader.decimals[token1] = d1
	reader.balances[token0] = mulPow10(5, int64(d0))
	reader.balances[token1] = mulPow10(7, int64(d1))
	return reader
}

func TestConcentratedParity(t *testing.T) {
	reader := newV3Reader(q96, other, weth, 18, 18)
	adapter := NewConcentrated(nil)

	quote, err := adapter.Quote(context.Background(), reader, poolV3, other)
	require.NoError(t, err)
	assert.Equal(t, 1.0, quote.Price)
	assert.InDelta(t, 12.0, quote.Value, 1e-9)

	quote, err = adapter.Quote(context.Background(), reader, poolV3, weth)
	require.NoError(t, err)
	assert.Equal(t, 1.0, quote.Price)
	assert.InDelta(t, 12.0, quote.Value, 1e-9)
}

func TestConcentratedDecimalsAdjustment(t *testing.T) {
	// raw ratio 4 (sqrt 2), token0 has 6 decimals, token1 has 18:
	// one whole token0 buys 4 * 10^-12 whole token1.
	sqrt := new(big.Int).Lsh(big.NewInt(2), 96)
	reader := newV3Reader(sqrt, usdc, weth, 6, 18)
	adapter := NewConcentrated(nil)

	quote, err := adapter.Quote(context.Background(), reader, poolV3, usdc)
	require.NoError(t, err)
	assert.InEpsilon(t, 4e-12, quote.Price, 1e-12)
	assert.InDelta(t, 5*4e-12+7, quote.Value, 1e-9)

	quote, err = adapter.Quote(context.Background(), reader, poolV3, weth)
	require.NoError(t, err)
	assert.InEpsilon(t, 2.5e11, quote.Price, 1e-12)
	assert.InEpsilon(t, 7*2.5e11+5, quote.Value, 1e-12)
}

func TestConcentratedCachesDecimals(t *testing.T) {
	reader := newV3Reader(q96, other, weth, 18, 18)
	adapter := NewConcentrated(NewDecimalsCache())

	for i := 0; i < 3; i++ {
		_, err := adapter.Quote(context.Background(), reader, poolV3, weth)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, reader.decimalsCalls)
}

func TestConcentratedTokenNotInPool(t *testing.T) {
	reader := newV3Reader(q96, other, weth, 18, 18)
	_, err := NewConcentrated(nil).Quote(context.Background(), reader, poolV3, usdc)
	require.ErrorIs(t, err, ErrTokenNotInPool)
}

func TestConcentratedUninitialized(t *testing.T) {
	reader := newV3Reader(big.NewInt(0), other, weth, 18, 18)
	_, err := NewConcentrated(nil).Quote(context.Background(), reader, poolV3, weth)
	require.ErrorIs(t, err, ErrEmptyPool)
}

func TestConcentratedBalanceFailure(t *testing.T) {
	reader := newV3Reader(q96, other, weth, 18, 18)
	reader.failCall = "balanceOf"
	_, err := NewConcentrated(nil).Quote(context.Background(), reader, poolV3, weth)
	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, "balanceOf", rpcErr.Call)
}

func TestSqrtPriceRatioKeepsPrecision(t *testing.T) {
	// max uint160 squared overflows float64 mantissa but not big.Rat.
	maxSqrt := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 160), big.NewInt(1))
	ratio := sqrtPriceRatio(maxSqrt, 18, 18, true)
	require.NotNil(t, ratio)
	inverse := sqrtPriceRatio(maxSqrt, 18, 18, false)
	require.NotNil(t, inverse)

	product := new(big.Rat).Mul(ratio, inverse)
	assert.Equal(t, 0, product.Cmp(big.NewRat(1, 1)))
}
