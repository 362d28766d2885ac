package dex

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"priceScope/internal/model"
)

// q192 is 2^192, the denominator of sqrtPriceX96 squared.
var q192 = new(big.Int).Lsh(big.NewInt(1), 192)

// Concentrated quotes Uniswap V3 pools from slot0 and the pool's token balances.
type Concentrated struct {
	decimals *DecimalsCache
}

func NewConcentrated(decimals *DecimalsCache) *Concentrated {
	if decimals == nil {
		decimals = NewDecimalsCache()
	}
	return &Concentrated{decimals: decimals}
}

// Quote prices token against the other pool token. Balances held by the pool
// stand in for liquidity when computing value.
func (a *Concentrated) Quote(ctx context.Context, reader Reader, pool common.Address, token common.Address) (model.Quote, error) {
	token0, err := reader.TokenAddress(ctx, pool, 0)
	if err != nil {
		return model.Quote{}, err
	}
	token1, err := reader.TokenAddress(ctx, pool, 1)
	if err != nil {
		return model.Quote{}, err
	}
	if token != token0 && token != token1 {
		return model.Quote{}, ErrTokenNotInPool
	}

	decimals0, err := a.decimals.Decimals(ctx, reader, token0)
	if err != nil {
		return model.Quote{}, err
	}
	decimals1, err := a.decimals.Decimals(ctx, reader, token1)
	if err != nil {
		return model.Quote{}, err
	}
	sqrtPriceX96, err := reader.SqrtPriceX96(ctx, pool)
	if err != nil {
		return model.Quote{}, err
	}

	ratio := sqrtPriceRatio(sqrtPriceX96, decimals0, decimals1, token == token0)
	if ratio == nil {
		return model.Quote{}, ErrEmptyPool
	}
	price, _ := ratio.Float64()

	balance0, err := reader.BalanceOf(ctx, token0, pool)
	if err != nil {
		return model.Quote{}, err
	}
	balance1, err := reader.BalanceOf(ctx, token1, pool)
	if err != nil {
		return model.Quote{}, err
	}
	amount0 := scaleAmount(balance0, decimals0)
	amount1 := scaleAmount(balance1, decimals1)

	value := amount1*price + amount0
	if token == token0 {
		value = amount0*price + amount1
	}
	return model.Quote{Price: price, Value: value}, nil
}

// sqrtPriceRatio returns the decimal-adjusted price of token0 in token1 when
// forToken0 is set, or its inverse otherwise. The square is kept exact.
// It returns nil for an uninitialized pool.
func sqrtPriceRatio(sqrtPriceX96 *big.Int, decimals0, decimals1 uint8, forToken0 bool) *big.Rat {
	if sqrtPriceX96 == nil || sqrtPriceX96.Sign() <= 0 {
		return nil
	}
	num := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	den := new(big.Int).Set(q192)
	if decimals0 > decimals1 {
		num.Mul(num, pow10(uint(decimals0-decimals1)))
	} else if decimals1 > decimals0 {
		den.Mul(den, pow10(uint(decimals1-decimals0)))
	}
	if !forToken0 {
		num, den = den, num
	}
	return new(big.Rat).SetFrac(num, den)
}
