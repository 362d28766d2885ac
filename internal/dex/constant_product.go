package dex

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"priceScope/internal/model"
)

// requestedDecimals is the fixed scale applied to the priced side of a V2 pair.
const requestedDecimals uint8 = 18

// ConstantProduct quotes V2-style pairs (Uniswap V2 and its forks).
type ConstantProduct struct {
	resolver *Resolver
}

func NewConstantProduct(resolver *Resolver) *ConstantProduct {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	return &ConstantProduct{resolver: resolver}
}

// Quote prices token in units of the pair's other asset.
// The pool value is token*price + counter, expressed in counter-asset units.
func (a *ConstantProduct) Quote(ctx context.Context, reader Reader, pool common.Address, token common.Address) (model.Quote, error) {
	reserve0, reserve1, err := reader.Reserves(ctx, pool)
	if err != nil {
		return model.Quote{}, err
	}
	token0, err := reader.TokenAddress(ctx, pool, 0)
	if err != nil {
		return model.Quote{}, err
	}
	token1, err := reader.TokenAddress(ctx, pool, 1)
	if err != nil {
		return model.Quote{}, err
	}

	var (
		tokenRaw   = reserve0
		counterRaw = reserve1
		counter    = token1
	)
	switch token {
	case token0:
	case token1:
		tokenRaw, counterRaw, counter = reserve1, reserve0, token0
	default:
		return model.Quote{}, ErrTokenNotInPool
	}
	if tokenRaw == nil || counterRaw == nil || tokenRaw.Sign() <= 0 || counterRaw.Sign() <= 0 {
		return model.Quote{}, ErrEmptyPool
	}

	tokenReserve := scaleAmount(tokenRaw, requestedDecimals)
	counterReserve := scaleAmount(counterRaw, a.resolver.Decimals(counter))
	price := counterReserve / tokenReserve
	return model.Quote{
		Price: price,
		Value: tokenReserve*price + counterReserve,
	}, nil
}
