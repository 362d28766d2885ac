package price

import (
	"errors"
	"fmt"
	"math"

	"priceScope/internal/model"
)

var (
	// ErrNoValidPoolData means every pool for a token failed.
	ErrNoValidPoolData = errors.New("no valid pool data")
	// ErrZeroLiquidity means the successful quotes carry no value to weight by.
	ErrZeroLiquidity = errors.New("total pool value is zero")
	// ErrInvalidQuote means an adapter returned a non-finite or non-positive price, or a negative value.
	ErrInvalidQuote = errors.New("invalid pool quote")
)

func checkQuote(q model.Quote) error {
	if math.IsNaN(q.Price) || math.IsInf(q.Price, 0) || q.Price <= 0 {
		return fmt.Errorf("%w: price %g", ErrInvalidQuote, q.Price)
	}
	if math.IsNaN(q.Value) || math.IsInf(q.Value, 0) || q.Value < 0 {
		return fmt.Errorf("%w: value %g", ErrInvalidQuote, q.Value)
	}
	return nil
}

// WeightedMean returns Σ(price·value) / Σ(value) over quotes.
// The result always lies within [min price, max price]; a single quote, or
// quotes sharing one price, return that price unchanged.
func WeightedMean(quotes []model.Quote) (float64, error) {
	if len(quotes) == 0 {
		return 0, ErrNoValidPoolData
	}

	var weighted, total float64
	lo, hi := quotes[0].Price, quotes[0].Price
	for _, q := range quotes {
		weighted += q.Price * q.Value
		total += q.Value
		lo = math.Min(lo, q.Price)
		hi = math.Max(hi, q.Price)
	}
	if total == 0 {
		return 0, ErrZeroLiquidity
	}
	mean := weighted / total
	if math.IsNaN(mean) || math.IsInf(mean, 0) || math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0, fmt.Errorf("weighted price is not finite (sum %g / %g)", weighted, total)
	}
	if lo == hi {
		return lo, nil
	}
	// p·v / v rounding can step just past the extremes.
	return math.Min(math.Max(mean, lo), hi), nil
}
