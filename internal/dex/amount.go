package dex

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// scaleAmount converts a raw fixed-point integer into a real quantity.
func scaleAmount(raw *big.Int, decimals uint8) float64 {
	if raw == nil {
		return 0
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).InexactFloat64()
}

func pow10(exp uint) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), new(big.Int).SetUint64(uint64(exp)), nil)
}
