package dex

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// DefaultDecimals is assumed for counter-assets the resolver does not know.
const DefaultDecimals uint8 = 18

// Mainnet counter-assets with fixed decimals.
var knownDecimals = map[common.Address]uint8{
	common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"): 6,  // USDT
	common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"): 6,  // USDC
	common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"): 18, // DAI
	common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"): 18, // WETH
	common.HexToAddress("0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599"): 8,  // WBTC
}

// Resolver maps a counter-asset address to its fixed-point scale without touching the chain.
// Unknown addresses resolve to DefaultDecimals, so the lookup never fails.
type Resolver struct {
	decimals map[common.Address]uint8
}

// NewResolver builds a resolver from the built-in table plus overrides, which win on conflict.
func NewResolver(overrides map[common.Address]uint8) *Resolver {
	decimals := make(map[common.Address]uint8, len(knownDecimals)+len(overrides))
	for addr, d := range knownDecimals {
		decimals[addr] = d
	}
	for addr, d := range overrides {
		decimals[addr] = d
	}
	return &Resolver{decimals: decimals}
}

// Decimals returns the decimals for a counter-asset.
func (r *Resolver) Decimals(asset common.Address) uint8 {
	if r != nil {
		if d, ok := r.decimals[asset]; ok {
			return d
		}
	}
	return DefaultDecimals
}

// Known reports whether the asset has an explicit entry.
func (r *Resolver) Known(asset common.Address) bool {
	if r == nil {
		return false
	}
	_, ok := r.decimals[asset]
	return ok
}

// Scale returns 10^decimals for a counter-asset.
func (r *Resolver) Scale(asset common.Address) decimal.Decimal {
	return decimal.New(1, int32(r.Decimals(asset)))
}
