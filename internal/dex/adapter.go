package dex

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"priceScope/internal/model"
)

// Adapter normalizes one pool's on-chain state into a quote for the requested token.
type Adapter interface {
	Quote(ctx context.Context, reader Reader, pool common.Address, token common.Address) (model.Quote, error)
}

// AdapterSet dispatches on the pool protocol tag.
type AdapterSet struct {
	adapters map[model.Protocol]Adapter
}

// NewAdapterSet wires the constant-product adapter for both V2 tags and the
// concentrated-liquidity adapter for V3.
func NewAdapterSet(resolver *Resolver, decimals *DecimalsCache) *AdapterSet {
	cp := NewConstantProduct(resolver)
	return &AdapterSet{adapters: map[model.Protocol]Adapter{
		model.ConstantProductV2:       cp,
		model.ConstantProductV2Fork:   cp,
		model.ConcentratedLiquidityV3: NewConcentrated(decimals),
	}}
}

// For returns the adapter for protocol.
func (s *AdapterSet) For(protocol model.Protocol) (Adapter, error) {
	if s != nil {
		if adapter, ok := s.adapters[protocol]; ok {
			return adapter, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedProtocol, protocol)
}

// Register replaces the adapter for protocol. Call it before the set is shared.
func (s *AdapterSet) Register(protocol model.Protocol, adapter Adapter) {
	s.adapters[protocol] = adapter
}
