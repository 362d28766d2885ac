package model

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Protocol identifies the DEX family a pool belongs to.
type Protocol string

const (
	ConstantProductV2       Protocol = "uniswap_v2"
	ConstantProductV2Fork   Protocol = "sushiswap"
	ConcentratedLiquidityV3 Protocol = "uniswap_v3"
)

// Protocols lists every supported protocol tag.
var Protocols = []Protocol{ConstantProductV2, ConstantProductV2Fork, ConcentratedLiquidityV3}

// ParseProtocol converts a configuration tag into a Protocol.
func ParseProtocol(tag string) (Protocol, error) {
	switch Protocol(strings.ToLower(strings.TrimSpace(tag))) {
	case ConstantProductV2:
		return ConstantProductV2, nil
	case ConstantProductV2Fork:
		return ConstantProductV2Fork, nil
	case ConcentratedLiquidityV3:
		return ConcentratedLiquidityV3, nil
	default:
		return "", fmt.Errorf("unsupported protocol %q", tag)
	}
}

func (p Protocol) String() string {
	return string(p)
}

// TokenSpec is a validated token with the pools used to price it.
type TokenSpec struct {
	Name    string
	Address common.Address
	Pools   []PoolSpec
}

// PoolSpec is a validated pool entry.
type PoolSpec struct {
	Name     string
	Address  common.Address
	Protocol Protocol
}
