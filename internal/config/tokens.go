package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"priceScope/internal/model"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidateTokens checks raw token entries from the file or registry and converts them into specs.
// The first problem found is returned, wrapped in ErrInvalidConfig.
func ValidateTokens(tokens []model.TokenEntry) ([]model.TokenSpec, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: tokens cannot be empty", ErrInvalidConfig)
	}

	seen := make(map[common.Address]string, len(tokens))
	specs := make([]model.TokenSpec, 0, len(tokens))
	for _, token := range tokens {
		if !isHexAddress(token.Token) {
			return nil, fmt.Errorf("%w: invalid address %q for token %q", ErrInvalidConfig, token.Token, token.Name)
		}
		address := common.HexToAddress(token.Token)
		if prev, ok := seen[address]; ok {
			return nil, fmt.Errorf("%w: duplicate token %s (%q and %q)", ErrInvalidConfig, address.Hex(), prev, token.Name)
		}
		seen[address] = token.Name

		if len(token.Pools) == 0 {
			return nil, fmt.Errorf("%w: token %q must contain at least one pool", ErrInvalidConfig, token.Name)
		}

		spec := model.TokenSpec{
			Name:    token.Name,
			Address: address,
			Pools:   make([]model.PoolSpec, 0, len(token.Pools)),
		}
		for _, pool := range token.Pools {
			if !isHexAddress(pool.Address) {
				return nil, fmt.Errorf("%w: invalid pool address %q for pool %q", ErrInvalidConfig, pool.Address, pool.Name)
			}
			if strings.TrimSpace(pool.Protocol) == "" {
				return nil, fmt.Errorf("%w: protocol not specified for pool %q of token %q", ErrInvalidConfig, pool.Name, token.Name)
			}
			protocol, err := model.ParseProtocol(pool.Protocol)
			if err != nil {
				return nil, fmt.Errorf("%w: pool %q of token %q: %v", ErrInvalidConfig, pool.Name, token.Name, err)
			}
			spec.Pools = append(spec.Pools, model.PoolSpec{
				Name:     pool.Name,
				Address:  common.HexToAddress(pool.Address),
				Protocol: protocol,
			})
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// isHexAddress requires the 0x prefix, unlike common.IsHexAddress.
func isHexAddress(s string) bool {
	if len(s) != 2*common.AddressLength+2 || !(strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		return false
	}
	return common.IsHexAddress(s)
}
