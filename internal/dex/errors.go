package dex

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrTokenNotInPool means neither pool token matches the requested token.
	ErrTokenNotInPool = errors.New("token not in pool")
	// ErrEmptyPool means the pool has no usable price (zero reserve or uninitialized slot0).
	ErrEmptyPool = errors.New("pool has no liquidity")
	// ErrUnsupportedProtocol means no adapter exists for the protocol tag.
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
)

// RPCError is returned when an on-chain read fails.
type RPCError struct {
	Call    string
	Address common.Address
	Err     error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc %s on %s: %v", e.Call, e.Address.Hex(), e.Err)
}

func (e *RPCError) Unwrap() error {
	return e.Err
}

func rpcError(call string, address common.Address, err error) error {
	return &RPCError{Call: call, Address: address, Err: err}
}
