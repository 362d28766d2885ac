package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ContractCaller performs eth_call. chain.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader is the set of on-chain reads the adapters need.
// Every failure is reported as *RPCError.
type Reader interface {
	Reserves(ctx context.Context, pool common.Address) (*big.Int, *big.Int, error)
	TokenAddress(ctx context.Context, pool common.Address, slot int) (common.Address, error)
	SqrtPriceX96(ctx context.Context, pool common.Address) (*big.Int, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	BalanceOf(ctx context.Context, token common.Address, owner common.Address) (*big.Int, error)
}

// ChainReader implements Reader with ABI-encoded eth_call requests at the latest block.
type ChainReader struct {
	caller ContractCaller
}

var _ Reader = (*ChainReader)(nil)

func NewChainReader(caller ContractCaller) *ChainReader {
	return &ChainReader{caller: caller}
}

// Reserves returns getReserves() of a constant-product pair.
func (r *ChainReader) Reserves(ctx context.Context, pool common.Address) (*big.Int, *big.Int, error) {
	pairABI, err := V2PairABI()
	if err != nil {
		return nil, nil, fmt.Errorf("parse pair abi: %w", err)
	}
	values, err := r.call(ctx, pool, pairABI, "getReserves")
	if err != nil {
		return nil, nil, err
	}
	if len(values) < 2 {
		return nil, nil, rpcError("getReserves", pool, fmt.Errorf("return size %d", len(values)))
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return nil, nil, rpcError("getReserves", pool, err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return nil, nil, rpcError("getReserves", pool, err)
	}
	return reserve0, reserve1, nil
}

// TokenAddress returns token0() or token1() of a pool. V2 pairs and V3 pools share the selectors.
func (r *ChainReader) TokenAddress(ctx context.Context, pool common.Address, slot int) (common.Address, error) {
	var method string
	switch slot {
	case 0:
		method = "token0"
	case 1:
		method = "token1"
	default:
		return common.Address{}, fmt.Errorf("invalid token slot %d", slot)
	}

	pairABI, err := V2PairABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse pair abi: %w", err)
	}
	values, err := r.call(ctx, pool, pairABI, method)
	if err != nil {
		return common.Address{}, err
	}
	token, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, rpcError(method, pool, err)
	}
	return token, nil
}

// SqrtPriceX96 returns the sqrtPriceX96 field of slot0().
func (r *ChainReader) SqrtPriceX96(ctx context.Context, pool common.Address) (*big.Int, error) {
	poolABI, err := V3PoolABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool abi: %w", err)
	}
	values, err := r.call(ctx, pool, poolABI, "slot0")
	if err != nil {
		return nil, err
	}
	sqrt, err := asBigInt(values[0])
	if err != nil {
		return nil, rpcError("slot0", pool, err)
	}
	return sqrt, nil
}

// Decimals returns ERC20 decimals().
func (r *ChainReader) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	erc20ABI, err := ERC20ABI()
	if err != nil {
		return 0, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := r.call(ctx, token, erc20ABI, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, err := asUint8(values[0])
	if err != nil {
		return 0, rpcError("decimals", token, err)
	}
	return decimals, nil
}

// BalanceOf returns ERC20 balanceOf(owner).
func (r *ChainReader) BalanceOf(ctx context.Context, token common.Address, owner common.Address) (*big.Int, error) {
	erc20ABI, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := r.call(ctx, token, erc20ABI, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	balance, err := asBigInt(values[0])
	if err != nil {
		return nil, rpcError("balanceOf", token, err)
	}
	return balance, nil
}

func (r *ChainReader) call(ctx context.Context, target common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if r.caller == nil {
		return nil, rpcError(method, target, fmt.Errorf("chain client is nil"))
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &target, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, rpcError(method, target, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, rpcError(method, target, fmt.Errorf("unpack: %w", err))
	}
	if len(values) == 0 {
		return nil, rpcError(method, target, fmt.Errorf("empty return"))
	}
	return values, nil
}
