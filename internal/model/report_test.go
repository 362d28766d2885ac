package model

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPriceReport(t *testing.T) {
	good := PoolSpec{Name: "WETH/USDC", Address: common.HexToAddress("0x1111111111111111111111111111111111111111"), Protocol: ConstantProductV2}
	bad := PoolSpec{Name: "WETH/DAI", Address: common.HexToAddress("0x2222222222222222222222222222222222222222"), Protocol: ConcentratedLiquidityV3}

	result := TokenPrice{
		Token: TokenSpec{Name: "WETH", Address: common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), Pools: []PoolSpec{good, bad}},
		Price: 2000,
		Quotes: []PoolQuote{
			{Pool: good, Quote: Quote{Price: 2000, Value: 4000}},
			{Pool: bad, Err: errors.New("call slot0: boom")},
		},
	}

	report := NewPriceReport(result, time.Unix(1700000000, 0))
	require.NotNil(t, report.Price)
	assert.Equal(t, 2000.0, *report.Price)
	assert.Empty(t, report.Error)
	assert.Equal(t, "2023-11-14T22:13:20Z", report.ComputedAt)
	require.Len(t, report.Pools, 2)
	assert.Equal(t, 4000.0, *report.Pools[0].Value)
	assert.Nil(t, report.Pools[1].Price)
	assert.Equal(t, "call slot0: boom", report.Pools[1].Error)
	assert.Equal(t, 1, result.Succeeded())
}

func TestNewPriceReportFailure(t *testing.T) {
	result := TokenPrice{
		Token: TokenSpec{Name: "PEPE", Address: common.HexToAddress("0x6982508145454Ce325dDbE47a25d4ec3d2311933")},
		Err:   errors.New("no valid pool data"),
	}

	report := NewPriceReport(result, time.Now())
	assert.Nil(t, report.Price)
	assert.Equal(t, "no valid pool data", report.Error)
	assert.Empty(t, report.Pools)
}

func TestParseProtocol(t *testing.T) {
	for _, p := range Protocols {
		got, err := ParseProtocol(" " + string(p) + " ")
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParseProtocol("UNISWAP_V3")
	require.NoError(t, err)
	assert.Equal(t, ConcentratedLiquidityV3, got)

	_, err = ParseProtocol("curve")
	assert.Error(t, err)
	_, err = ParseProtocol("")
	assert.Error(t, err)
}
