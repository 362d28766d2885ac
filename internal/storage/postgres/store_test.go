package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priceScope/internal/model"
)

// Runs against a real database when PRICER_TEST_PG_DSN is set.
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("PRICER_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("PRICER_TEST_PG_DSN not set")
	}
	ctx := context.Background()
	store, err := NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	require.Error(t, err)
}

func TestLoadTokensRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	const token = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	_, err := store.pool.Exec(ctx, `DELETE FROM price_pools WHERE token_address = $1`, token)
	require.NoError(t, err)
	_, err = store.pool.Exec(ctx, `DELETE FROM price_tokens WHERE token_address = $1`, token)
	require.NoError(t, err)
	_, err = store.pool.Exec(ctx, `INSERT INTO price_tokens (token_address, name) VALUES ($1, 'WETH')`, token)
	require.NoError(t, err)
	_, err = store.pool.Exec(ctx, `
		INSERT INTO price_pools (token_address, pool_address, name, protocol) VALUES
		($1, '0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc', 'USDC/WETH v2', 'uniswap_v2'),
		($1, '0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640', 'USDC/WETH v3', 'uniswap_v3')
	`, token)
	require.NoError(t, err)

	tokens, err := store.LoadTokens(ctx)
	require.NoError(t, err)

	var weth *model.TokenEntry
	for i := range tokens {
		if tokens[i].Token == token {
			weth = &tokens[i]
		}
	}
	require.NotNil(t, weth)
	require.Len(t, weth.Pools, 2)
	assert.Equal(t, "WETH", weth.Name)
	assert.Equal(t, "USDC/WETH v2", weth.Pools[0].Name)
	assert.Equal(t, "uniswap_v2", weth.Pools[0].Protocol)
	assert.Equal(t, "0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640", weth.Pools[1].Address)
}

func TestUpsertPools(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	pool := model.Pool{
		ChainID:   1,
		Address:   "0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640",
		Name:      "USDC/WETH v3",
		Protocol:  "uniswap_v3",
		Token0:    "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Token1:    "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		Decimals0: 6,
		Decimals1: 18,
	}
	require.NoError(t, store.UpsertPools(ctx, []model.Pool{pool}))
	pool.Name = "renamed"
	require.NoError(t, store.UpsertPools(ctx, []model.Pool{pool}))

	var name string
	var decimals0 int16
	err := store.pool.QueryRow(ctx, `SELECT name, decimals0 FROM pools WHERE chain_id = 1 AND pool_address = $1`, pool.Address).Scan(&name, &decimals0)
	require.NoError(t, err)
	assert.Equal(t, "renamed", name)
	assert.Equal(t, int16(6), decimals0)
}
