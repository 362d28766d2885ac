package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"priceScope/internal/model"
)

// Schema creates the token registry and pool metadata tables.
const Schema = `
CREATE TABLE IF NOT EXISTS price_tokens (
	token_address TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	enabled       BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS price_pools (
	token_address TEXT NOT NULL REFERENCES price_tokens (token_address),
	pool_address  TEXT NOT NULL,
	name          TEXT NOT NULL,
	protocol      TEXT NOT NULL,
	PRIMARY KEY (token_address, pool_address)
);

CREATE TABLE IF NOT EXISTS pools (
	chain_id     BIGINT NOT NULL,
	pool_address TEXT NOT NULL,
	name         TEXT NOT NULL,
	protocol     TEXT NOT NULL,
	token0       TEXT NOT NULL,
	token1       TEXT NOT NULL,
	decimals0    SMALLINT NOT NULL,
	decimals1    SMALLINT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address)
);
`

// Store provides the Postgres token registry and pool metadata.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates missing tables.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// LoadTokens reads enabled tokens and their pools as raw entries, so they go
// through the same validation as file-based tokens.
func (s *Store) LoadTokens(ctx context.Context) ([]model.TokenEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT t.name, t.token_address, p.name, p.pool_address, p.protocol
		FROM price_tokens t
		LEFT JOIN price_pools p ON p.token_address = t.token_address
		WHERE t.enabled
		ORDER BY t.name, t.token_address, p.name, p.pool_address
	`)
	if err != nil {
		return nil, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var (
		tokens []model.TokenEntry
		index  = make(map[string]int)
	)
	for rows.Next() {
		var (
			tokenName, tokenAddress        string
			poolName, poolAddress, protocol *string
		)
		if err := rows.Scan(&tokenName, &tokenAddress, &poolName, &poolAddress, &protocol); err != nil {
			return nil, fmt.Errorf("scan token row: %w", err)
		}
		i, ok := index[tokenAddress]
		if !ok {
			tokens = append(tokens, model.TokenEntry{Name: tokenName, Token: tokenAddress})
			i = len(tokens) - 1
			index[tokenAddress] = i
		}
		if poolAddress == nil {
			continue
		}
		tokens[i].Pools = append(tokens[i].Pools, model.PoolEntry{
			Name:     deref(poolName),
			Address:  *poolAddress,
			Protocol: deref(protocol),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return tokens, nil
}

// UpsertPools inserts or updates pool metadata.
func (s *Store) UpsertPools(ctx context.Context, pools []model.Pool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO pools (
				chain_id, pool_address, name, protocol, token0, token1, decimals0, decimals1, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
			ON CONFLICT (chain_id, pool_address)
			DO UPDATE SET
				name = EXCLUDED.name,
				protocol = EXCLUDED.protocol,
				token0 = EXCLUDED.token0,
				token1 = EXCLUDED.token1,
				decimals0 = EXCLUDED.decimals0,
				decimals1 = EXCLUDED.decimals1,
				updated_at = now()
		`,
			int64(pool.ChainID),
			pool.Address,
			pool.Name,
			pool.Protocol,
			pool.Token0,
			pool.Token1,
			int16(pool.Decimals0),
			int16(pool.Decimals1),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert pool: %w", err)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
