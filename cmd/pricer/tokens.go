package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"priceScope/internal/config"
	"priceScope/internal/model"
	"priceScope/internal/storage/postgres"
)

// loadTokenSpecs validates tokens from the config file, falling back to the
// Postgres registry when the file lists none.
func loadTokenSpecs(ctx context.Context, cfg config.Config, store *postgres.Store, logger *zap.Logger) ([]model.TokenSpec, error) {
	tokens := cfg.Tokens
	source := "config"
	if len(tokens) == 0 && store != nil {
		loaded, err := store.LoadTokens(ctx)
		if err != nil {
			return nil, fmt.Errorf("load tokens: %w", err)
		}
		tokens = loaded
		source = "postgres"
	}

	specs, err := config.ValidateTokens(tokens)
	if err != nil {
		return nil, err
	}

	pools := 0
	for _, spec := range specs {
		pools += len(spec.Pools)
	}
	logger.Info("tokens loaded",
		zap.String("source", source),
		zap.Int("tokens", len(specs)),
		zap.Int("pools", pools),
	)
	return specs, nil
}

func openStore(ctx context.Context, dsn string) (*postgres.Store, error) {
	if dsn == "" {
		return nil, nil
	}
	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
