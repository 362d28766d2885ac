package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"priceScope/internal/chain"
	"priceScope/internal/config"
	"priceScope/internal/dex"
	"priceScope/internal/model"
)

type poolInspection struct {
	Token    model.TokenSpec
	Pool     model.PoolSpec
	Token0   model.TokenMeta
	Token1   model.TokenMeta
	Contains bool
	Err      error

	// Set when the resolver scale disagrees with the counter-asset's on-chain decimals.
	CounterNote string
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	specs, err := loadTokenSpecs(ctx, cfg, store, logger)
	if err != nil {
		return err
	}

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	start := time.Now()
	reader := dex.NewChainReader(chainClient)
	resolver := dex.NewResolver(cfg.CounterDecimals)
	metas := dex.NewTokenMetaCache()

	var (
		rows  []poolInspection
		pools []model.Pool
	)
	for _, spec := range specs {
		for _, pool := range spec.Pools {
			row := inspectPool(ctx, reader, resolver, metas, spec, pool, logger)
			rows = append(rows, row)
			if row.Err == nil {
				pools = append(pools, model.Pool{
					ChainID:   chainID.Uint64(),
					Address:   pool.Address.Hex(),
					Name:      pool.Name,
					Protocol:  pool.Protocol.String(),
					Token0:    row.Token0.Address,
					Token1:    row.Token1.Address,
					Decimals0: row.Token0.Decimals,
					Decimals1: row.Token1.Decimals,
				})
			}
		}
	}

	printInspections(cmd.OutOrStdout(), rows, since(start))

	if store != nil {
		if err := store.UpsertPools(ctx, pools); err != nil {
			return err
		}
		logger.Info("pools upserted", zap.Int("pools", len(pools)))
	}
	return nil
}

func inspectPool(ctx context.Context, reader *dex.ChainReader, resolver *dex.Resolver, metas *dex.TokenMetaCache, spec model.TokenSpec, pool model.PoolSpec, logger *zap.Logger) poolInspection {
	row := poolInspection{Token: spec, Pool: pool}

	var tokens [2]common.Address
	for slot := range tokens {
		addr, err := reader.TokenAddress(ctx, pool.Address, slot)
		if err != nil {
			row.Err = err
			logger.Warn("inspect pool", zap.String("pool", pool.Name), zap.String("pool_address", pool.Address.Hex()), zap.Error(err))
			return row
		}
		tokens[slot] = addr
	}

	for slot, addr := range tokens {
		meta, ok := metas.Get(addr)
		if !ok {
			var err error
			meta, err = dex.FetchTokenMeta(ctx, reader, addr, logger)
			if err != nil {
				row.Err = err
				logger.Warn("token metadata", zap.String("token", addr.Hex()), zap.Error(err))
				return row
			}
			metas.Set(addr, meta)
		}
		if slot == 0 {
			row.Token0 = meta
		} else {
			row.Token1 = meta
		}
	}

	row.Contains = tokens[0] == spec.Address || tokens[1] == spec.Address
	if row.Contains && pool.Protocol != model.ConcentratedLiquidityV3 {
		counter, meta := tokens[1], row.Token1
		if tokens[1] == spec.Address {
			counter, meta = tokens[0], row.Token0
		}
		row.CounterNote = counterNote(resolver, counter, meta.Decimals)
	}
	return row
}

// counterNote flags constant-product pools whose counter-asset would be
// mis-scaled by the resolver.
func counterNote(resolver *dex.Resolver, counter common.Address, onChain uint8) string {
	if resolver.Decimals(counter) == onChain {
		return ""
	}
	source := "configured"
	if !resolver.Known(counter) {
		source = "default"
	}
	return fmt.Sprintf("counter scale %s (%s), on-chain decimals %d", resolver.Scale(counter).String(), source, onChain)
}

func printInspections(w io.Writer, rows []poolInspection, elapsed time.Duration) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOKEN\tPOOL\tPROTOCOL\tTOKEN0\tTOKEN1\tSTATUS")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Token.Name,
			row.Pool.Name,
			row.Pool.Protocol,
			describeToken(row.Token0),
			describeToken(row.Token1),
			inspectStatus(row),
		)
	}
	tw.Flush()
	fmt.Fprintf(w, "Completed in %s\n", elapsed)
}

func describeToken(meta model.TokenMeta) string {
	if meta.Address == "" {
		return "-"
	}
	symbol := meta.Symbol
	if symbol == "" {
		symbol = "?"
	}
	return fmt.Sprintf("%s(%d)", symbol, meta.Decimals)
}

func inspectStatus(row poolInspection) string {
	switch {
	case row.Err != nil:
		return "FAILED: " + row.Err.Error()
	case !row.Contains:
		return "MISMATCH: " + dex.ErrTokenNotInPool.Error()
	case row.CounterNote != "":
		return "WARN: " + row.CounterNote
	default:
		return "OK"
	}
}
