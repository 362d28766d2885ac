package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"priceScope/internal/chain"
	"priceScope/internal/config"
	"priceScope/internal/dex"
	"priceScope/internal/metrics"
	"priceScope/internal/model"
	"priceScope/internal/price"
	"priceScope/internal/storage"
)

func runPricer(cmd *cobra.Command, _ []string) error {
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

	collector := metrics.NewCollector()
	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, collector, logger)
		defer shutdown()
	}

	resolver := dex.NewResolver(cfg.CounterDecimals)
	adapters := dex.NewAdapterSet(resolver, dex.NewDecimalsCache())
	agg := price.NewAggregator(price.Config{
		CallTimeout:    cfg.CallTimeout,
		MaxConcurrency: cfg.MaxConcurrency,
	}, dex.NewChainReader(chainClient), adapters, logger, collector)

	var sink storage.ReportSink
	if cfg.Report != "" {
		sink = storage.NewJsonlReport(cfg.Report)
	}

	logger.Info("pricer start",
		zap.String("backend", cfg.Backend),
		zap.Uint64("chain_id", chainID.Uint64()),
		zap.Int("tokens", len(specs)),
		zap.Duration("call_timeout", cfg.CallTimeout),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Duration("interval", cfg.Interval),
		zap.String("report", cfg.Report),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)

	pass := func() error {
		// Quotes read the latest state, so this block is approximate.
		block, err := chainClient.LatestBlockNumber(ctx)
		if err != nil {
			logger.Warn("latest block", zap.Error(err))
		}
		logger.Debug("pass start", zap.Uint64("block", block))

		start := time.Now()
		results := agg.PriceTokens(ctx, specs, cfg.FailFast)
		printPrices(cmd.OutOrStdout(), results, since(start))

		if sink != nil {
			if err := sink.WritePass(buildReports(results, block, time.Now())); err != nil {
				return err
			}
		}
		if cfg.FailFast {
			for _, result := range results {
				if result.Err != nil {
					return fmt.Errorf("token %s: %w", result.Token.Name, result.Err)
				}
			}
		}
		return nil
	}

	if err := pass(); err != nil {
		return err
	}
	if cfg.Interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("pricer stop")
			return nil
		case <-ticker.C:
			if err := pass(); err != nil {
				return err
			}
		}
	}
}

// buildReports tags every report with the block the pass started at; 0 when unknown.
func buildReports(results []model.TokenPrice, block uint64, at time.Time) []model.PriceReport {
	reports := make([]model.PriceReport, 0, len(results))
	for _, result := range results {
		report := model.NewPriceReport(result, at)
		report.Block = block
		reports = append(reports, report)
	}
	return reports
}

func serveMetrics(addr string, collector *metrics.Collector, logger *zap.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", zap.Error(err))
		}
	}()
	logger.Info("metrics listening", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
