package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "pricer",
		Short:        "Liquidity-weighted DEX token pricer",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path (default ./config.json)")
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before config")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Price every configured token",
		RunE:  runPricer,
	}

	runCmd.Flags().String("rpc", "", "Ethereum RPC URL (overrides rpc_url)")
	runCmd.Flags().String("backend", "rpc", "data backend (rpc)")
	runCmd.Flags().Duration("call-timeout", 0, "timeout per pool quote, 0 means none")
	runCmd.Flags().Int("max-concurrency", 0, "max in-flight pool quotes per token, 0 means unlimited")
	runCmd.Flags().String("report", "", "JSONL report path, rewritten every pass")
	runCmd.Flags().Bool("fail-fast", false, "stop at the first token without a price")
	runCmd.Flags().Duration("interval", 0, "repeat passes at this interval, 0 means run once")
	runCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9102)")
	runCmd.Flags().String("pg-dsn", "", "Postgres DSN for the token registry")
	runCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(runCmd)

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show on-chain tokens of every configured pool",
		RunE:  runInspect,
	}

	inspectCmd.Flags().String("rpc", "", "Ethereum RPC URL (overrides rpc_url)")
	inspectCmd.Flags().String("backend", "rpc", "data backend (rpc)")
	inspectCmd.Flags().String("pg-dsn", "", "Postgres DSN; pool metadata is upserted when set")
	inspectCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(inspectCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}

func since(start time.Time) time.Duration {
	return time.Since(start).Round(time.Millisecond)
}
