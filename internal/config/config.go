package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"priceScope/internal/model"
)

const (
	BackendRPC        = "rpc"
	BackendSubstreams = "substreams"
)

// Config holds configuration values loaded from flags, env, .env, or config file.
type Config struct {
	Backend         string
	RPCURL          string
	LogLevel        string
	CallTimeout     time.Duration
	MaxConcurrency  int
	Report          string
	FailFast        bool
	Interval        time.Duration
	MetricsAddr     string
	PGDSN           string
	CounterDecimals map[common.Address]uint8
	Tokens          []model.TokenEntry
}

// Load merges config file, environment variables, and flags into Config.
// Tokens are decoded but not validated; see Config.TokenSpecs.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	if err := loadEnvFile(flags); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("PRICER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend", BackendRPC)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	rpcURL := v.GetString("rpc")
	if rpcURL == "" {
		rpcURL = v.GetString("rpc_url")
	}

	cfg := Config{
		Backend:        strings.ToLower(strings.TrimSpace(v.GetString("backend"))),
		RPCURL:         rpcURL,
		LogLevel:       v.GetString("log-level"),
		CallTimeout:    v.GetDuration("call-timeout"),
		MaxConcurrency: v.GetInt("max-concurrency"),
		Report:         v.GetString("report"),
		FailFast:       v.GetBool("fail-fast"),
		Interval:       v.GetDuration("interval"),
		MetricsAddr:    v.GetString("metrics-addr"),
		PGDSN:          v.GetString("pg-dsn"),
	}

	if err := v.UnmarshalKey("tokens", &cfg.Tokens); err != nil {
		return Config{}, fmt.Errorf("decode tokens: %w", err)
	}
	counterDecimals, err := parseCounterDecimals(v.GetStringMap("counter_decimals"))
	if err != nil {
		return Config{}, err
	}
	cfg.CounterDecimals = counterDecimals

	if err := ValidateBackend(cfg.Backend, cfg.RPCURL); err != nil {
		return Config{}, err
	}
	if cfg.MaxConcurrency < 0 {
		return Config{}, fmt.Errorf("%w: max-concurrency must be >= 0", ErrInvalidConfig)
	}
	if cfg.CallTimeout < 0 || cfg.Interval < 0 {
		return Config{}, fmt.Errorf("%w: durations must be >= 0", ErrInvalidConfig)
	}

	return cfg, nil
}

// TokenSpecs validates the configured tokens.
func (c Config) TokenSpecs() ([]model.TokenSpec, error) {
	return ValidateTokens(c.Tokens)
}

// ValidateBackend checks the data source selection.
func ValidateBackend(backend, rpcURL string) error {
	switch backend {
	case BackendRPC:
		if strings.TrimSpace(rpcURL) == "" {
			return fmt.Errorf("%w: backend=rpc but no rpc url provided", ErrInvalidConfig)
		}
		return nil
	case BackendSubstreams:
		return fmt.Errorf("%w: substreams backend not yet supported", ErrInvalidConfig)
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, backend)
	}
}

func loadEnvFile(flags *pflag.FlagSet) error {
	path := ".env"
	if flags != nil {
		if f := flags.Lookup("env-file"); f != nil {
			path = f.Value.String()
		}
	}
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func parseCounterDecimals(raw map[string]interface{}) (map[common.Address]uint8, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[common.Address]uint8, len(raw))
	for key, val := range raw {
		if !isHexAddress(key) {
			return nil, fmt.Errorf("%w: invalid counter_decimals address %q", ErrInvalidConfig, key)
		}
		decimals, err := cast.ToIntE(val)
		if err != nil {
			return nil, fmt.Errorf("%w: counter_decimals %s: %v", ErrInvalidConfig, key, err)
		}
		if decimals < 0 || decimals > 255 {
			return nil, fmt.Errorf("%w: counter_decimals %s out of range: %d", ErrInvalidConfig, key, decimals)
		}
		out[common.HexToAddress(key)] = uint8(decimals)
	}
	return out, nil
}
