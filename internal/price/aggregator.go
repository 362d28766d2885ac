// Package price fans pool quotes out per token and reduces them to a
// liquidity-weighted price.
package price

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"priceScope/internal/dex"
	"priceScope/internal/metrics"
	"priceScope/internal/model"
)

// Config controls the per-token fan-out.
type Config struct {
	// CallTimeout bounds each pool quote. Zero means no timeout.
	CallTimeout time.Duration
	// MaxConcurrency caps in-flight pool quotes per token. Zero means one goroutine per pool.
	MaxConcurrency int
}

// Aggregator prices tokens from their configured pools.
type Aggregator struct {
	cfg      Config
	reader   dex.Reader
	adapters *dex.AdapterSet
	logger   *zap.Logger
	metrics  *metrics.Collector
	now      func() time.Time
}

func NewAggregator(cfg Config, reader dex.Reader, adapters *dex.AdapterSet, logger *zap.Logger, collector *metrics.Collector) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if adapters == nil {
		adapters = dex.NewAdapterSet(nil, nil)
	}

	return &Aggregator{
		cfg:      cfg,
		reader:   reader,
		adapters: adapters,
		logger:   logger,
		metrics:  collector,
		now:      time.Now,
	}
}

// PriceToken quotes every pool of token concurrently, waits for all of them,
// and returns the weighted price. Pool failures are logged and dropped; the
// result carries an error only when no usable quote remains.
func (a *Aggregator) PriceToken(ctx context.Context, token model.TokenSpec) model.TokenPrice {
	started := a.now()
	result := model.TokenPrice{
		Token:  token,
		Quotes: make([]model.PoolQuote, len(token.Pools)),
	}

	// Plain group, not WithContext: one failed pool must not cancel the others.
	var g errgroup.Group
	if a.cfg.MaxConcurrency > 0 {
		g.SetLimit(a.cfg.MaxConcurrency)
	}
	for i, pool := range token.Pools {
		i, pool := i, pool
		g.Go(func() error {
			result.Quotes[i] = a.quotePool(ctx, token, pool)
			return nil
		})
	}
	_ = g.Wait()

	quotes := make([]model.Quote, 0, len(result.Quotes))
	for _, pq := range result.Quotes {
		if pq.Err != nil {
			a.logger.Warn("pool quote failed",
				zap.String("token", token.Name),
				zap.String("pool", pq.Pool.Name),
				zap.String("pool_address", pq.Pool.Address.Hex()),
				zap.String("protocol", pq.Pool.Protocol.String()),
				zap.Error(pq.Err),
			)
			continue
		}
		quotes = append(quotes, pq.Quote)
	}

	result.Price, result.Err = WeightedMean(quotes)
	elapsed := a.now().Sub(started)
	a.metrics.RecordTokenPrice(token.Name, token.Address.Hex(), result.Price, elapsed, result.Err)

	if result.Err != nil {
		a.logger.Error("token price failed",
			zap.String("token", token.Name),
			zap.Int("pools", len(token.Pools)),
			zap.Int("succeeded", len(quotes)),
			zap.Error(result.Err),
		)
	} else {
		a.logger.Debug("token priced",
			zap.String("token", token.Name),
			zap.Float64("price", result.Price),
			zap.Int("pools", len(token.Pools)),
			zap.Int("succeeded", len(quotes)),
			zap.Duration("elapsed", elapsed),
		)
	}
	return result
}

// PriceTokens prices tokens one after another. With failFast the pass stops
// after the first token without a price; results so far are returned.
func (a *Aggregator) PriceTokens(ctx context.Context, tokens []model.TokenSpec, failFast bool) []model.TokenPrice {
	results := make([]model.TokenPrice, 0, len(tokens))
	for _, token := range tokens {
		if ctx.Err() != nil {
			break
		}
		result := a.PriceToken(ctx, token)
		results = append(results, result)
		if failFast && result.Err != nil {
			break
		}
	}
	a.metrics.RecordPass(a.now())
	return results
}

func (a *Aggregator) quotePool(ctx context.Context, token model.TokenSpec, pool model.PoolSpec) model.PoolQuote {
	started := a.now()
	out := model.PoolQuote{Pool: pool}

	adapter, err := a.adapters.For(pool.Protocol)
	if err != nil {
		out.Err = err
		a.metrics.RecordPoolQuote(pool.Protocol.String(), metrics.StatusOtherError, 0)
		return out
	}

	if a.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.CallTimeout)
		defer cancel()
	}
	out.Quote, out.Err = adapter.Quote(ctx, a.reader, pool.Address, token.Address)
	if out.Err == nil {
		out.Err = checkQuote(out.Quote)
	}
	a.metrics.RecordPoolQuote(pool.Protocol.String(), quoteStatus(out.Err), a.now().Sub(started))
	return out
}

func quoteStatus(err error) string {
	var rpcErr *dex.RPCError
	switch {
	case err == nil:
		return metrics.StatusOK
	case errors.As(err, &rpcErr):
		return metrics.StatusRPCError
	case errors.Is(err, dex.ErrTokenNotInPool):
		return metrics.StatusNotInPool
	case errors.Is(err, dex.ErrEmptyPool):
		return metrics.StatusEmptyPool
	case errors.Is(err, ErrInvalidQuote):
		return metrics.StatusInvalid
	default:
		return metrics.StatusOtherError
	}
}
