// Package metrics exposes Prometheus collectors for pricing passes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pricer"

// Pool quote outcomes.
const (
	StatusOK         = "ok"
	StatusRPCError   = "rpc_error"
	StatusNotInPool  = "token_not_in_pool"
	StatusEmptyPool  = "empty_pool"
	StatusInvalid    = "invalid_quote"
	StatusOtherError = "error"
)

// Collector holds the pricer collectors on a private registry.
// A nil *Collector records nothing.
type Collector struct {
	registry *prometheus.Registry

	poolQuotes     *prometheus.CounterVec
	quoteLatency   *prometheus.HistogramVec
	tokenPrice     *prometheus.GaugeVec
	tokenFailures  *prometheus.CounterVec
	aggregateTime  *prometheus.HistogramVec
	passesTotal    prometheus.Counter
	lastPassUnixTs prometheus.Gauge
}

func NewCollector() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.poolQuotes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "quotes_total",
			Help:      "Pool quote attempts by protocol and outcome",
		},
		[]string{"protocol", "status"},
	)
	c.quoteLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "quote_duration_seconds",
			Help:      "Time taken to quote a single pool",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
		[]string{"protocol"},
	)
	c.tokenPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "price",
			Help:      "Last liquidity-weighted price per token",
		},
		[]string{"token", "address"},
	)
	c.tokenFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "failures_total",
			Help:      "Tokens that produced no price",
		},
		[]string{"token"},
	)
	c.aggregateTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "aggregate_duration_seconds",
			Help:      "Time taken to fan out and aggregate one token",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"token"},
	)
	c.passesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "passes_total",
		Help:      "Completed pricing passes",
	})
	c.lastPassUnixTs = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_pass_timestamp_seconds",
		Help:      "Unix time of the last completed pass",
	})

	c.registry.MustRegister(
		c.poolQuotes,
		c.quoteLatency,
		c.tokenPrice,
		c.tokenFailures,
		c.aggregateTime,
		c.passesTotal,
		c.lastPassUnixTs,
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordPoolQuote(protocol, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.poolQuotes.WithLabelValues(protocol, status).Inc()
	c.quoteLatency.WithLabelValues(protocol).Observe(duration.Seconds())
}

// RecordTokenPrice sets the price gauge, or counts a failure when err is non-nil.
func (c *Collector) RecordTokenPrice(token, address string, price float64, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.aggregateTime.WithLabelValues(token).Observe(duration.Seconds())
	if err != nil {
		c.tokenFailures.WithLabelValues(token).Inc()
		return
	}
	c.tokenPrice.WithLabelValues(token, address).Set(price)
}

func (c *Collector) RecordPass(at time.Time) {
	if c == nil {
		return
	}
	c.passesTotal.Inc()
	c.lastPassUnixTs.Set(float64(at.Unix()))
}
