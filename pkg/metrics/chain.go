package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ChainMetrics records contract read calls against the RPC node.
type ChainMetrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewChainMetrics registers the chain call metrics on the provided
// registerer.
func NewChainMetrics(reg prometheus.Registerer) *ChainMetrics {
	if reg == nil {
		return &ChainMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chain_call_duration_seconds",
		Help:    "Duration of contract read calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"contract", "method"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chain_call_failures_total",
		Help: "Failed contract read calls.",
	}, []string{"contract", "method"})
	reg.MustRegister(duration, failures)
	return &ChainMetrics{
		duration: duration,
		failures: failures,
	}
}

// ObserveCall records one completed contract call.
func (c *ChainMetrics) ObserveCall(contract, method string, elapsed time.Duration, err error) {
	if c == nil || c.duration == nil {
		return
	}
	contract = normalizeLabel(contract)
	method = normalizeLabel(method)
	c.duration.WithLabelValues(contract, method).Observe(elapsed.Seconds())
	if err != nil {
		c.failures.WithLabelValues(contract, method).Inc()
	}
}
