package internal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rewrite lookup outcomes.
const (
	rewriteCacheHit = "cache_hit"
	rewriteStoreHit = "store_hit"
	rewriteMiss     = "miss"
	rewriteError    = "error"
)

// MetricsConfig configures router metrics.
type MetricsConfig struct {
	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Namespace is the metrics namespace (default: "cmsroute").
	Namespace string

	// Buckets are the histogram buckets for resolve latency.
	// Default: prometheus.DefBuckets
	Buckets []float64
}

// MetricsOption configures router metrics.
type MetricsOption func(*MetricsConfig)

// WithMetricsRegistry sets the Prometheus registry.
func WithMetricsRegistry(reg prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		if reg != nil {
			c.Registry = reg
		}
	}
}

// WithMetricsNamespace sets the metrics namespace.
func WithMetricsNamespace(ns string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = ns
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the latency histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// Metrics holds the Prometheus collectors shared by all routers of a
// process. Create it once per registry and hand it to every router with
// WithMetrics. A nil *Metrics records nothing.
type Metrics struct {
	resolutions *prometheus.CounterVec
	rewrites    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	builds      *prometheus.CounterVec
}

// NewMetrics registers the router collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := MetricsConfig{
		Registry:  prometheus.DefaultRegisterer,
		Namespace: "cmsroute",
		Buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	factory := promauto.With(cfg.Registry)

	return &Metrics{
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "resolutions_total",
			Help:        "Total number of route resolutions by router and status",
			ConstLabels: cfg.ConstLabels,
		}, []string{"router", "status"}),

		rewrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "rewrite_lookups_total",
			Help:        "Total number of rewrite lookups by router and outcome",
			ConstLabels: cfg.ConstLabels,
		}, []string{"router", "outcome"}),

		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "resolve_duration_seconds",
			Help:        "Route resolution duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"router"}),

		builds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "table_builds_total",
			Help:        "Total number of route table loads by router and source",
			ConstLabels: cfg.ConstLabels,
		}, []string{"router", "source"}),
	}
}

func (m *Metrics) observeResolve(router string, status Status, took time.Duration) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(router, status.String()).Inc()
	m.latency.WithLabelValues(router).Observe(took.Seconds())
}

func (m *Metrics) observeRewrite(router, outcome string) {
	if m == nil {
		return
	}
	m.rewrites.WithLabelValues(router, outcome).Inc()
}

// observeBuild records a table load; source is "cache", "scan" or "error".
func (m *Metrics) observeBuild(router, source string) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(router, source).Inc()
}
