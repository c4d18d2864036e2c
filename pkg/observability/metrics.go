package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics the client toolkit emits.
type Metrics struct {
	// Gateway request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Silent-refresh metrics
	RefreshAttemptsTotal prometheus.Counter
	RefreshFailuresTotal prometheus.Counter
	SessionExpiredTotal  prometheus.Counter

	// Service-client cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all metrics on the given registry. A nil
// registry gets a fresh one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vantage_client_requests_total",
				Help: "Total gateway requests issued by the client",
			},
			[]string{"method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vantage_client_request_duration_seconds",
				Help:    "Gateway request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		RefreshAttemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vantage_client_token_refresh_attempts_total",
			Help: "Silent token refresh attempts",
		}),
		RefreshFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vantage_client_token_refresh_failures_total",
			Help: "Silent token refresh attempts that failed",
		}),
		SessionExpiredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vantage_client_session_expired_total",
			Help: "Sessions invalidated after unrecoverable 401s",
		}),
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vantage_client_cache_hits_total",
				Help: "Service-client read cache hits",
			},
			[]string{"service"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vantage_client_cache_misses_total",
				Help: "Service-client read cache misses",
			},
			[]string{"service"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RefreshAttemptsTotal,
		m.RefreshFailuresTotal,
		m.SessionExpiredTotal,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// Handler returns an HTTP handler exposing the registry, for long-lived
// processes that serve a metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
