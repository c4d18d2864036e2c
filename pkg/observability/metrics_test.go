package observability

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewMetricsRegisters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)

	m.RequestsTotal.WithLabelValues("GET", "200").Inc()
	m.RefreshAttemptsTotal.Inc()
	m.CacheHitsTotal.WithLabelValues("leads").Inc()

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"vantage_client_requests_total",
		"vantage_client_token_refresh_attempts_total",
		"vantage_client_cache_hits_total",
	} {
		if !names[want] {
			t.Errorf("metric %s not registered", want)
		}
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(nil)
	m.SessionExpiredTotal.Inc()

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "vantage_client_session_expired_total 1") {
		t.Errorf("expected exposition to contain session expired counter, got:\n%s", w.Body.String())
	}
}
