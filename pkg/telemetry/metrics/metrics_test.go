package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"opensign-hq/relay/pkg/auth"
	"opensign-hq/relay/pkg/config"
	"opensign-hq/relay/pkg/upstream"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Compile-time checks that the collector can observe both packages.
var (
	_ upstream.Observer = (*Collector)(nil)
	_ auth.Observer     = (*Collector)(nil)
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:                true,
		Namespace:              "test",
		Subsystem:              "relay",
		RequestDurationBuckets: []float64{0.1, 0.5, 1.0, 5.0},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	NewCollector(cfg, nil)

	if cfg.Namespace != "opensign" || cfg.Subsystem != "relay" {
		t.Errorf("unexpected defaults %q/%q", cfg.Namespace, cfg.Subsystem)
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		t.Error("expected default buckets")
	}
}

func TestCollector_RecordRequest(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordRequest("privileged", "success", 2*time.Second)
	collector.RecordRequest("privileged", "success", time.Second)
	collector.RecordRequest("ordinary", "exhausted", 100*time.Millisecond)

	if got := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues("privileged", "success")); got != 2 {
		t.Errorf("expected 2 privileged successes, got %f", got)
	}
	if got := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues("ordinary", "exhausted")); got != 1 {
		t.Errorf("expected 1 exhausted call, got %f", got)
	}
}

func TestCollector_UpstreamEvents(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordUpstreamAttempt("wrong_endpoint", 5*time.Millisecond)
	collector.RecordUpstreamAttempt("success", 300*time.Millisecond)
	collector.RecordRetry()
	collector.RecordRetry()
	collector.RecordPayloadStripped()

	if got := testutil.ToFloat64(collector.upstreamMetrics.attemptsTotal.WithLabelValues("wrong_endpoint")); got != 1 {
		t.Errorf("expected 1 wrong endpoint attempt, got %f", got)
	}
	if got := testutil.ToFloat64(collector.upstreamMetrics.retriesTotal); got != 2 {
		t.Errorf("expected 2 retries, got %f", got)
	}
	if got := testutil.ToFloat64(collector.upstreamMetrics.strippedTotal); got != 1 {
		t.Errorf("expected 1 stripped payload, got %f", got)
	}
}

func TestCollector_SessionEvents(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordLogin("success")
	collector.RecordLogin("failure")
	collector.RecordSessionCache("hit")
	collector.RecordSessionCache("hit")
	collector.RecordJournalDropped()

	if got := testutil.ToFloat64(collector.sessionMetrics.loginsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("expected 1 failed login, got %f", got)
	}
	if got := testutil.ToFloat64(collector.sessionMetrics.cacheTotal.WithLabelValues("hit")); got != 2 {
		t.Errorf("expected 2 cache hits, got %f", got)
	}
	if got := testutil.ToFloat64(collector.journalDropped); got != 1 {
		t.Errorf("expected 1 dropped entry, got %f", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RecordRequest("ordinary", "success", time.Second)
	collector.RecordRetry()

	if got := testutil.ToFloat64(collector.requestMetrics.requestsTotal.WithLabelValues("ordinary", "success")); got != 0 {
		t.Errorf("disabled collector should not record, got %f", got)
	}
	if got := testutil.ToFloat64(collector.upstreamMetrics.retriesTotal); got != 0 {
		t.Errorf("disabled collector should not record retries, got %f", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordRequest("ordinary", "success", time.Second)

	server := httptest.NewServer(collector.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("scrape failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), "test_relay_requests_total") {
		t.Errorf("scrape output missing requests_total:\n%s", body)
	}
}
