package metrics

import (
	"time"

	"opensign-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every relay metric. It satisfies upstream.Observer and
// auth.Observer, so it can be handed directly to those packages.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	requestMetrics  *RequestMetrics
	upstreamMetrics *UpstreamMetrics
	sessionMetrics  *SessionMetrics

	journalDropped prometheus.Counter
}

// NewCollector creates a collector registered on registry. If registry is
// nil a fresh one is created.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// From fast wrong-endpoint hops up to the 300s signing timeout
		cfg.RequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
		journalDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "journal_dropped_total",
			Help:      "Journal entries dropped because the write buffer was full",
		}),
	}

	c.requestMetrics = NewRequestMetrics(cfg, registry)
	c.upstreamMetrics = NewUpstreamMetrics(cfg, registry)
	c.sessionMetrics = NewSessionMetrics(cfg, registry)
	registry.MustRegister(c.journalDropped)

	return c
}

// RecordRequest records a completed proxied call.
//
// Parameters:
//   - operation: operation class ("ordinary", "class_operation", "privileged")
//   - outcome: envelope outcome ("success", "api_error", "exhausted", ...)
//   - duration: total handling time
func (c *Collector) RecordRequest(operation, outcome string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordRequest(operation, outcome, duration)
}

// RecordUpstreamAttempt records the verdict on one candidate URL.
func (c *Collector) RecordUpstreamAttempt(classification string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.upstreamMetrics.RecordAttempt(classification, duration)
}

// RecordRetry records one backoff retry.
func (c *Collector) RecordRetry() {
	if !c.config.Enabled {
		return
	}
	c.upstreamMetrics.retriesTotal.Inc()
}

// RecordPayloadStripped records a body sent without its binary field.
func (c *Collector) RecordPayloadStripped() {
	if !c.config.Enabled {
		return
	}
	c.upstreamMetrics.strippedTotal.Inc()
}

// RecordLogin records an automatic login ("success" or "failure").
func (c *Collector) RecordLogin(result string) {
	if !c.config.Enabled {
		return
	}
	c.sessionMetrics.loginsTotal.WithLabelValues(result).Inc()
}

// RecordSessionCache records a session cache lookup ("hit" or "miss").
func (c *Collector) RecordSessionCache(result string) {
	if !c.config.Enabled {
		return
	}
	c.sessionMetrics.cacheTotal.WithLabelValues(result).Inc()
}

// RecordJournalDropped records a journal entry lost to back-pressure.
func (c *Collector) RecordJournalDropped() {
	if !c.config.Enabled {
		return
	}
	c.journalDropped.Inc()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
