package metrics

import (
	"time"

	"opensign-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks inbound proxied calls.
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "requests_total",
				Help:      "Total number of proxied calls",
			},
			[]string{"operation", "outcome"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "request_duration_seconds",
				Help:      "Duration of proxied calls in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"operation"},
		),
	}

	registry.MustRegister(rm.requestsTotal, rm.requestDuration)
	return rm
}

// RecordRequest records one proxied call.
func (rm *RequestMetrics) RecordRequest(operation, outcome string, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(operation, outcome).Inc()
	rm.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
