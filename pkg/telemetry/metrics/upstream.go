package metrics

import (
	"time"

	"opensign-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics tracks outbound candidate attempts.
type UpstreamMetrics struct {
	attemptsTotal   *prometheus.CounterVec
	attemptDuration prometheus.Histogram
	retriesTotal    prometheus.Counter
	strippedTotal   prometheus.Counter
}

// NewUpstreamMetrics creates and registers upstream metrics with the provided registry.
func NewUpstreamMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *UpstreamMetrics {
	um := &UpstreamMetrics{
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_attempts_total",
				Help:      "Candidate URL attempts by response classification",
			},
			[]string{"classification"},
		),

		attemptDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "upstream_attempt_duration_seconds",
				Help:      "Time spent on one candidate URL, retries included",
				Buckets:   cfg.RequestDurationBuckets,
			},
		),

		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "retries_total",
			Help:      "Backoff retries of large calls",
		}),

		strippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "payload_stripped_total",
			Help:      "Bodies sent with the binary document field removed",
		}),
	}

	registry.MustRegister(
		um.attemptsTotal,
		um.attemptDuration,
		um.retriesTotal,
		um.strippedTotal,
	)
	return um
}

// RecordAttempt records one candidate attempt.
func (um *UpstreamMetrics) RecordAttempt(classification string, duration time.Duration) {
	um.attemptsTotal.WithLabelValues(classification).Inc()
	um.attemptDuration.Observe(duration.Seconds())
}
