package metrics

import (
	"opensign-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SessionMetrics tracks automatic logins and the session cache.
type SessionMetrics struct {
	loginsTotal *prometheus.CounterVec
	cacheTotal  *prometheus.CounterVec
}

// NewSessionMetrics creates and registers session metrics with the provided registry.
func NewSessionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SessionMetrics {
	sm := &SessionMetrics{
		loginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "logins_total",
				Help:      "Automatic service-account logins by result",
			},
			[]string{"result"},
		),
		cacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "session_cache_total",
				Help:      "Session cache lookups by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(sm.loginsTotal, sm.cacheTotal)
	return sm
}
