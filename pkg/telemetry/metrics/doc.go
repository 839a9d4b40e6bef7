// Package metrics provides Prometheus metrics for the relay.
//
// # Metrics
//
// All names are prefixed with the configured namespace and subsystem
// (default "opensign_relay_").
//
//   - requests_total{operation,outcome}: proxied calls by operation class
//     and envelope outcome
//   - request_duration_seconds{operation}: end-to-end handling latency
//   - upstream_attempts_total{classification}: candidate responses by
//     classifier verdict, plus "transport_error"
//   - upstream_attempt_duration_seconds: time spent on one candidate,
//     retries included
//   - retries_total: backoff retries of large calls
//   - payload_stripped_total: bodies sent without the binary field
//   - logins_total{result}: automatic service logins
//   - session_cache_total{result}: session cache hits and misses
//   - journal_dropped_total: journal entries dropped under back-pressure
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	client := upstream.NewClient(cfg, upstream.WithObserver(collector))
//	mux.Handle("/metrics", collector.Handler())
//
// The collector uses its own registry so tests can create as many as they
// like without colliding on the global one.
package metrics
