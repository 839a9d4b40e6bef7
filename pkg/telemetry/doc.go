// Package telemetry groups the relay's observability packages.
//
//   - logging: slog setup with credential redaction and request IDs
//   - metrics: Prometheus collector for proxied calls, candidate
//     attempts, retries, logins and the journal
//   - tracing: OpenTelemetry tracer with OTLP gRPC export
//   - health: liveness, readiness and version endpoints
//
// Metrics and tracing are wired from configuration at startup in
// cmd/relay; logging is installed as the slog default so packages log
// through slog.Default().With("component", ...).
package telemetry
