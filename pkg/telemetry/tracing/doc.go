// Package tracing provides OpenTelemetry tracing for the relay.
//
// When enabled, spans are exported over OTLP gRPC and W3C Trace Context
// is installed as the global propagator, so the otelhttp server and
// client wrappers join inbound and outbound calls into one trace.
//
// Each proxied call produces a server span from the HTTP middleware, a
// "relay.forward" span from the handler, and one client span per
// outbound attempt from the upstream transport.
//
// # Sampling
//
//   - always: sample all traces (development)
//   - never: sample nothing
//   - ratio: sample a fraction of traces by trace ID
//
// Every sampler is wrapped in ParentBased so upstream sampling decisions
// are respected.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version.Version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "relay.forward")
//	defer span.End()
package tracing
