package tracing

import (
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	// SamplerAlways samples all traces
	SamplerAlways = "always"

	// SamplerNever samples no traces
	SamplerNever = "never"

	// SamplerRatio samples a percentage of traces
	SamplerRatio = "ratio"
)

// createSampler creates the root sampler for strategy.
//
// # Strategies
//
// always records every trace. Useful when chasing a single misbehaving
// backend candidate.
//
//	telemetry:
//	  tracing:
//	    sampler: always
//
// never records nothing while still propagating trace context to the
// Parse Server.
//
// ratio records a fraction of traces chosen by trace ID, so every relay
// replica makes the same decision for the same trace.
//
//	telemetry:
//	  tracing:
//	    sampler: ratio
//	    sample_ratio: 0.05
//
// # Parent Decisions
//
// The chosen sampler is wrapped in ParentBased. A request that arrives
// with a sampled traceparent is always recorded and an unsampled one never
// is, whatever the local strategy.
func createSampler(strategy string, ratio float64) (sdktrace.Sampler, error) {
	var baseSampler sdktrace.Sampler

	switch strategy {
	case SamplerAlways:
		baseSampler = sdktrace.AlwaysSample()

	case SamplerNever:
		baseSampler = sdktrace.NeverSample()

	case SamplerRatio:
		if ratio < 0.0 || ratio > 1.0 {
			return nil, fmt.Errorf("sample ratio must be between 0.0 and 1.0, got %f", ratio)
		}
		baseSampler = sdktrace.TraceIDRatioBased(ratio)

	default:
		return nil, fmt.Errorf("unknown sampler strategy: %s (valid: always, never, ratio)", strategy)
	}

	return sdktrace.ParentBased(baseSampler), nil
}
