package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"opensign-hq/relay/pkg/auth"
	"opensign-hq/relay/pkg/config"
	"opensign-hq/relay/pkg/journal"
	"opensign-hq/relay/pkg/proxy"
	"opensign-hq/relay/pkg/proxy/middleware"
	"opensign-hq/relay/pkg/proxy/types"
	"opensign-hq/relay/pkg/telemetry/tracing"
	"opensign-hq/relay/pkg/upstream"
)

// Forwarder performs a logical call against the backend.
type Forwarder interface {
	Forward(ctx context.Context, req *upstream.OutboundRequest) *upstream.Outcome
}

// RequestRecorder records per-request metrics.
type RequestRecorder interface {
	RecordRequest(operation, outcome string, duration time.Duration)
}

// JournalRecorder accepts journal entries without blocking.
type JournalRecorder interface {
	Record(e *journal.Entry) bool
}

// SpanStarter starts tracing spans.
type SpanStarter interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// outcomeRejected labels requests refused before any outbound call.
const outcomeRejected = "rejected"

// RelayHandler serves the catch-all proxy route.
type RelayHandler struct {
	upstreamCfg *config.UpstreamConfig
	corsCfg     *config.CORSConfig
	cookieName  string

	forwarder  Forwarder
	classifier *auth.Classifier
	resolver   *auth.Resolver
	shaper     *upstream.Shaper

	metrics RequestRecorder
	journal JournalRecorder
	tracer  SpanStarter
	logger  *slog.Logger
}

// Option configures a RelayHandler.
type Option func(*RelayHandler)

// WithMetrics records request counts and durations.
func WithMetrics(m RequestRecorder) Option {
	return func(h *RelayHandler) { h.metrics = m }
}

// WithJournal records every proxied call.
func WithJournal(j JournalRecorder) Option {
	return func(h *RelayHandler) { h.journal = j }
}

// WithTracer wraps each forward in a span.
func WithTracer(t SpanStarter) Option {
	return func(h *RelayHandler) { h.tracer = t }
}

// NewRelayHandler creates the proxy handler.
func NewRelayHandler(cfg *config.Config, forwarder Forwarder, classifier *auth.Classifier,
	resolver *auth.Resolver, shaper *upstream.Shaper, opts ...Option) *RelayHandler {
	h := &RelayHandler{
		upstreamCfg: &cfg.Upstream,
		corsCfg:     &cfg.Proxy.CORS,
		cookieName:  cfg.Upstream.SessionCookie,
		forwarder:   forwarder,
		classifier:  classifier,
		resolver:    resolver,
		shaper:      shaper,
		tracer:      noop.NewTracerProvider().Tracer(""),
		logger:      slog.Default().With("component", "proxy.relay"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	requestID := middleware.GetRequestID(ctx)

	switch r.Method {
	case http.MethodOptions:
		// Preflight is answered even when CORS is disabled for other
		// responses, so browser clients can always reach the route.
		middleware.SetCORSHeaders(w, r, h.corsCfg)
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		w.Header().Set("Allow", "GET, POST, PUT, DELETE, OPTIONS")
		h.writeError(ctx, w, http.StatusMethodNotAllowed, types.NewErrorResponse(types.MessageMethodNotAllowed))
		return
	}

	req, err := proxy.ParseRequest(r, chi.URLParam(r, "*"))
	if err != nil {
		status, resp := proxy.HandleError(err, h.upstreamCfg)
		h.logger.WarnContext(ctx, "rejected inbound request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
		h.writeError(ctx, w, status, resp)
		h.record(requestID, start, &proxy.InboundRequest{Method: r.Method, Path: r.URL.Path},
			"unknown", outcomeRejected, status, auth.SourceNone, nil)
		return
	}

	class := h.classifier.Classify(req.Method, req.Path)

	// Outbound work, automatic login included, must survive a client that
	// gives up; the per-class client timeouts bound the call instead.
	detached := context.WithoutCancel(ctx)

	var resolution auth.Resolution
	if req.Regime != upstream.RegimePassthrough {
		resolution = h.resolver.Resolve(detached, class, auth.Extract(r, h.cookieName))
	} else {
		resolution.Source = auth.SourceNone
	}

	outbound := req.Outbound(resolution.Header)
	outbound.Large = h.shaper.IsLarge(req.Path, len(req.Body))

	fwdCtx, span := h.tracer.Start(detached, "relay.forward",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			tracing.AttrOperation.String(class.String()),
			tracing.AttrCredentialSource.String(string(resolution.Source)),
			tracing.AttrLarge.Bool(outbound.Large),
		),
	)
	outcome := h.forwarder.Forward(fwdCtx, outbound)

	span.SetAttributes(
		tracing.AttrOutcome.String(outcome.Kind.String()),
		tracing.AttrStripped.Bool(outcome.Stripped()),
		tracing.AttrCandidates.Int(len(outcome.Attempts)),
		tracing.AttrAnsweringURL.String(outcome.URL),
	)
	tracing.SetStatus(span, outcome.Err)
	span.End()

	status := outcome.Status
	switch outcome.Kind {
	case upstream.OutcomeSuccess, upstream.OutcomeAPIError:
		if err := proxy.WriteUpstreamResponse(w, outcome.Status, outcome.Body); err != nil {
			h.logger.ErrorContext(ctx, "failed to write response", "error", err)
		}
	default:
		var resp *types.ErrorResponse
		status, resp = proxy.HandleError(outcome.Err, h.upstreamCfg)
		h.writeError(ctx, w, status, resp)
	}

	h.logger.InfoContext(ctx, "proxied request",
		"method", req.Method,
		"path", req.Path,
		"regime", req.Regime.String(),
		"operation", class.String(),
		"credential_source", string(resolution.Source),
		"large", outbound.Large,
		"outcome", outcome.Kind.String(),
		"status", status,
		"candidates", len(outcome.Attempts),
		"stripped", outcome.Stripped(),
		"answering_url", outcome.URL,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	h.record(requestID, start, req, class.String(), outcome.Kind.String(), status, resolution.Source, outcome)
}

func (h *RelayHandler) writeError(ctx context.Context, w http.ResponseWriter, status int, resp *types.ErrorResponse) {
	if err := proxy.WriteErrorResponse(w, status, resp); err != nil {
		h.logger.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// record feeds metrics and the journal. outcome is nil for requests
// rejected before forwarding.
func (h *RelayHandler) record(requestID string, start time.Time, req *proxy.InboundRequest,
	operation, outcomeLabel string, status int, source auth.Source, outcome *upstream.Outcome) {
	duration := time.Since(start)

	if h.metrics != nil {
		h.metrics.RecordRequest(operation, outcomeLabel, duration)
	}
	if h.journal == nil {
		return
	}

	e := journal.NewEntry(requestID, start)
	e.Operation = operation
	e.Outcome = outcomeLabel
	e.Status = status
	e.CredentialSource = string(source)
	e.Duration = duration
	e.Method = req.Method
	e.Path = req.Path
	if outcome != nil {
		e.AttemptedURLs = outcome.URLs()
		e.Stripped = outcome.Stripped()
		for _, a := range outcome.Attempts {
			e.Attempts += a.Tries
		}
		if outcome.Err != nil {
			e.Error = outcome.Err.Error()
		}
	}
	h.journal.Record(e)
}
