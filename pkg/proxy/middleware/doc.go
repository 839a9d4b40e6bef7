// Package middleware provides the HTTP middleware of the relay.
//
// # Middleware Chain
//
// The server applies middleware outermost first:
//
//   - RecoveryMiddleware: converts a panic into 500 {"error":"Internal server error"}
//   - LoggingMiddleware: one structured log line per request
//   - RequestIDMiddleware: keeps X-Request-ID or generates "req_" + UUID
//   - TracingMiddleware: otelhttp server span per request
//   - CORSMiddleware: CORS headers and 204 preflight answers
//   - BodyLimitMiddleware: caps inbound bodies; handlers answer 413
//
// There is no per-request timeout middleware. Signing calls may run for
// several minutes and are bounded by the outbound client timeouts only.
//
// # Request ID
//
// The request ID is stored with logging.WithRequestID, so every record
// logged with the request context carries it:
//
//	X-Request-ID: req_550e8400-e29b-41d4-a716-446655440000
//
// # CORS
//
// CORS is configured under proxy.cors:
//
//	proxy:
//	  cors:
//	    enabled: true
//	    allowed_origins: ["https://sign.example.com"]
//	    allowed_headers: ["Content-Type", "X-Parse-Session-Token"]
//	    max_age: 86400
package middleware
