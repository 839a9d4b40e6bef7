// Package proxy holds the request and response plumbing of the relay's
// inbound surface.
//
// The relay accepts calls from the signing web app at a catch-all route
// and forwards them to a Parse Server backend whose mount path is not
// known in advance. This package turns an inbound *http.Request into an
// upstream.OutboundRequest and turns failures into response bodies:
//
//   - ParseRequest reads the body and picks a content regime.
//   - InboundRequest.Outbound merges resolved credentials, unless the
//     body is a Parse JS SDK text/plain passthrough.
//   - HandleError maps errors to a status and body. A failed candidate
//     search produces a troubleshooting block with one hint per failure
//     kind seen, plus a configuration summary.
//   - WriteUpstreamResponse forwards an API answer byte for byte.
//
// The route itself lives in the handlers subpackage and the middleware
// chain in the middleware subpackage.
package proxy
