// Package handlers serves the relay's catch-all proxy route.
//
// RelayHandler is mounted at <proxy.mount_path>/* and handles every
// proxied call:
//
//  1. OPTIONS is answered with 204 and CORS headers. Nothing is forwarded.
//  2. The body is read (bounded by the body-limit middleware) and the
//     content regime is picked from the Content-Type.
//  3. The operation is classified and credential headers are resolved,
//     except for text/plain passthrough bodies, which carry their own.
//  4. The call is forwarded through the candidate mount prefixes on a
//     context detached from the inbound request.
//  5. An API answer is written back unchanged with its status. A failed
//     search becomes a 502 with troubleshooting hints.
//
// Every call is timed, counted, traced and optionally journaled:
//
//	h := handlers.NewRelayHandler(cfg, client, classifier, resolver, client.Shaper(),
//	    handlers.WithMetrics(collector),
//	    handlers.WithJournal(j),
//	    handlers.WithTracer(tracer),
//	)
//	r.Handle(cfg.Proxy.MountPath+"/*", h)
package handlers
