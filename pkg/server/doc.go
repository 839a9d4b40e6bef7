// Package server wires the relay's routes and middleware into an
// http.Server and manages its lifecycle.
//
// Routes:
//
//	<mount_path>/*   proxied calls (handlers.RelayHandler)
//	/health          liveness
//	/ready           readiness: upstream configured, journal reachable
//	/version         build information
//	/metrics         Prometheus exposition, when metrics are enabled
//
// Start blocks until its context is cancelled. There is no request
// timeout middleware: signing calls may legitimately run for minutes and
// are bounded by the per-class upstream client timeouts and the server
// write timeout.
//
//	srv := server.NewServer(cfg, relayHandler, checker,
//	    server.WithMetricsHandler(collector.Handler()),
//	    server.WithBuildInfo(server.BuildInfo{Version: version}),
//	)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
package server
