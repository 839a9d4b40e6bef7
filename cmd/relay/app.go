package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"opensign-hq/relay/pkg/auth"
	"opensign-hq/relay/pkg/config"
	"opensign-hq/relay/pkg/journal"
	"opensign-hq/relay/pkg/proxy/handlers"
	"opensign-hq/relay/pkg/secrets"
	"opensign-hq/relay/pkg/server"
	"opensign-hq/relay/pkg/telemetry/health"
	"opensign-hq/relay/pkg/telemetry/metrics"
	"opensign-hq/relay/pkg/telemetry/tracing"
	"opensign-hq/relay/pkg/upstream"
)

const healthCheckTimeout = 2 * time.Second

// app holds every long-lived component of a running relay.
type app struct {
	cfg       *config.Config
	collector *metrics.Collector
	tracer    *tracing.Tracer
	client    *upstream.Client
	journal   *journal.Journal
	secrets   *secrets.FileProvider
	server    *server.Server
}

// newApp builds the component graph described by cfg. Secret references
// in the upstream credentials are resolved here and written back to cfg.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	rawUpstream := cfg.Upstream
	manager, files, err := newSecretManager(&cfg.Secrets)
	if err != nil {
		return nil, err
	}
	a.secrets = files
	service, err := resolveServiceCredentials(ctx, manager, rawUpstream)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}
	applyServiceCredentials(cfg, service)

	a.collector = metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		a.close(context.Background())
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracer = tracer

	a.client = upstream.NewClient(cfg, upstream.WithObserver(a.collector))

	j, err := journal.New(&cfg.Journal, journal.WithDropHandler(a.collector.RecordJournalDropped))
	if err != nil {
		a.close(context.Background())
		return nil, err
	}
	a.journal = j

	resolver := auth.NewResolver(cfg, auth.NewSessionCache(cfg.Auth.SessionTTL), a.client.Login, a.collector)
	if files != nil && cfg.Secrets.Watch {
		err := files.Watch(func() {
			sc, err := resolveServiceCredentials(context.Background(), manager, rawUpstream)
			if err != nil {
				slog.Warn("keeping previous service credentials", "error", err)
				return
			}
			resolver.SetServiceCredentials(sc)
		})
		if err != nil {
			a.close(context.Background())
			return nil, err
		}
	}

	opts := []handlers.Option{
		handlers.WithMetrics(a.collector),
		handlers.WithTracer(a.tracer),
	}
	if a.journal != nil {
		opts = append(opts, handlers.WithJournal(a.journal))
	}
	relay := handlers.NewRelayHandler(cfg, a.client, auth.NewClassifier(cfg.Auth), resolver, a.client.Shaper(), opts...)

	checker := health.New(healthCheckTimeout)
	checker.RegisterCheck("upstream", health.UpstreamConfigured(&cfg.Upstream))
	if a.journal != nil {
		checker.RegisterCheck("journal", health.PingCheck(a.journal))
	}

	srvOpts := []server.Option{
		server.WithBuildInfo(server.BuildInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate}),
	}
	if cfg.Telemetry.Metrics.Enabled {
		srvOpts = append(srvOpts, server.WithMetricsHandler(a.collector.Handler()))
	}
	a.server = server.NewServer(cfg, relay, checker, srvOpts...)

	return a, nil
}

// run starts background jobs and serves until ctx is cancelled.
func (a *app) run(ctx context.Context) error {
	if a.journal != nil {
		if err := a.journal.Start(ctx); err != nil {
			slog.Warn("failed to start journal pruner", "error", err)
		}
	}
	return a.server.Start(ctx)
}

// close releases components in reverse order of construction.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	if a.secrets != nil {
		errs = append(errs, a.secrets.Close())
	}
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	if a.tracer != nil {
		errs = append(errs, a.tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
