package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"opensign-hq/relay/pkg/config"
	"opensign-hq/relay/pkg/proxy/middleware"
	"opensign-hq/relay/pkg/telemetry/health"
)

// BuildInfo is reported by /version.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server is the relay's HTTP server.
type Server struct {
	config       *config.ProxyConfig
	metricsPath  string
	relay        http.Handler
	checker      *health.Checker
	metrics      http.Handler
	build        BuildInfo
	httpServer   *http.Server
	listener     net.Listener
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetricsHandler serves h at the configured metrics path.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithBuildInfo sets the values reported by /version.
func WithBuildInfo(b BuildInfo) Option {
	return func(s *Server) { s.build = b }
}

// WithListener serves on l instead of listening on the configured address.
func WithListener(l net.Listener) Option {
	return func(s *Server) { s.listener = l }
}

// NewServer creates a server that mounts relay at the proxy mount path.
func NewServer(cfg *config.Config, relay http.Handler, checker *health.Checker, opts ...Option) *Server {
	s := &Server{
		config:      &cfg.Proxy,
		metricsPath: cfg.Telemetry.Metrics.Path,
		relay:       relay,
		checker:     checker,
		logger:      slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start serves until ctx is cancelled or the listener fails, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true

	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	if s.listener == nil {
		l, err := net.Listen("tcp", s.config.ListenAddress)
		if err != nil {
			s.isRunning = false
			s.mu.Unlock()
			return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
		}
		s.listener = l
	}
	httpServer, listener := s.httpServer, s.listener
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting relay server",
			"address", listener.Addr().String(),
			"mount_path", s.config.MountPath,
		)
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully stops the server within the configured timeout.
// In-flight signing calls that outlive it are cut off.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running, httpServer := s.isRunning, s.httpServer
		s.mu.RUnlock()
		if !running || httpServer == nil {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("relay server stopped")
	})

	return shutdownErr
}

// Handler returns the router with the full middleware chain applied.
//
// Order, outermost first: recovery, logging, request ID, tracing, CORS,
// body limit. Health, version and metrics endpoints sit behind the same
// chain so they are logged and traced too.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.TracingMiddleware(s.config.MountPath))
	r.Use(middleware.CORSMiddleware(&s.config.CORS))
	r.Use(middleware.BodyLimitMiddleware(s.config.MaxBodyBytes))

	health.Register(r, s.checker, s.build.Version, s.build.Commit, s.build.BuildTime)

	if s.metrics != nil && s.metricsPath != "" {
		r.Method(http.MethodGet, s.metricsPath, s.metrics)
	}

	r.Handle(s.config.MountPath+"/*", s.relay)

	return r
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
