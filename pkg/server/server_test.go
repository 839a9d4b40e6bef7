package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"opensign-hq/relay/pkg/config"
	"opensign-hq/relay/pkg/telemetry/health"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Upstream.BaseURL = "https://sign.example.com"
	cfg.Upstream.AppID = "opensign"
	cfg.Proxy.ShutdownTimeout = 2 * time.Second
	return cfg
}

func stubRelay() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"path":"`+r.URL.Path+`"}`)
	})
}

func newTestServer(t *testing.T, cfg *config.Config, opts ...Option) *Server {
	t.Helper()
	checker := health.New(time.Second)
	checker.RegisterCheck("upstream", health.UpstreamConfigured(&cfg.Upstream))
	return NewServer(cfg, stubRelay(), checker, opts...)
}

func TestServer_Routes(t *testing.T) {
	cfg := testConfig()
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "# metrics\n")
	})
	srv := newTestServer(t, cfg, WithMetricsHandler(metrics), WithBuildInfo(BuildInfo{Version: "1.2.3"}))
	h := srv.Handler()

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
		wantBody string
	}{
		{name: "liveness", method: http.MethodGet, path: "/health", wantCode: http.StatusOK, wantBody: `"status":"ok"`},
		{name: "readiness", method: http.MethodGet, path: "/ready", wantCode: http.StatusOK, wantBody: "ready"},
		{name: "version", method: http.MethodGet, path: "/version", wantCode: http.StatusOK, wantBody: "1.2.3"},
		{name: "metrics", method: http.MethodGet, path: "/metrics", wantCode: http.StatusOK, wantBody: "# metrics"},
		{name: "proxy route", method: http.MethodPost, path: "/api/proxy/functions/getDocument", wantCode: http.StatusOK, wantBody: "/api/proxy/functions/getDocument"},
		{name: "preflight", method: http.MethodOptions, path: "/api/proxy/functions/getDocument", wantCode: http.StatusNoContent},
		{name: "unknown route", method: http.MethodGet, path: "/nope", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.path, nil)
			r.Header.Set("Origin", "https://sign.example.com")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (body %q)", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", w.Body.String(), tt.wantBody)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID header")
			}
		})
	}
}

func TestServer_NotReadyWithoutUpstream(t *testing.T) {
	cfg := testConfig()
	cfg.Upstream.AppID = ""
	h := newTestServer(t, cfg).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	h := newTestServer(t, testConfig()).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a metrics handler", w.Code)
	}
}

func TestServer_BodyLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Proxy.MaxBodyBytes = 8

	relay := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	h := NewServer(cfg, relay, health.New(time.Second)).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/proxy/x", strings.NewReader(strings.Repeat("a", 32))))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", w.Code)
	}
}

func TestServer_RecoversFromPanic(t *testing.T) {
	relay := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := NewServer(testConfig(), relay, health.New(time.Second)).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/proxy/x", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Internal server error") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := newTestServer(t, testConfig(), WithListener(l))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	url := "http://" + l.Addr().String() + "/health"
	var resp *http.Response
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err = http.Get(url)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if !srv.IsRunning() {
		t.Error("IsRunning() = false while serving")
	}
	if srv.Addr() != l.Addr().String() {
		t.Errorf("Addr() = %q, want %q", srv.Addr(), l.Addr().String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestServer_StartTwice(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := newTestServer(t, testConfig(), WithListener(l))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Start(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for !srv.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := srv.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}
}
