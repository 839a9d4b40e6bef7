package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"opensign-hq/relay/pkg/cli"
)

// newParseServer serves the API under /app and an HTML frontend elsewhere.
func newParseServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/app/") {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"status":"ok"}`)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<!DOCTYPE html><html></html>")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func probeConfig(t *testing.T, baseURL string, prefixes string) string {
	return writeConfig(t, fmt.Sprintf(`
upstream:
  base_url: %s
  app_id: opensign
  candidate_prefixes: %s
`, baseURL, prefixes))
}

func TestProbeFindsAnsweringPrefix(t *testing.T) {
	srv := newParseServer(t)
	cfg := probeConfig(t, srv.URL, `["/api/app", "/app"]`)

	out, err := executeCommand(t, "probe", "health", "--config", cfg, "--format", "json")
	if err != nil {
		t.Fatalf("probe failed: %v\n%s", err, out)
	}

	var report probeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if report.Outcome != "success" {
		t.Errorf("outcome = %q, want success", report.Outcome)
	}
	if report.AnsweringURL != srv.URL+"/app/health" {
		t.Errorf("answering url = %q, want %q", report.AnsweringURL, srv.URL+"/app/health")
	}
	if len(report.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(report.Attempts))
	}
	if report.Attempts[0].Classification != "wrong_endpoint" {
		t.Errorf("first classification = %q, want wrong_endpoint", report.Attempts[0].Classification)
	}
}

func TestProbeTextTable(t *testing.T) {
	srv := newParseServer(t)
	cfg := probeConfig(t, srv.URL, `["/app"]`)

	out, err := executeCommand(t, "probe", "--config", cfg)
	if err != nil {
		t.Fatalf("probe failed: %v", err)
	}
	if !strings.Contains(out, "CLASSIFICATION") {
		t.Errorf("missing table header:\n%s", out)
	}
	if !strings.Contains(out, srv.URL+"/app/health") {
		t.Errorf("missing default health path:\n%s", out)
	}
}

func TestProbeExhausted(t *testing.T) {
	srv := newParseServer(t)
	cfg := probeConfig(t, srv.URL, `["/parse"]`)

	_, err := executeCommand(t, "probe", "health", "--config", cfg)
	if err == nil {
		t.Fatal("expected error when no candidate answers")
	}
	var cmdErr *cli.CommandError
	if !errors.As(err, &cmdErr) {
		t.Errorf("error type = %T, want *cli.CommandError", err)
	}
	if cli.ExitCode(err) != cli.ExitFailure {
		t.Errorf("exit code = %d, want %d", cli.ExitCode(err), cli.ExitFailure)
	}
}

func TestProbeInvalidConfig(t *testing.T) {
	cfg := writeConfig(t, "upstream:\n  app_id: opensign\n")

	_, err := executeCommand(t, "probe", "--config", cfg)
	if cli.ExitCode(err) != cli.ExitConfig {
		t.Errorf("exit code = %d, want %d (err %v)", cli.ExitCode(err), cli.ExitConfig, err)
	}
}

func TestProbeInvalidFormat(t *testing.T) {
	_, err := executeCommand(t, "probe", "--format", "xml")
	if cli.ExitCode(err) != cli.ExitConfig {
		t.Errorf("exit code = %d, want %d", cli.ExitCode(err), cli.ExitConfig)
	}
}
