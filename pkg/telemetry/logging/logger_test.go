package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"opensign-hq/relay/pkg/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	return entry
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level   string
		wantErr bool
		debug   bool
	}{
		{"debug", false, true},
		{"INFO", false, false},
		{"warning", false, false},
		{"", false, false},
		{"verbose", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := New(config.LoggingConfig{Level: tt.level, Format: "json"}, &buf)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := logger.Enabled(context.Background(), slog.LevelDebug); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
		})
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	if _, err := New(config.LoggingConfig{Level: "info", Format: "xml"}, nil); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello", "key", "value")
	if !strings.Contains(buf.String(), "key=value") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

func TestLogger_RequestIDFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(config.LoggingConfig{Level: "info"}, &buf)

	ctx := WithRequestID(context.Background(), "req_123")
	logger.With("component", "test").InfoContext(ctx, "proxied")

	entry := decodeLine(t, &buf)
	if entry["request_id"] != "req_123" {
		t.Errorf("expected request_id req_123, got %v", entry["request_id"])
	}
	if entry["component"] != "test" {
		t.Errorf("expected component attribute, got %v", entry["component"])
	}
}

func TestLogger_RedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(config.LoggingConfig{Level: "info"}, &buf)

	logger.Info("login",
		"password", "hunter2",
		"X-Parse-Master-Key", "mk",
		"username", "admin@example.com",
		"error", errors.New("invalid token r:0123456789abcdef0123456789abcdef"),
		"note", "Bearer abc.def",
	)

	entry := decodeLine(t, &buf)
	if entry["password"] != Redacted {
		t.Errorf("password not redacted: %v", entry["password"])
	}
	if entry["X-Parse-Master-Key"] != Redacted {
		t.Errorf("master key not redacted: %v", entry["X-Parse-Master-Key"])
	}
	if entry["username"] != "admin@example.com" {
		t.Errorf("username should be kept, got %v", entry["username"])
	}
	if msg, _ := entry["error"].(string); strings.Contains(msg, "0123456789abcdef") {
		t.Errorf("session token leaked in error: %s", msg)
	}
	if entry["note"] != "Bearer ***" {
		t.Errorf("bearer token not masked: %v", entry["note"])
	}
}

func TestIsSensitiveKey(t *testing.T) {
	for key, want := range map[string]bool{
		"X-Parse-Session-Token": true,
		"Cookie":                true,
		"master_key":            true,
		"path":                  false,
		"status":                false,
	} {
		if got := IsSensitiveKey(key); got != want {
			t.Errorf("IsSensitiveKey(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}
