package config

import (
	"errors"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Upstream.BaseURL = "https://sign.example.com"
	cfg.Upstream.AppID = "opensign"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("expected defaults plus upstream to be valid, got %v", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Upstream.BaseURL = ""
	cfg.Upstream.AppID = ""
	cfg.Retry.MaxAttempts = 0
	cfg.Journal.Backend = "postgres"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	fields := make(map[string]bool)
	for _, fe := range verr.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"upstream.base_url", "upstream.app_id", "retry.max_attempts", "journal.backend"} {
		if !fields[want] {
			t.Errorf("expected error for %s, got %v", want, verr.Errors)
		}
	}
	if !strings.Contains(err.Error(), "4 errors") {
		t.Errorf("expected error count in message, got %q", err.Error())
	}
}

func TestValidate_Upstream(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		field   string
		wantErr bool
	}{
		{
			name:    "relative base URL",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "sign.example.com" },
			field:   "upstream.base_url",
			wantErr: true,
		},
		{
			name:    "ftp base URL",
			mutate:  func(c *Config) { c.Upstream.BaseURL = "ftp://sign.example.com" },
			field:   "upstream.base_url",
			wantErr: true,
		},
		{
			name:    "prefix without slash",
			mutate:  func(c *Config) { c.Upstream.CandidatePrefixes = []string{"app"} },
			field:   "upstream.candidate_prefixes[0]",
			wantErr: true,
		},
		{
			name:    "empty prefix means bare base URL",
			mutate:  func(c *Config) { c.Upstream.CandidatePrefixes = []string{""} },
			wantErr: false,
		},
		{
			name:    "username without password",
			mutate:  func(c *Config) { c.Upstream.Username = "relay" },
			field:   "upstream.username",
			wantErr: true,
		},
		{
			name:    "zero large timeout",
			mutate:  func(c *Config) { c.Upstream.Timeouts.Large = -1 },
			field:   "upstream.timeouts",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.field, verr.Errors)
			}
		})
	}
}

func TestValidate_Telemetry(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.Logging.Level = "verbose"
	cfg.Telemetry.Tracing.Enabled = true
	cfg.Telemetry.Tracing.SampleRatio = 2

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "telemetry.logging.level") || !strings.Contains(msg, "telemetry.tracing.sample_ratio") {
		t.Errorf("unexpected error: %s", msg)
	}
}

func TestValidate_SecretsWatchNeedsDir(t *testing.T) {
	cfg := validConfig()
	cfg.Secrets.Watch = true
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "secrets.watch") {
		t.Errorf("expected secrets.watch error, got %v", err)
	}

	cfg.Secrets.Dir = "/run/secrets"
	if err := Validate(cfg); err != nil {
		t.Errorf("expected valid config with dir set, got %v", err)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.Proxy.MountPath != first.Proxy.MountPath || cfg.Retry.BaseDelay != first.Retry.BaseDelay {
		t.Error("ApplyDefaults changed an already defaulted config")
	}
	if cfg.Payload.StripThresholdBytes != 102400 {
		t.Errorf("strip threshold = %d, want 102400", cfg.Payload.StripThresholdBytes)
	}
	if cfg.Auth.SessionTTL.Hours() != 1 {
		t.Errorf("session TTL = %s, want 1h", cfg.Auth.SessionTTL)
	}
}
