package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// Keys absent from the file keep their defaults. The result is validated.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := decodeFile(path, false)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention RELAY_SECTION_FIELD (e.g., RELAY_UPSTREAM_BASE_URL) and always
// take precedence over the file.
//
// A missing file is not an error: the relay is commonly deployed with
// environment configuration only.
//
// The loading sequence is:
// 1. Start from defaults
// 2. Decode YAML from the file, if present
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := decodeFile(path, true)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func decodeFile(path string, allowMissing bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables use the format RELAY_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Proxy overrides
	if val := os.Getenv("RELAY_PROXY_LISTEN_ADDRESS"); val != "" {
		cfg.Proxy.ListenAddress = val
	}
	if val := os.Getenv("RELAY_PROXY_MOUNT_PATH"); val != "" {
		cfg.Proxy.MountPath = val
	}
	setDuration("RELAY_PROXY_READ_TIMEOUT", &cfg.Proxy.ReadTimeout)
	setDuration("RELAY_PROXY_WRITE_TIMEOUT", &cfg.Proxy.WriteTimeout)
	setDuration("RELAY_PROXY_SHUTDOWN_TIMEOUT", &cfg.Proxy.ShutdownTimeout)
	if val := os.Getenv("RELAY_PROXY_MAX_BODY_BYTES"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Proxy.MaxBodyBytes = i
		}
	}

	// Upstream overrides
	if val := os.Getenv("RELAY_UPSTREAM_BASE_URL"); val != "" {
		cfg.Upstream.BaseURL = val
	}
	if val := os.Getenv("RELAY_UPSTREAM_APP_ID"); val != "" {
		cfg.Upstream.AppID = val
	}
	if val := os.Getenv("RELAY_UPSTREAM_MASTER_KEY"); val != "" {
		cfg.Upstream.MasterKey = val
	}
	if val := os.Getenv("RELAY_UPSTREAM_USERNAME"); val != "" {
		cfg.Upstream.Username = val
	}
	if val := os.Getenv("RELAY_UPSTREAM_PASSWORD"); val != "" {
		cfg.Upstream.Password = val
	}
	if val := os.Getenv("RELAY_UPSTREAM_CANDIDATE_PREFIXES"); val != "" {
		cfg.Upstream.CandidatePrefixes = splitList(val)
	}
	if val := os.Getenv("RELAY_UPSTREAM_SESSION_COOKIE"); val != "" {
		cfg.Upstream.SessionCookie = val
	}
	setDuration("RELAY_UPSTREAM_TIMEOUTS_JSON", &cfg.Upstream.Timeouts.JSON)
	setDuration("RELAY_UPSTREAM_TIMEOUTS_MULTIPART", &cfg.Upstream.Timeouts.Multipart)
	setDuration("RELAY_UPSTREAM_TIMEOUTS_LARGE", &cfg.Upstream.Timeouts.Large)

	// Auth overrides
	setDuration("RELAY_AUTH_SESSION_TTL", &cfg.Auth.SessionTTL)
	setBool("RELAY_AUTH_DEV_MASTER_KEY_FALLBACK", &cfg.Auth.DevMasterKeyFallback)

	// Payload overrides
	setInt("RELAY_PAYLOAD_STRIP_THRESHOLD_BYTES", &cfg.Payload.StripThresholdBytes)
	setInt("RELAY_PAYLOAD_LARGE_BODY_BYTES", &cfg.Payload.LargeBodyBytes)

	// Retry overrides
	setInt("RELAY_RETRY_MAX_ATTEMPTS", &cfg.Retry.MaxAttempts)
	setDuration("RELAY_RETRY_BASE_DELAY", &cfg.Retry.BaseDelay)

	// Journal overrides
	setBool("RELAY_JOURNAL_ENABLED", &cfg.Journal.Enabled)
	if val := os.Getenv("RELAY_JOURNAL_BACKEND"); val != "" {
		cfg.Journal.Backend = val
	}
	if val := os.Getenv("RELAY_JOURNAL_SQLITE_PATH"); val != "" {
		cfg.Journal.SQLite.Path = val
	}
	setInt("RELAY_JOURNAL_RETENTION_DAYS", &cfg.Journal.Retention.Days)

	// Secrets overrides
	if val := os.Getenv("RELAY_SECRETS_DIR"); val != "" {
		cfg.Secrets.Dir = val
	}
	setBool("RELAY_SECRETS_WATCH", &cfg.Secrets.Watch)

	// Telemetry overrides
	if val := os.Getenv("RELAY_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("RELAY_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	setBool("RELAY_TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	setBool("RELAY_TELEMETRY_TRACING_ENABLED", &cfg.Telemetry.Tracing.Enabled)
	if val := os.Getenv("RELAY_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("RELAY_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}

func setDuration(key string, dst *time.Duration) {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			*dst = d
		}
	}
}

func setBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}

func setInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			*dst = i
		}
	}
}

// splitList splits a comma separated list, trimming blanks. An entry of a
// single "/" stands for the bare base URL.
func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
