package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "upstream.base_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateProxy(&cfg.Proxy)...)
	errs = append(errs, validateUpstream(&cfg.Upstream)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validatePayload(&cfg.Payload)...)
	errs = append(errs, validateRetry(&cfg.Retry)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)
	errs = append(errs, validateSecrets(&cfg.Secrets)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateProxy validates inbound server configuration.
func validateProxy(cfg *ProxyConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "proxy.listen_address",
			Message: "listen address is required",
		})
	}

	if !strings.HasPrefix(cfg.MountPath, "/") {
		errs = append(errs, FieldError{
			Field:   "proxy.mount_path",
			Message: "mount path must start with /",
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.write_timeout",
			Message: "write timeout must be positive",
		})
	}

	if cfg.MaxHeaderBytes < 0 || cfg.MaxHeaderBytes > 10*1024*1024 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_header_bytes",
			Message: "max header bytes must be between 0 and 10MB",
		})
	}
	if cfg.MaxBodyBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "proxy.max_body_bytes",
			Message: "max body bytes must be positive",
		})
	}

	return errs
}

// validateUpstream validates the backend description.
func validateUpstream(cfg *UpstreamConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL == "" {
		errs = append(errs, FieldError{
			Field:   "upstream.base_url",
			Message: "base URL is required",
		})
	} else if u, err := url.Parse(cfg.BaseURL); err != nil {
		errs = append(errs, FieldError{
			Field:   "upstream.base_url",
			Message: fmt.Sprintf("invalid URL format: %v", err),
		})
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   "upstream.base_url",
			Message: "base URL must be an absolute http or https URL",
		})
	}

	if cfg.AppID == "" {
		errs = append(errs, FieldError{
			Field:   "upstream.app_id",
			Message: "application identifier is required",
		})
	}

	if len(cfg.CandidatePrefixes) == 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.candidate_prefixes",
			Message: "at least one candidate prefix is required",
		})
	}
	for i, p := range cfg.CandidatePrefixes {
		if p != "" && !strings.HasPrefix(p, "/") {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("upstream.candidate_prefixes[%d]", i),
				Message: fmt.Sprintf("prefix %q must be empty or start with /", p),
			})
		}
	}

	if (cfg.Username == "") != (cfg.Password == "") {
		errs = append(errs, FieldError{
			Field:   "upstream.username",
			Message: "username and password must be set together",
		})
	}

	if cfg.Timeouts.JSON <= 0 || cfg.Timeouts.Multipart <= 0 || cfg.Timeouts.Large <= 0 {
		errs = append(errs, FieldError{
			Field:   "upstream.timeouts",
			Message: "all timeouts must be positive",
		})
	}

	return errs
}

// validateAuth validates credential handling.
func validateAuth(cfg *AuthConfig) []FieldError {
	var errs []FieldError

	if cfg.SessionTTL <= 0 {
		errs = append(errs, FieldError{
			Field:   "auth.session_ttl",
			Message: "session TTL must be positive",
		})
	}

	return errs
}

// validatePayload validates payload shaping.
func validatePayload(cfg *PayloadConfig) []FieldError {
	var errs []FieldError

	if cfg.BinaryField == "" {
		errs = append(errs, FieldError{
			Field:   "payload.binary_field",
			Message: "binary field name is required",
		})
	}
	if cfg.StripThresholdBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "payload.strip_threshold_bytes",
			Message: "strip threshold must be positive",
		})
	}
	if cfg.LargeBodyBytes <= 0 {
		errs = append(errs, FieldError{
			Field:   "payload.large_body_bytes",
			Message: "large body threshold must be positive",
		})
	}

	return errs
}

// validateRetry validates the retry policy.
func validateRetry(cfg *RetryConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxAttempts < 1 || cfg.MaxAttempts > 10 {
		errs = append(errs, FieldError{
			Field:   "retry.max_attempts",
			Message: "max attempts must be between 1 and 10",
		})
	}
	if cfg.BaseDelay < 0 {
		errs = append(errs, FieldError{
			Field:   "retry.base_delay",
			Message: "base delay must be non-negative",
		})
	}

	return errs
}

// validateJournal validates the diagnostic journal.
func validateJournal(cfg *JournalConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "journal.backend",
			Message: fmt.Sprintf("unsupported backend %q (must be memory or sqlite)", cfg.Backend),
		})
	}

	if cfg.Buffer < 0 {
		errs = append(errs, FieldError{
			Field:   "journal.buffer",
			Message: "buffer must be non-negative",
		})
	}
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "journal.retention.days",
			Message: "retention days must be non-negative",
		})
	}

	return errs
}

func validateSecrets(cfg *SecretsConfig) []FieldError {
	if cfg.Watch && cfg.Dir == "" {
		return []FieldError{{
			Field:   "secrets.watch",
			Message: "watch requires secrets.dir",
		}}
	}
	return nil
}

// validateTelemetry validates logging, metrics and tracing.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid level %q (must be debug, info, warn or error)", cfg.Logging.Level),
		})
	}

	if cfg.Logging.Format != "json" && cfg.Logging.Format != "text" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid format %q (must be json or text)", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: "metrics path must start with /",
		})
	}

	if cfg.Tracing.Enabled {
		switch cfg.Tracing.Sampler {
		case "always", "never", "ratio":
		default:
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sampler",
				Message: fmt.Sprintf("invalid sampler %q", cfg.Tracing.Sampler),
			})
		}
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.sample_ratio",
				Message: "sample ratio must be between 0 and 1",
			})
		}
	}

	return errs
}
