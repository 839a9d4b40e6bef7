package config

import "time"

// Config is the root configuration structure for the relay.
// It contains the inbound proxy server settings, the upstream OpenSign
// backend description, credential handling, payload shaping, retry policy,
// the diagnostic journal and telemetry.
type Config struct {
	// Proxy contains inbound HTTP server configuration including listen
	// address, timeouts, mount path and CORS.
	Proxy ProxyConfig `yaml:"proxy"`

	// Upstream describes the Parse-Server based backend and the ordered list
	// of mount prefixes the relay tries against it.
	Upstream UpstreamConfig `yaml:"upstream"`

	// Auth controls how operations are classified and which credentials are
	// attached to each class.
	Auth AuthConfig `yaml:"auth"`

	// Payload configures shaping of large PDF-signing bodies.
	Payload PayloadConfig `yaml:"payload"`

	// Retry configures the backoff policy used for large requests.
	Retry RetryConfig `yaml:"retry"`

	// Journal configures the optional diagnostic journal of proxied calls.
	Journal JournalConfig `yaml:"journal"`

	// Secrets configures where ${secret:name} references in the upstream
	// credentials are resolved from.
	Secrets SecretsConfig `yaml:"secrets"`

	// Telemetry contains configuration for logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ProxyConfig contains configuration for the inbound HTTP server.
type ProxyConfig struct {
	// ListenAddress is the address and port for the relay to listen on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// MountPath is the prefix of the catch-all route. Everything after it is
	// forwarded to the upstream.
	// Default: "/api/proxy"
	MountPath string `yaml:"mount_path"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 60s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must cover the large-call timeout plus retries.
	// Default: 15m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout for inbound connections.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxBodyBytes limits the size of an inbound body.
	// Default: 52428800 (50MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are added to non-preflight
	// responses. Preflight requests on the proxy route are always answered.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods.
	// Default: ["GET", "POST", "PUT", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed request headers.
	AllowedHeaders []string `yaml:"allowed_headers"`

	// ExposedHeaders is a list of headers exposed to the client.
	// Default: ["X-Request-ID"]
	ExposedHeaders []string `yaml:"exposed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 86400
	MaxAge int `yaml:"max_age"`

	// AllowCredentials allows cookies on cross-origin requests.
	// Default: false
	AllowCredentials bool `yaml:"allow_credentials"`
}

// UpstreamConfig describes the backend the relay forwards to.
type UpstreamConfig struct {
	// BaseURL is the scheme and host of the backend, without a mount path.
	// Example: "https://sign.example.com"
	BaseURL string `yaml:"base_url"`

	// AppID is the Parse application identifier sent as
	// X-Parse-Application-Id.
	AppID string `yaml:"app_id"`

	// MasterKey is the elevated static key. Optional.
	MasterKey string `yaml:"master_key"`

	// Username and Password are used only for automatic session
	// acquisition through the login endpoint.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// CandidatePrefixes is the ordered list of mount prefixes tried for
	// every call. Order is significant.
	// Default: ["/api/app", "/app", "/parse"]
	CandidatePrefixes []string `yaml:"candidate_prefixes"`

	// SessionCookie is the name of the cookie carrying the user's session
	// token.
	// Default: "accesstoken"
	SessionCookie string `yaml:"session_cookie"`

	// Timeouts are per operation class.
	Timeouts UpstreamTimeouts `yaml:"timeouts"`
}

// UpstreamTimeouts holds the outbound timeout for each operation class.
type UpstreamTimeouts struct {
	// JSON applies to ordinary JSON calls. Default: 10s
	JSON time.Duration `yaml:"json"`

	// Multipart applies to multipart and file-upload calls. Default: 30s
	Multipart time.Duration `yaml:"multipart"`

	// Large applies to large signing calls. Default: 300s
	Large time.Duration `yaml:"large"`
}

// AuthConfig controls operation classification and credential selection.
type AuthConfig struct {
	// PrivilegedPaths are forwarded paths (relative to the mount) treated
	// as privileged operations. A path matches when equal to an entry or
	// when it continues the entry with "/".
	PrivilegedPaths []string `yaml:"privileged_paths"`

	// SensitiveClasses are Parse classes whose POST/PUT requests require a
	// session token.
	SensitiveClasses []string `yaml:"sensitive_classes"`

	// SessionTTL is the lifetime of a session obtained by automatic login.
	// Default: 1h
	SessionTTL time.Duration `yaml:"session_ttl"`

	// DevMasterKeyFallback lets ordinary operations fall back to the
	// master key when no session token is available. Development only.
	// Default: false
	DevMasterKeyFallback bool `yaml:"dev_master_key_fallback"`
}

// PayloadConfig configures the payload shaper.
type PayloadConfig struct {
	// LargePaths are forwarded paths classified as large regardless of body
	// size.
	// Default: ["functions/signPdf"]
	LargePaths []string `yaml:"large_paths"`

	// LargeBodyBytes is the serialized body size above which a request is
	// classified as large.
	// Default: 1048576 (1MB)
	LargeBodyBytes int `yaml:"large_body_bytes"`

	// BinaryField is the JSON field carrying the base64 document.
	// Default: "pdfFile"
	BinaryField string `yaml:"binary_field"`

	// StripThresholdBytes is the size of the binary field above which it is
	// removed from the first attempt.
	// Default: 102400 (100KB)
	StripThresholdBytes int `yaml:"strip_threshold_bytes"`

	// DataURLPrefix is prepended to a small binary field lacking one.
	// Default: "data:application/pdf;base64,"
	DataURLPrefix string `yaml:"data_url_prefix"`
}

// RetryConfig configures the retry orchestrator.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts for a large request.
	// Default: 3
	MaxAttempts int `yaml:"max_attempts"`

	// BaseDelay is the wait before the second attempt. Each further wait
	// doubles it.
	// Default: 1s
	BaseDelay time.Duration `yaml:"base_delay"`

	// RetryableErrors are lowercase substrings matched against transport
	// error messages.
	// Default: ["terminated", "socket", "connection reset", "timeout", "eof"]
	RetryableErrors []string `yaml:"retryable_errors"`
}

// JournalConfig configures the diagnostic journal.
type JournalConfig struct {
	// Enabled turns the journal on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the store: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// Buffer is the size of the asynchronous write queue.
	// Default: 1000
	Buffer int `yaml:"buffer"`

	// Memory configures the memory backend.
	Memory JournalMemoryConfig `yaml:"memory"`

	// SQLite configures the sqlite backend.
	SQLite JournalSQLiteConfig `yaml:"sqlite"`

	// Retention configures scheduled pruning.
	Retention JournalRetentionConfig `yaml:"retention"`
}

// JournalMemoryConfig configures the in-memory ring buffer.
type JournalMemoryConfig struct {
	// Capacity is the number of entries retained.
	// Default: 1000
	Capacity int `yaml:"capacity"`
}

// JournalSQLiteConfig configures the sqlite journal.
type JournalSQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/journal.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// JournalRetentionConfig configures journal pruning.
type JournalRetentionConfig struct {
	// Days is how long entries are kept.
	// Default: 14
	Days int `yaml:"days"`

	// PruneSchedule is a standard cron expression. Empty disables pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// SecretsConfig configures secret resolution. The upstream master_key,
// username and password may hold ${secret:name} references instead of
// literal values.
type SecretsConfig struct {
	// EnvPrefix namespaces secrets read from the environment. The secret
	// "master-key" is read from RELAY_SECRET_MASTER_KEY.
	// Default: "RELAY_SECRET_"
	EnvPrefix string `yaml:"env_prefix"`

	// Dir holds one file per secret, Kubernetes style. Files must be mode
	// 0600 or 0400. Empty disables the file provider.
	Dir string `yaml:"dir"`

	// Watch reloads rotated secret files while the relay runs.
	// Default: false
	Watch bool `yaml:"watch"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file:line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled exposes metrics at Path.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path of the metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace and Subsystem prefix every metric name.
	// Default: "opensign", "relay"
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`

	// RequestDurationBuckets are the histogram buckets in seconds.
	RequestDurationBuckets []float64 `yaml:"request_duration_buckets"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	// Enabled turns tracing on. A noop tracer is used otherwise.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler is "always", "never" or "ratio".
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is used by the "ratio" sampler.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is reported as service.name.
	// Default: "opensign-relay"
	ServiceName string `yaml:"service_name"`

	// Insecure disables TLS to the collector.
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}
