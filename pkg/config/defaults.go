package config

import "time"

// Default values for configuration fields.
const (
	// Proxy defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultMountPath       = "/api/proxy"
	DefaultReadTimeout     = 60 * time.Second
	DefaultWriteTimeout    = 15 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576  // 1MB
	DefaultMaxBodyBytes    = 52428800 // 50MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 86400

	// Upstream defaults
	DefaultSessionCookie    = "accesstoken"
	DefaultJSONTimeout      = 10 * time.Second
	DefaultMultipartTimeout = 30 * time.Second
	DefaultLargeTimeout     = 300 * time.Second

	// Auth defaults
	DefaultSessionTTL = time.Hour

	// Payload defaults
	DefaultLargeBodyBytes      = 1048576 // 1MB
	DefaultBinaryField         = "pdfFile"
	DefaultStripThresholdBytes = 102400 // 100KB
	DefaultDataURLPrefix       = "data:application/pdf;base64,"

	// Retry defaults
	DefaultRetryMaxAttempts = 3
	DefaultRetryBaseDelay   = time.Second

	// Journal defaults
	DefaultJournalBackend        = "memory"
	DefaultJournalBuffer         = 1000
	DefaultJournalMemoryCapacity = 1000
	DefaultJournalSQLitePath     = "data/journal.db"
	DefaultJournalBusyTimeout    = 5 * time.Second
	DefaultJournalRetentionDays  = 14
	DefaultJournalRetentionPrune = "0 3 * * *"

	// Secrets defaults
	DefaultSecretsEnvPrefix = "RELAY_SECRET_"

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsEnabled     = true
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "opensign"
	DefaultMetricsSubsystem   = "relay"
	DefaultTracingSampler     = "ratio"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "opensign-relay"
	DefaultTracingTimeout     = 10 * time.Second
)

// DefaultCandidatePrefixes are the mount prefixes OpenSign deployments are
// commonly served under, in the order they are tried.
func DefaultCandidatePrefixes() []string {
	return []string{"/api/app", "/app", "/parse"}
}

// DefaultPrivilegedPaths are the cloud functions and routes that require
// elevated credentials.
func DefaultPrivilegedPaths() []string {
	return []string{
		"functions/signPdf",
		"functions/addUser",
		"functions/updateUserAsAdmin",
		"functions/deleteUser",
		"users",
	}
}

// DefaultSensitiveClasses are the classes whose writes require a session.
func DefaultSensitiveClasses() []string {
	return []string{
		"contracts_Document",
		"contracts_Template",
		"contracts_Signers",
		"contracts_Users",
	}
}

// DefaultRetryableErrors are the transport error substrings considered
// transient.
func DefaultRetryableErrors() []string {
	return []string{"terminated", "socket", "connection reset", "timeout", "eof"}
}

// DefaultConfig returns a configuration populated with every default,
// including boolean fields whose default is true. Loading decodes YAML on
// top of it so unset keys keep their defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Proxy.CORS.Enabled = DefaultCORSEnabled
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Proxy defaults
	if cfg.Proxy.ListenAddress == "" {
		cfg.Proxy.ListenAddress = DefaultListenAddress
	}
	if cfg.Proxy.MountPath == "" {
		cfg.Proxy.MountPath = DefaultMountPath
	}
	if cfg.Proxy.ReadTimeout == 0 {
		cfg.Proxy.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Proxy.WriteTimeout == 0 {
		cfg.Proxy.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Proxy.IdleTimeout == 0 {
		cfg.Proxy.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Proxy.ShutdownTimeout == 0 {
		cfg.Proxy.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Proxy.MaxHeaderBytes == 0 {
		cfg.Proxy.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Proxy.MaxBodyBytes == 0 {
		cfg.Proxy.MaxBodyBytes = DefaultMaxBodyBytes
	}
	applyCORSDefaults(&cfg.Proxy.CORS)

	// Upstream defaults
	if len(cfg.Upstream.CandidatePrefixes) == 0 {
		cfg.Upstream.CandidatePrefixes = DefaultCandidatePrefixes()
	}
	if cfg.Upstream.SessionCookie == "" {
		cfg.Upstream.SessionCookie = DefaultSessionCookie
	}
	if cfg.Upstream.Timeouts.JSON == 0 {
		cfg.Upstream.Timeouts.JSON = DefaultJSONTimeout
	}
	if cfg.Upstream.Timeouts.Multipart == 0 {
		cfg.Upstream.Timeouts.Multipart = DefaultMultipartTimeout
	}
	if cfg.Upstream.Timeouts.Large == 0 {
		cfg.Upstream.Timeouts.Large = DefaultLargeTimeout
	}

	// Auth defaults
	if cfg.Auth.PrivilegedPaths == nil {
		cfg.Auth.PrivilegedPaths = DefaultPrivilegedPaths()
	}
	if cfg.Auth.SensitiveClasses == nil {
		cfg.Auth.SensitiveClasses = DefaultSensitiveClasses()
	}
	if cfg.Auth.SessionTTL == 0 {
		cfg.Auth.SessionTTL = DefaultSessionTTL
	}

	// Payload defaults
	if cfg.Payload.LargePaths == nil {
		cfg.Payload.LargePaths = []string{"functions/signPdf"}
	}
	if cfg.Payload.LargeBodyBytes == 0 {
		cfg.Payload.LargeBodyBytes = DefaultLargeBodyBytes
	}
	if cfg.Payload.BinaryField == "" {
		cfg.Payload.BinaryField = DefaultBinaryField
	}
	if cfg.Payload.StripThresholdBytes == 0 {
		cfg.Payload.StripThresholdBytes = DefaultStripThresholdBytes
	}
	if cfg.Payload.DataURLPrefix == "" {
		cfg.Payload.DataURLPrefix = DefaultDataURLPrefix
	}

	// Retry defaults
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = DefaultRetryMaxAttempts
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = DefaultRetryBaseDelay
	}
	if len(cfg.Retry.RetryableErrors) == 0 {
		cfg.Retry.RetryableErrors = DefaultRetryableErrors()
	}

	// Journal defaults
	if cfg.Journal.Backend == "" {
		cfg.Journal.Backend = DefaultJournalBackend
	}
	if cfg.Journal.Buffer == 0 {
		cfg.Journal.Buffer = DefaultJournalBuffer
	}
	if cfg.Journal.Memory.Capacity == 0 {
		cfg.Journal.Memory.Capacity = DefaultJournalMemoryCapacity
	}
	if cfg.Journal.SQLite.Path == "" {
		cfg.Journal.SQLite.Path = DefaultJournalSQLitePath
	}
	if cfg.Journal.SQLite.BusyTimeout == 0 {
		cfg.Journal.SQLite.BusyTimeout = DefaultJournalBusyTimeout
	}
	if cfg.Journal.Retention.Days == 0 {
		cfg.Journal.Retention.Days = DefaultJournalRetentionDays
	}
	if cfg.Journal.Retention.PruneSchedule == "" {
		cfg.Journal.Retention.PruneSchedule = DefaultJournalRetentionPrune
	}

	if cfg.Secrets.EnvPrefix == "" {
		cfg.Secrets.EnvPrefix = DefaultSecretsEnvPrefix
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.RequestDurationBuckets) == 0 {
		// Wrong-mount answers are fast, signing calls can take minutes.
		cfg.Telemetry.Metrics.RequestDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300}
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
}

func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-Parse-Application-Id",
			"X-Parse-Session-Token",
			"X-Parse-Revocable-Session",
			"X-Parse-Installation-Id",
			"X-Parse-Client-Version",
		}
	}
	if len(cors.ExposedHeaders) == 0 {
		cors.ExposedHeaders = []string{"X-Request-ID"}
	}
	if cors.MaxAge == 0 {
		cors.MaxAge = DefaultCORSMaxAge
	}
}
