// Package logging configures the process-wide slog logger.
//
// New builds a JSON or text handler from configuration and wraps it so
// every record logged with a context carries the request ID and trace ID,
// and so credential values never reach the output: attributes named like
// passwords, master keys or session tokens are replaced with "[REDACTED]"
// and Parse session tokens embedded in strings are masked.
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
package logging
