package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// Redacted replaces sensitive values.
const Redacted = "[REDACTED]"

// sensitiveKeys are attribute key fragments whose values are never logged.
var sensitiveKeys = []string{
	"password",
	"master_key",
	"masterkey",
	"session_token",
	"sessiontoken",
	"authorization",
	"cookie",
	"secret",
}

var (
	// Parse revocable session tokens look like "r:" followed by 32 hex
	// characters.
	sessionTokenPattern = regexp.MustCompile(`\br:[0-9a-fA-F]{16,}\b`)
	bearerPattern       = regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`)
)

// IsSensitiveKey reports whether an attribute or header named key holds a
// credential.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(strings.ReplaceAll(key, "-", "_"))
	for _, s := range sensitiveKeys {
		if strings.Contains(k, s) {
			return true
		}
	}
	return false
}

// RedactString masks credentials embedded in free text such as error
// messages.
func RedactString(s string) string {
	s = sessionTokenPattern.ReplaceAllString(s, "r:***")
	return bearerPattern.ReplaceAllString(s, "Bearer ***")
}

func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, Redacted)
	}
	switch a.Value.Kind() {
	case slog.KindString:
		if v := a.Value.String(); strings.Contains(v, "r:") || strings.Contains(v, "Bearer") {
			return slog.String(a.Key, RedactString(v))
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			return slog.String(a.Key, RedactString(err.Error()))
		}
	}
	return a
}
