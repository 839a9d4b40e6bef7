package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TracingMiddleware starts a server span per request. Spans are named
// "METHOD /path" with the path truncated to the mount prefix so span
// names stay low-cardinality.
func TracingMiddleware(mountPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, "relay",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + spanPath(r.URL.Path, mountPath)
			}),
		)
	}
}

func spanPath(path, mountPath string) string {
	if mountPath != "" && len(path) >= len(mountPath) && path[:len(mountPath)] == mountPath {
		return mountPath + "/*"
	}
	return path
}
