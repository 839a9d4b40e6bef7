package middleware

import "net/http"

// BodyLimitMiddleware caps inbound bodies at limit bytes. Reading past the
// cap fails with *http.MaxBytesError, which handlers map to 413.
func BodyLimitMiddleware(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
