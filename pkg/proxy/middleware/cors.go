package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"opensign-hq/relay/pkg/config"
)

// CORSMiddleware adds Cross-Origin Resource Sharing headers and answers
// preflight requests with 204.
//
//	handler = CORSMiddleware(&cfg.Proxy.CORS)(handler)
func CORSMiddleware(cfg *config.CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			SetCORSHeaders(w, r, cfg)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SetCORSHeaders writes the CORS headers for r. Preflight requests also
// get the allowed methods, headers and max age.
func SetCORSHeaders(w http.ResponseWriter, r *http.Request, cfg *config.CORSConfig) {
	h := w.Header()
	origin := r.Header.Get("Origin")

	if origin != "" && isOriginAllowed(origin, cfg.AllowedOrigins) {
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
	} else if slices.Contains(cfg.AllowedOrigins, "*") {
		h.Set("Access-Control-Allow-Origin", "*")
	}

	if len(cfg.ExposedHeaders) > 0 {
		h.Set("Access-Control-Expose-Headers", strings.Join(cfg.ExposedHeaders, ", "))
	}

	if r.Method != http.MethodOptions {
		return
	}
	if len(cfg.AllowedMethods) > 0 {
		h.Set("Access-Control-Allow-Methods", strings.Join(cfg.AllowedMethods, ", "))
	}
	if len(cfg.AllowedHeaders) > 0 {
		h.Set("Access-Control-Allow-Headers", strings.Join(cfg.AllowedHeaders, ", "))
	}
	if cfg.MaxAge > 0 {
		h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
	}
}

// isOriginAllowed checks if an origin is in the allowed list.
func isOriginAllowed(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
