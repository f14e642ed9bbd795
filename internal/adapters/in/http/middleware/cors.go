// internal/adapters/in/http/middleware/cors.go
package middleware

import (
	"net/http"
	"os"
	"strings"
)

const envAllowedOrigin = "CORS_ALLOWED_ORIGIN"

// CORS allows the storefront origin. The origin comes from
// CORS_ALLOWED_ORIGIN; "*" is acceptable in development only.
func CORS(next http.Handler) http.Handler {
	origin := strings.TrimSpace(os.Getenv(envAllowedOrigin))
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type,X-Session-Id,X-Payment-Signature")
		w.Header().Set("Access-Control-Max-Age", "600")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
