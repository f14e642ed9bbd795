// internal/adapters/in/http/middleware/admin_auth.go
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// AdminAuthMiddleware guards the back-office endpoints (media upload, stock
// override) with a static bearer token. The storefront never sees this
// token; it lives in the operator's tooling only.
type AdminAuthMiddleware struct {
	Token string
}

func (m *AdminAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := strings.TrimSpace(m.Token)
		if want == "" {
			http.Error(w, "admin auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}
		got := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
