package admin

import (
	"crypto/subtle"
	"net/http"

	"eventboard/internal/logger"
)

// TokenHeader carries the shared admin secret.
const TokenHeader = "X-Admin-Token"

// Middleware guards the admin routes with a shared-secret header check. An
// empty configured secret refuses every request rather than allowing all;
// main treats that as a fatal configuration error before we ever get here.
func Middleware(secret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				log.LogSecurity("ADMIN_AUTH", "admin secret not configured, refusing request")
				http.Error(w, "admin access not configured", http.StatusServiceUnavailable)
				return
			}

			token := r.Header.Get(TokenHeader)
			if token == "" {
				http.Error(w, "missing "+TokenHeader+" header", http.StatusUnauthorized)
				return
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				log.LogSecurity("ADMIN_AUTH", "rejected request with bad admin token")
				http.Error(w, "invalid admin token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
