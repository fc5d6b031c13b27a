package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"leagueledger/pkg/platform/httputil"
)

// RequireSharedSecret gates a route group behind a static bearer secret.
// The comparison is constant-time so the secret cannot be probed byte by
// byte. An empty configured secret rejects everything; running without a
// secret must be an explicit routing decision, not a silent bypass.
func RequireSharedSecret(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "

			presented, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(r.Context(), "unauthorized access - missing bearer secret",
					"path", r.URL.Path,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			if secret == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				logger.WarnContext(r.Context(), "unauthorized access - secret mismatch",
					"path", r.URL.Path,
				)
				writeUnauthorized(w, "Invalid API secret")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "unauthorized",
		"error_description": description,
	})
}
