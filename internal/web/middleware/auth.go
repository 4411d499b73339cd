package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/zoheirhassoun/Telegram-bot/internal/logging"
)

// SecretTokenHeader carries the secret given to setWebhook on every update POST.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// SecretToken returns middleware that rejects requests whose
// X-Telegram-Bot-Api-Secret-Token header does not equal secret.
// An empty secret disables the check.
func SecretToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(SecretTokenHeader)
			if got == "" {
				logging.FromContext(r.Context()).Warn("webhook: missing secret token",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, `{"error":"missing secret token"}`, http.StatusUnauthorized)
				return
			}

			// Constant-time; lengths are not secret.
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				logging.FromContext(r.Context()).Warn("webhook: invalid secret token",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, `{"error":"invalid secret token"}`, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
