package middleware

import (
	"crypto/subtle"
	"net/http"
)

// SecretTokenHeader заголовок, в котором Telegram присылает secret_token webhook'а
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WithSecretToken: HTTP middleware: при непустом secret сверяет заголовок
// X-Telegram-Bot-Api-Secret-Token и возвращает 401 при несовпадении
func WithSecretToken(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(SecretTokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				http.Error(w, "invalid secret token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
