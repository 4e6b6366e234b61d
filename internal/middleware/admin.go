package middleware

import (
	"net/http"
)

type Authenticator interface {
	Authenticate(login, password string) bool
}

// AdminAuth возвращает middleware для проверки учетных данных оператора
// (HTTP Basic).
func AdminAuth(a Authenticator) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			login, password, ok := r.BasicAuth()
			if !ok || !a.Authenticate(login, password) {
				w.Header().Set("WWW-Authenticate", `Basic realm="printshop", charset="UTF-8"`)
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
