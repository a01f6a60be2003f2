// Package api implements the daivaya REST API using chi.
package api

import (
	"net/http"
	"strings"

	"github.com/starford/daivaya/internal/identity"
)

// AuthMiddleware resolves the Bearer token through p and stores the user in
// the request context. Requests the provider rejects get 401.
func AuthMiddleware(p identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				token = ""
			}
			u, err := p.Verify(r.Context(), strings.TrimSpace(token))
			if err != nil {
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(identity.WithUser(r.Context(), u)))
		})
	}
}

// userFrom returns the user set by AuthMiddleware.
func userFrom(r *http.Request) identity.User {
	u, _ := identity.FromContext(r.Context())
	return u
}
