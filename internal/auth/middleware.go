package auth

import (
	"net/http"
	"strings"

	"github.com/minimart-pos/minimart-pos/internal/platform/httpx"
	"github.com/minimart-pos/minimart-pos/internal/rbac"
)

// Authenticate resolves the bearer token and stores the actor in the request
// context. Requests without a valid token are rejected before any handler runs.
func Authenticate(tokens TokenPort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httpx.Fail(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			actor, err := tokens.Resolve(r.Context(), token)
			if err != nil {
				httpx.Fail(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(rbac.ContextWithActor(r.Context(), actor)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
