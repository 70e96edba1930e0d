package rbac

import (
	"log/slog"
	"net/http"

	"github.com/minimart-pos/minimart-pos/internal/platform/httpx"
)

// Middleware gates handlers on the actor's capability set.
type Middleware struct {
	Logger *slog.Logger
}

// Require ensures the current actor holds at least one of the capabilities.
func (m Middleware) Require(caps ...Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(caps) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				httpx.Fail(w, http.StatusUnauthorized, "authentication required")
				return
			}
			for _, c := range caps {
				if actor.Role.Can(c) {
					next.ServeHTTP(w, r)
					return
				}
			}
			if m.Logger != nil {
				m.Logger.Warn("capability denied",
					slog.Int64("user_id", actor.ID),
					slog.String("role", string(actor.Role)),
					slog.String("path", r.URL.Path))
			}
			httpx.Fail(w, http.StatusForbidden, "insufficient permissions")
		})
	}
}
