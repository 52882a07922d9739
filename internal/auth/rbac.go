package auth

import (
	"log/slog"
	"net/http"
)

// RBACAuthorization gates route groups on a single permission bit. Services
// re-check the fine-grained decisions, so this middleware only keeps actors
// without the relevant read bit away from whole sections.
type RBACAuthorization struct {
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{logger: logger}
}

func (ra *RBACAuthorization) Check(next http.HandlerFunc, permission string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok || !actor.IsAuthenticated() {
			ra.logger.Warn("authorization check failed: actor not found in context")
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		if !actor.HasPermission(permission) {
			ra.logger.WarnContext(r.Context(), "access denied: insufficient permissions",
				"user_id", actor.ID,
				"role", actor.Role,
				"required_permission", permission)
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	}
}

func (ra *RBACAuthorization) Middleware(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return ra.Check(next.ServeHTTP, permission)
	}
}
