package auth

import (
	"net/http"
	"slices"

	"github.com/mindleap/mindleap/internal/models"
)

// RequireRole returns middleware that checks the authenticated user's role
// against an allow-list. The check is a pure predicate with no I/O and
// applies identically to legacy and multi-tenant users.
func (p *Pipeline) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := TenantFromContext(r.Context())
			if tc == nil || tc.User == nil {
				p.deny(w, StageRoleGate, Unauthenticated("Authentication required"))
				return
			}

			if !slices.Contains(roles, tc.User.Role) {
				p.deny(w, StageRoleGate, Forbidden("Access denied: insufficient role permissions"))
				return
			}

			p.metrics.IncAllowed(StageRoleGate)
			next.ServeHTTP(w, r)
		})
	}
}
