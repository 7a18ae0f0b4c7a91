package auth

import (
	"net/http"

	"github.com/locpham246/task-manager/internal/transport"
)

// RoleGuard produces middleware that gates a route subtree on the principal's
// role. It assumes the session middleware already ran.
type RoleGuard struct {
	base   *transport.BaseHandler
	policy Policy
}

func NewRoleGuard(base *transport.BaseHandler) *RoleGuard {
	return &RoleGuard{base: base, policy: NewPolicy()}
}

// RequireAdmin admits admin and super_admin.
func (g *RoleGuard) RequireAdmin(next http.Handler) http.Handler {
	return g.require(next, func(role Role) bool { return role.IsAdmin() })
}

// RequireSuperAdmin admits super_admin only.
func (g *RoleGuard) RequireSuperAdmin(next http.Handler) http.Handler {
	return g.require(next, func(role Role) bool { return role.IsSuperAdmin() })
}

func (g *RoleGuard) require(next http.Handler, allowed func(Role) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := UserFromContext(r.Context())
		if !ok {
			g.base.WriteError(w, ErrInvalidCredential)
			return
		}
		if !allowed(principal.Role) {
			g.base.WriteError(w, ErrRoleDenied)
			return
		}
		next.ServeHTTP(w, r)
	})
}
