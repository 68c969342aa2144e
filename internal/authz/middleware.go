package authz

import (
	"log/slog"
	"net/http"

	"github.com/skillforge/skillforge/internal/shared"
)

// Middleware wires authorization checks for HTTP handlers.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequirePermission guards a route behind an advanced-permission check
// for (resource, action). The target context is the principal's own
// tenant and company, which is what tenant-scoped admin routes need.
func (m Middleware) RequirePermission(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			target := ResourceContext{
				TenantID:     principal.TenantID,
				CompanyID:    principal.CompanyID,
				DepartmentID: principal.DepartmentID,
			}
			ok, err := m.Service.CheckPermission(r.Context(), principal.PersonID, resource, action, target)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("authz: permission check failed", slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
