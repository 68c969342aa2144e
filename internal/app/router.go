package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skillforge/skillforge/internal/authz"
	"github.com/skillforge/skillforge/internal/persons"
	"github.com/skillforge/skillforge/internal/roles"
	"github.com/skillforge/skillforge/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	RolesHandler       *roles.Handler
	PersonsHandler     *persons.Handler
	PermissionsHandler *authz.PermissionsHandler
	JobHandler         *jobs.Handler
	Authz              authz.Middleware
}

// NewRouter constructs the chi.Router with Skillforge defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{Config: params.Config}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/roles", func(r chi.Router) {
			r.Use(params.Authz.RequirePermission("roles", "manage"))
			params.RolesHandler.MountRoutes(r)
		})
		r.Route("/persons", func(r chi.Router) {
			r.Use(params.Authz.RequirePermission("persons", "read"))
			params.PersonsHandler.MountRoutes(r)
		})
		r.Route("/permissions", func(r chi.Router) {
			r.Use(params.Authz.RequirePermission("permissions", "read"))
			params.PermissionsHandler.MountRoutes(r)
		})
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.Authz.RequirePermission("reports", "read"))
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	return r
}
