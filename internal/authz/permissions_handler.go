package authz

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge/internal/platform/httpx"
)

// PermissionsHandler exposes the catalog and per-person resolved
// permissions for diagnostics and admin UI.
type PermissionsHandler struct {
	logger  *slog.Logger
	catalog Catalog
	service *Service
}

// NewPermissionsHandler builds a PermissionsHandler.
func NewPermissionsHandler(logger *slog.Logger, catalog Catalog, service *Service) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, catalog: catalog, service: service}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/", h.listCatalog)
	r.Get("/persons/{personID}", h.personPermissions)
	r.Get("/roles/validate", h.validateRoleType)
}

func (h *PermissionsHandler) listCatalog(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": h.catalog.List()})
}

func (h *PermissionsHandler) personPermissions(w http.ResponseWriter, r *http.Request) {
	personID, err := uuid.Parse(chi.URLParam(r, "personID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "person id must be a UUID")
		return
	}
	perms, err := h.service.GetPersonAdvancedPermissions(r.Context(), personID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, perms)
}

func (h *PermissionsHandler) validateRoleType(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	httpx.JSON(w, http.StatusOK, ValidateRoleType(role))
}
