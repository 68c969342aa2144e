package roles

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge/internal/authz"
	"github.com/skillforge/skillforge/internal/platform/httpx"
)

// Handler exposes the role assignment store as a JSON API.
type Handler struct {
	logger  *slog.Logger
	service *Service
	stats   *StatsService
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, stats *StatsService) *Handler {
	return &Handler{logger: logger, service: service, stats: stats}
}

// MountRoutes registers the role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.addRole)
	r.Delete("/", h.removeRole)
	r.Post("/transfer", h.transferRoles)
	r.Get("/types", h.listRoleTypes)
	r.Get("/stats", h.roleStats)
	r.Get("/report", h.completeReport)
	r.Get("/expirations", h.expirations)
	r.Get("/holders", h.personsWithRole)
	r.Patch("/{roleID}", h.updateRole)
	r.Get("/persons/{personID}", h.listPersonRoles)
	r.Get("/persons/{personID}/primary", h.getPrimary)
	r.Put("/persons/{personID}/primary", h.setPrimary)
}

type assignmentDTO struct {
	ID         string     `json:"id"`
	PersonID   string     `json:"personId"`
	RoleType   string     `json:"roleType"`
	Display    string     `json:"displayName"`
	CompanyID  string     `json:"companyId,omitempty"`
	TenantID   string     `json:"tenantId,omitempty"`
	IsActive   bool       `json:"isActive"`
	IsPrimary  bool       `json:"isPrimary"`
	ValidUntil *time.Time `json:"validUntil,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func toAssignmentDTO(a Assignment) assignmentDTO {
	return assignmentDTO{
		ID:         a.ID.String(),
		PersonID:   a.PersonID.String(),
		RoleType:   a.RoleType,
		Display:    authz.FormatRoleDisplayName(a.RoleType),
		CompanyID:  a.CompanyID,
		TenantID:   a.TenantID,
		IsActive:   a.IsActive,
		IsPrimary:  a.IsPrimary,
		ValidUntil: a.ValidUntil,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func toAssignmentDTOs(assignments []Assignment) []assignmentDTO {
	out := make([]assignmentDTO, len(assignments))
	for i, a := range assignments {
		out[i] = toAssignmentDTO(a)
	}
	return out
}

type roleRequest struct {
	PersonID  string `json:"personId"`
	RoleType  string `json:"roleType"`
	CompanyID string `json:"companyId"`
	TenantID  string `json:"tenantId"`
}

func (h *Handler) addRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if result := authz.ValidateRoleAssignment(authz.RoleAssignmentInput{
		PersonID:  req.PersonID,
		RoleType:  req.RoleType,
		CompanyID: req.CompanyID,
		TenantID:  req.TenantID,
	}); !result.IsValid {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", strings.Join(result.Errors, "; "))
		return
	}
	personID, err := uuid.Parse(req.PersonID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "personId must be a UUID")
		return
	}
	created, err := h.service.AddRole(r.Context(), personID, req.RoleType, req.CompanyID, req.TenantID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toAssignmentDTO(created))
}

func (h *Handler) removeRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	personID, err := uuid.Parse(req.PersonID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "personId must be a UUID")
		return
	}
	if err := h.service.RemoveRole(r.Context(), personID, req.RoleType, req.CompanyID, req.TenantID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPersonRoles(w http.ResponseWriter, r *http.Request) {
	personID, err := uuid.Parse(chi.URLParam(r, "personID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "person id must be a UUID")
		return
	}
	activeOnly := r.URL.Query().Get("all") != "1"
	assignments, err := h.service.GetPersonRoles(r.Context(), personID, activeOnly)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssignmentDTOs(assignments))
}

func (h *Handler) getPrimary(w http.ResponseWriter, r *http.Request) {
	personID, err := uuid.Parse(chi.URLParam(r, "personID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "person id must be a UUID")
		return
	}
	primary, err := h.service.GetPrimaryRole(r.Context(), personID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if primary == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "person has no primary role")
		return
	}
	httpx.JSON(w, http.StatusOK, toAssignmentDTO(*primary))
}

func (h *Handler) setPrimary(w http.ResponseWriter, r *http.Request) {
	personID, err := uuid.Parse(chi.URLParam(r, "personID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "person id must be a UUID")
		return
	}
	var req struct {
		RoleID string `json:"roleId"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	roleID, err := uuid.Parse(req.RoleID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "roleId must be a UUID")
		return
	}
	if err := h.service.SetPrimaryRole(r.Context(), personID, roleID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) transferRoles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromPersonID string `json:"fromPersonId"`
		ToPersonID   string `json:"toPersonId"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	from, err := uuid.Parse(req.FromPersonID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "fromPersonId must be a UUID")
		return
	}
	to, err := uuid.Parse(req.ToPersonID)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "toPersonId must be a UUID")
		return
	}
	result, err := h.service.TransferRoles(r.Context(), from, to)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	// Partial failure is a success at the HTTP layer; callers inspect errors.
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	roleID, err := uuid.Parse(chi.URLParam(r, "roleID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "role id must be a UUID")
		return
	}
	var req struct {
		CompanyID  *string `json:"companyId"`
		TenantID   *string `json:"tenantId"`
		ValidUntil *string `json:"validUntil"`
		IsPrimary  *bool   `json:"isPrimary"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid JSON body")
		return
	}
	if result := authz.ValidateCustomRoleUpdate(authz.CustomRoleUpdateInput{
		CompanyID:  req.CompanyID,
		TenantID:   req.TenantID,
		ValidUntil: req.ValidUntil,
	}); !result.IsValid {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", strings.Join(result.Errors, "; "))
		return
	}
	in := UpdateInput{CompanyID: req.CompanyID, TenantID: req.TenantID, IsPrimary: req.IsPrimary}
	if req.ValidUntil != nil {
		if *req.ValidUntil == "" {
			in.ClearValidUntil = true
		} else {
			t, err := time.Parse(time.RFC3339, *req.ValidUntil)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validUntil must be RFC3339")
				return
			}
			in.ValidUntil = &t
		}
	}
	updated, err := h.service.UpdateRole(r.Context(), roleID, in)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAssignmentDTO(*updated))
}

func (h *Handler) personsWithRole(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roleTypes := q["roleType"]
	if len(roleTypes) == 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "at least one roleType is required")
		return
	}
	holders, err := h.service.GetPersonsWithRole(r.Context(), roleTypes, ListFilters{
		TenantID:  q.Get("tenantId"),
		CompanyID: q.Get("companyId"),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	type holderDTO struct {
		PersonID   string        `json:"personId"`
		GivenName  string        `json:"givenName"`
		FamilyName string        `json:"familyName"`
		Assignment assignmentDTO `json:"assignment"`
	}
	out := make([]holderDTO, len(holders))
	for i, hr := range holders {
		out[i] = holderDTO{
			PersonID:   hr.Person.ID.String(),
			GivenName:  hr.Person.GivenName,
			FamilyName: hr.Person.FamilyName,
			Assignment: toAssignmentDTO(hr.Assignment),
		}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) listRoleTypes(w http.ResponseWriter, r *http.Request) {
	type roleTypeDTO struct {
		RoleType string `json:"roleType"`
		Display  string `json:"displayName"`
	}
	roles := authz.CanonicalRoles()
	out := make([]roleTypeDTO, len(roles))
	for i, role := range roles {
		out[i] = roleTypeDTO{RoleType: role, Display: authz.FormatRoleDisplayName(role)}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) roleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.service.GetRoleStats(r.Context(), ListFilters{
		TenantID:  q.Get("tenantId"),
		CompanyID: q.Get("companyId"),
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) completeReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.stats.CompleteRoleReport(r.Context(), r.URL.Query().Get("tenantId"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) expirations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	daysAhead := DefaultExpiryLookahead
	if raw := q.Get("daysAhead"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "daysAhead must be a positive integer")
			return
		}
		daysAhead = parsed
	}
	stats, err := h.stats.ExpirationStats(r.Context(), q.Get("tenantId"), daysAhead)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}
