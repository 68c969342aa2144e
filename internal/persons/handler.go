package persons

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skillforge/skillforge/internal/authz"
	"github.com/skillforge/skillforge/internal/platform/httpx"
	"github.com/skillforge/skillforge/internal/shared"
)

// Handler exposes person reads. Every response is projected through the
// fixed API whitelist so credential fields never leave this layer.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers person routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPersons)
	r.Get("/{personID}", h.getPerson)
}

func (h *Handler) getPerson(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "personID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "person id must be a UUID")
		return
	}
	person, err := h.service.GetPersonByID(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if person == nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "person not found")
		return
	}
	httpx.JSON(w, http.StatusOK, authz.Project(person.APIRecord(), authz.PersonAPIFields))
}

func (h *Handler) listPersons(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenantID := q.Get("tenantId")
	if tenantID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "tenantId is required")
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	limit := shared.DefaultPerPage
	if raw := q.Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}
	params := shared.LimitPaginationParams(shared.PageParams{Page: page, Limit: limit})

	people, err := h.service.ListPersons(r.Context(), tenantID, params.Limit, (params.Page-1)*params.Limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]map[string]any, len(people))
	for i, p := range people {
		out[i] = authz.Project(p.APIRecord(), authz.PersonAPIFields)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"persons": out,
		"page":    params.Page,
		"limit":   params.Limit,
	})
}
