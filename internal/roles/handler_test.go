package roles

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*chi.Mux, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	stats := NewStatsService(repo, nil)
	handler := NewHandler(slog.Default(), svc, stats)

	r := chi.NewRouter()
	r.Route("/roles", handler.MountRoutes)
	return r, repo
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAddRoleEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	personID := uuid.New().String()

	rec := postJSON(t, router, "/roles", map[string]any{
		"personId": personID,
		"roleType": "Trainer",
		"tenantId": "t1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var dto assignmentDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	require.Equal(t, personID, dto.PersonID)
	require.Equal(t, "INSTRUCTOR", dto.RoleType)
	require.Equal(t, "Instructor", dto.Display)
	require.True(t, dto.IsActive)
}

func TestAddRoleEndpointConflict(t *testing.T) {
	router, _ := newTestRouter(t)
	body := map[string]any{
		"personId": uuid.New().String(),
		"roleType": "INSTRUCTOR",
		"tenantId": "t1",
	}

	rec := postJSON(t, router, "/roles", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, router, "/roles", body)
	require.Equal(t, http.StatusConflict, rec.Code)

	var problem map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, float64(http.StatusConflict), problem["status"])
}

func TestAddRoleEndpointValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := postJSON(t, router, "/roles", map[string]any{
		"personId": "not-a-uuid",
		"roleType": "INSTRUCTOR",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, router, "/roles", map[string]any{
		"personId": uuid.New().String(),
		"roleType": "WIZARD",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveRoleEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	personID := uuid.New().String()

	rec := postJSON(t, router, "/roles", map[string]any{
		"personId": personID,
		"roleType": "INSTRUCTOR",
		"tenantId": "t1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	raw, _ := json.Marshal(map[string]any{
		"personId": personID,
		"roleType": "INSTRUCTOR",
		"tenantId": "t1",
	})
	req := httptest.NewRequest(http.MethodDelete, "/roles", bytes.NewReader(raw))
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusNoContent, rec2.Code)
}

func TestListPersonRolesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	personID := uuid.New().String()

	for _, role := range []string{"INSTRUCTOR", "COORDINATOR"} {
		rec := postJSON(t, router, "/roles", map[string]any{
			"personId": personID,
			"roleType": role,
			"tenantId": "t1",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/roles/persons/"+personID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var dtos []assignmentDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	require.Len(t, dtos, 2)
}

func TestPrimaryRoleEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)
	personID := uuid.New().String()

	rec := postJSON(t, router, "/roles", map[string]any{
		"personId": personID,
		"roleType": "INSTRUCTOR",
		"tenantId": "t1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created assignmentDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// No primary yet.
	req := httptest.NewRequest(http.MethodGet, "/roles/persons/"+personID+"/primary", nil)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusNotFound, rec2.Code)

	raw, _ := json.Marshal(map[string]any{"roleId": created.ID})
	req = httptest.NewRequest(http.MethodPut, "/roles/persons/"+personID+"/primary", bytes.NewReader(raw))
	rec3 := httptest.NewRecorder()
	router.ServeHTTP(rec3, req)
	require.Equal(t, http.StatusNoContent, rec3.Code)

	req = httptest.NewRequest(http.MethodGet, "/roles/persons/"+personID+"/primary", nil)
	rec4 := httptest.NewRecorder()
	router.ServeHTTP(rec4, req)
	require.Equal(t, http.StatusOK, rec4.Code)
	var primary assignmentDTO
	require.NoError(t, json.Unmarshal(rec4.Body.Bytes(), &primary))
	require.Equal(t, created.ID, primary.ID)
	require.True(t, primary.IsPrimary)
}

func TestTransferEndpointPartialFailureIsHTTPSuccess(t *testing.T) {
	router, repo := newTestRouter(t)
	from := uuid.New().String()
	to := uuid.New().String()

	rec := postJSON(t, router, "/roles", map[string]any{
		"personId": from,
		"roleType": "INSTRUCTOR",
		"tenantId": "t1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	repo.createErr = func(a Assignment) error {
		if a.PersonID.String() == to {
			return ErrRoleExists
		}
		return nil
	}

	rec = postJSON(t, router, "/roles/transfer", map[string]any{
		"fromPersonId": from,
		"toPersonId":   to,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result TransferResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, 0, result.Transferred)
	require.Len(t, result.Errors, 1)
}

func TestRoleTypesEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/roles/types", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var types []struct {
		RoleType string `json:"roleType"`
		Display  string `json:"displayName"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &types))
	require.Len(t, types, 8)
	require.Equal(t, "SUPER_ADMIN", types[0].RoleType)
	require.Equal(t, "Super Admin", types[0].Display)
}

func TestExpirationsEndpointRejectsBadLookahead(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/roles/expirations?daysAhead=zero", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/roles/expirations?daysAhead=-2", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
