package persons

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	people map[uuid.UUID]Person
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{people: make(map[uuid.UUID]Person)}
}

func (r *memoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Person, error) {
	p, ok := r.people[id]
	if !ok || p.DeletedAt != nil {
		return nil, nil
	}
	return &p, nil
}

func (r *memoryRepo) ListByTenant(_ context.Context, tenantID string, limit, offset int) ([]Person, error) {
	var out []Person
	for _, p := range r.people {
		if p.TenantID == tenantID && p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FamilyName < out[j].FamilyName })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestRouter(repo Repository) *chi.Mux {
	svc := NewService(repo, slog.Default())
	handler := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	r.Route("/persons", handler.MountRoutes)
	return r
}

func seedPerson(repo *memoryRepo, tenantID, familyName string) Person {
	p := Person{
		ID:           uuid.New(),
		TenantID:     tenantID,
		GivenName:    "Test",
		FamilyName:   familyName,
		Email:        familyName + "@example.test",
		PasswordHash: "$2a$10$secret",
		ResetToken:   "tok",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	repo.people[p.ID] = p
	return p
}

func TestGetPersonStripsCredentials(t *testing.T) {
	repo := newMemoryRepo()
	p := seedPerson(repo, "t1", "Berg")
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/persons/"+p.ID.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, p.ID.String(), body["id"])
	require.Equal(t, "Berg", body["familyName"])
	require.NotContains(t, body, "passwordHash")
	require.NotContains(t, body, "resetToken")
}

func TestGetPersonNotFound(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	req := httptest.NewRequest(http.MethodGet, "/persons/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/persons/not-a-uuid", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPersons(t *testing.T) {
	repo := newMemoryRepo()
	for _, name := range []string{"Berg", "Lund", "Sato"} {
		seedPerson(repo, "t1", name)
	}
	seedPerson(repo, "t2", "Novak")
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/persons?tenantId=t1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Persons []map[string]any `json:"persons"`
		Page    int              `json:"page"`
		Limit   int              `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Persons, 3)
	require.Equal(t, 1, body.Page)
	require.Equal(t, 20, body.Limit)
	require.Equal(t, "Berg", body.Persons[0]["familyName"])
	for _, p := range body.Persons {
		require.NotContains(t, p, "passwordHash")
	}
}

func TestListPersonsClampsPagination(t *testing.T) {
	repo := newMemoryRepo()
	seedPerson(repo, "t1", "Berg")
	router := newTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/persons?tenantId=t1&page=-5&limit=1000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Page)
	require.Equal(t, 100, body.Limit)
}

func TestListPersonsRequiresTenant(t *testing.T) {
	router := newTestRouter(newMemoryRepo())

	req := httptest.NewRequest(http.MethodGet, "/persons", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
