package persons

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Service provides person lookups for the authorization layer and API.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// GetPersonByID returns the person, or nil when absent. Absence is not an
// error.
func (s *Service) GetPersonByID(ctx context.Context, id uuid.UUID) (*Person, error) {
	person, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("persons: get by id failed", slog.Any("error", err))
		return nil, err
	}
	return person, nil
}

// ListPersons returns a page of a tenant's persons.
func (s *Service) ListPersons(ctx context.Context, tenantID string, limit, offset int) ([]Person, error) {
	return s.repo.ListByTenant(ctx, tenantID, limit, offset)
}
