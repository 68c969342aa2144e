package roles

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge/internal/shared"
)

// ErrRoleExists signals a duplicate active assignment for the same scope
// tuple. The postgres implementation raises it from the unique index, so
// it fires even when two callers pass the application-level pre-check
// simultaneously.
var ErrRoleExists = fmt.Errorf("%w: role already exists for this person", shared.ErrConflict)

// ErrAssignmentNotFound signals a mutation aimed at a missing assignment.
var ErrAssignmentNotFound = fmt.Errorf("%w: role assignment", shared.ErrNotFound)

// StatusCounts partitions a tenant's assignments into disjoint buckets.
type StatusCounts struct {
	Active   int `json:"active"`
	Expired  int `json:"expired"`
	Inactive int `json:"inactive"`
}

// Repository is the persistence boundary of the role assignment store.
// Implementations must exclude soft-deleted rows from every read and must
// enforce uniqueness over (person, role type, company, tenant) for active
// rows at the storage layer.
type Repository interface {
	// WithTx runs fn inside a transaction; fn's writes are rolled back
	// if it returns an error.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error

	Create(ctx context.Context, a Assignment) (Assignment, error)
	FindActiveByScope(ctx context.Context, scope Scope) (*Assignment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Assignment, error)
	ListByPerson(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]Assignment, error)
	DeactivateByScope(ctx context.Context, scope Scope, now time.Time) (int64, error)
	GetPrimary(ctx context.Context, personID uuid.UUID) (*Assignment, error)
	ListPersonsWithRole(ctx context.Context, roleTypes []string, f ListFilters) ([]PersonWithRole, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput, now time.Time) (*Assignment, error)
	DeactivateExpired(ctx context.Context, asOf time.Time) (int64, error)

	CountActiveByRole(ctx context.Context, f ListFilters) (map[string]int, error)
	CountByStatus(ctx context.Context, tenantID string, now time.Time) (StatusCounts, error)
	CountActiveByCompany(ctx context.Context, tenantID string) (map[string]int, error)
	CountCreatedSince(ctx context.Context, tenantID string, since time.Time) (int, error)
	CountCreatedBetween(ctx context.Context, tenantID string, start, end time.Time) (int, error)
	CountDeactivatedBetween(ctx context.Context, tenantID string, start, end time.Time) (int, error)
	ListWithExpiry(ctx context.Context, tenantID string) ([]Assignment, error)
}

// TxRepository is the write surface available inside a transaction.
type TxRepository interface {
	Create(ctx context.Context, a Assignment) (Assignment, error)
	Deactivate(ctx context.Context, id uuid.UUID, now time.Time) error
	ClearPrimary(ctx context.Context, personID uuid.UUID, now time.Time) error
	// SetPrimary marks the given active assignment of the person as
	// primary, returning ErrAssignmentNotFound when no such row exists.
	SetPrimary(ctx context.Context, personID, id uuid.UUID, now time.Time) error
}
