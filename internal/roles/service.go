package roles

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge/internal/authz"
	"github.com/skillforge/skillforge/internal/shared"
)

// Invalidator drops cached permission resolutions after a role mutation.
type Invalidator interface {
	InvalidatePerson(ctx context.Context, personID uuid.UUID) error
}

// Service orchestrates the role assignment lifecycle.
type Service struct {
	repo        Repository
	logger      *slog.Logger
	audit       *shared.AuditLogger
	invalidator Invalidator
	now         func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// SetAuditLogger enables audit records for role mutations.
func (s *Service) SetAuditLogger(audit *shared.AuditLogger) {
	s.audit = audit
}

// SetInvalidator wires permission-cache invalidation into mutations.
func (s *Service) SetInvalidator(inv Invalidator) {
	s.invalidator = inv
}

// AddRole assigns a role to a person, scoped by optional company and
// tenant. The role name is mapped through the canonical vocabulary first.
// A duplicate active assignment for the identical scope tuple fails with
// ErrRoleExists; the storage-level unique index makes that hold under
// concurrent identical calls as well.
func (s *Service) AddRole(ctx context.Context, personID uuid.UUID, roleType, companyID, tenantID string) (Assignment, error) {
	if personID == uuid.Nil {
		return Assignment{}, fmt.Errorf("%w: person id required", shared.ErrValidation)
	}
	token, err := authz.CreateRoleType(roleType)
	if err != nil {
		return Assignment{}, err
	}
	mapped := authz.MapRoleType(token)

	scope := Scope{PersonID: personID, RoleType: mapped, CompanyID: companyID, TenantID: tenantID}
	existing, err := s.repo.FindActiveByScope(ctx, scope)
	if err != nil {
		s.logger.Error("roles: duplicate check failed", slog.Any("error", err))
		return Assignment{}, err
	}
	if existing != nil {
		return Assignment{}, ErrRoleExists
	}

	now := s.now()
	created, err := s.repo.Create(ctx, Assignment{
		ID:        uuid.New(),
		PersonID:  personID,
		RoleType:  mapped,
		CompanyID: companyID,
		TenantID:  tenantID,
		IsActive:  true,
		IsPrimary: false,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Assignment{}, err
	}
	s.invalidate(ctx, personID)
	s.recordAudit(ctx, tenantID, "role.add", created.ID.String(), map[string]any{"personId": personID.String(), "roleType": mapped})
	return created, nil
}

// RemoveRole soft-deactivates all assignments matching the scope tuple.
// Removing an already-inactive role is a no-op. A deactivated primary is
// not replaced automatically; callers must designate a new primary
// explicitly.
func (s *Service) RemoveRole(ctx context.Context, personID uuid.UUID, roleType, companyID, tenantID string) error {
	mapped := authz.MapRoleType(roleType)
	scope := Scope{PersonID: personID, RoleType: mapped, CompanyID: companyID, TenantID: tenantID}
	affected, err := s.repo.DeactivateByScope(ctx, scope, s.now())
	if err != nil {
		s.logger.Error("roles: remove role failed", slog.Any("error", err))
		return err
	}
	if affected > 0 {
		s.invalidate(ctx, personID)
		s.recordAudit(ctx, tenantID, "role.remove", personID.String(), map[string]any{"roleType": mapped})
	}
	return nil
}

// GetPersonRoles returns a person's assignments ordered primary first,
// then by creation time ascending.
func (s *Service) GetPersonRoles(ctx context.Context, personID uuid.UUID, activeOnly bool) ([]Assignment, error) {
	return s.repo.ListByPerson(ctx, personID, activeOnly)
}

// SetPrimaryRole designates the given assignment as the person's single
// primary role. The clear-then-set sequence runs inside one transaction;
// a failure on either step leaves the store as it was.
func (s *Service) SetPrimaryRole(ctx context.Context, personID, roleID uuid.UUID) error {
	now := s.now()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.ClearPrimary(ctx, personID, now); err != nil {
			return err
		}
		return tx.SetPrimary(ctx, personID, roleID, now)
	})
	if err != nil {
		s.logger.Error("roles: set primary failed", slog.String("person", personID.String()), slog.Any("error", err))
		return err
	}
	s.invalidate(ctx, personID)
	s.recordAudit(ctx, "", "role.set_primary", roleID.String(), map[string]any{"personId": personID.String()})
	return nil
}

// GetPrimaryRole returns the single active primary assignment, or nil
// when the person has none. Absence is not an error.
func (s *Service) GetPrimaryRole(ctx context.Context, personID uuid.UUID) (*Assignment, error) {
	return s.repo.GetPrimary(ctx, personID)
}

// HasRole reports whether the person holds an active assignment whose
// role type is in the given set. Company and tenant filters, when
// supplied, must both match.
func (s *Service) HasRole(ctx context.Context, personID uuid.UUID, roleTypes []string, companyID, tenantID string) (bool, error) {
	wanted := make(map[string]struct{}, len(roleTypes))
	for _, rt := range roleTypes {
		wanted[authz.MapRoleType(rt)] = struct{}{}
	}
	assignments, err := s.repo.ListByPerson(ctx, personID, true)
	if err != nil {
		return false, err
	}
	for _, a := range assignments {
		if _, ok := wanted[a.RoleType]; !ok {
			continue
		}
		if companyID != "" && a.CompanyID != companyID {
			continue
		}
		if tenantID != "" && a.TenantID != tenantID {
			continue
		}
		return true, nil
	}
	return false, nil
}

// GetPersonsWithRole is the inverse lookup, ordered by family name.
func (s *Service) GetPersonsWithRole(ctx context.Context, roleTypes []string, f ListFilters) ([]PersonWithRole, error) {
	mapped := make([]string, 0, len(roleTypes))
	for _, rt := range roleTypes {
		mapped = append(mapped, authz.MapRoleType(rt))
	}
	return s.repo.ListPersonsWithRole(ctx, mapped, f)
}

// TransferRoles moves every active assignment from one person to another.
// The batch is best-effort: each role's deactivate+create pair is atomic,
// but a failure on one role does not stop the rest. Per-role failures are
// collected into the result, never propagated.
func (s *Service) TransferRoles(ctx context.Context, fromPersonID, toPersonID uuid.UUID) (TransferResult, error) {
	assignments, err := s.repo.ListByPerson(ctx, fromPersonID, true)
	if err != nil {
		s.logger.Error("roles: transfer source listing failed", slog.Any("error", err))
		return TransferResult{}, err
	}

	result := TransferResult{Errors: []TransferError{}}
	now := s.now()
	for _, a := range assignments {
		a := a
		err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			if err := tx.Deactivate(ctx, a.ID, now); err != nil {
				return err
			}
			_, err := tx.Create(ctx, Assignment{
				ID:         uuid.New(),
				PersonID:   toPersonID,
				RoleType:   a.RoleType,
				CompanyID:  a.CompanyID,
				TenantID:   a.TenantID,
				IsActive:   true,
				IsPrimary:  false,
				ValidUntil: a.ValidUntil,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
			return err
		})
		if err != nil {
			s.logger.Warn("roles: transfer skipped role",
				slog.String("roleType", a.RoleType), slog.Any("error", err))
			result.Errors = append(result.Errors, TransferError{RoleType: a.RoleType, Error: err.Error()})
			continue
		}
		result.Transferred++
	}

	s.invalidate(ctx, fromPersonID)
	s.invalidate(ctx, toPersonID)
	s.recordAudit(ctx, "", "role.transfer", fromPersonID.String(), map[string]any{
		"toPersonId":  toPersonID.String(),
		"transferred": result.Transferred,
		"failed":      len(result.Errors),
	})
	return result, nil
}

// GetRoleStats counts active assignments grouped by role type,
// zero-filled for every canonical role type.
func (s *Service) GetRoleStats(ctx context.Context, f ListFilters) (Stats, error) {
	counts, err := s.repo.CountActiveByRole(ctx, f)
	if err != nil {
		return Stats{}, err
	}
	byRole := make(map[string]int, len(counts))
	total := 0
	for _, role := range authz.CanonicalRoles() {
		byRole[role] = counts[role]
	}
	for role, n := range counts {
		byRole[role] = n
		total += n
	}
	return Stats{ByRole: byRole, Total: total, GeneratedAt: s.now()}, nil
}

// UpdateRole applies a generic patch to an assignment and stamps
// updated_at. No business-rule validation happens here beyond what the
// caller supplies.
func (s *Service) UpdateRole(ctx context.Context, roleID uuid.UUID, in UpdateInput) (*Assignment, error) {
	updated, err := s.repo.Update(ctx, roleID, in, s.now())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, updated.PersonID)
	return updated, nil
}

// ActiveAssignmentIDs lists a person's active assignment IDs. It exists
// for the authorization facade, which resolves grants per assignment.
func (s *Service) ActiveAssignmentIDs(ctx context.Context, personID uuid.UUID) ([]uuid.UUID, error) {
	assignments, err := s.repo.ListByPerson(ctx, personID, true)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(assignments))
	now := s.now()
	for _, a := range assignments {
		if a.Expired(now) {
			continue
		}
		ids = append(ids, a.ID)
	}
	return ids, nil
}

func (s *Service) invalidate(ctx context.Context, personID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidatePerson(ctx, personID); err != nil {
		s.logger.Warn("roles: cache invalidation failed", slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, tenantID, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	actor := uuid.Nil
	if p := shared.PrincipalFromContext(ctx); p != nil {
		actor = p.PersonID
		if tenantID == "" {
			tenantID = p.TenantID
		}
	}
	log := shared.AuditLog{ActorID: actor, TenantID: tenantID, Action: action, Entity: "role_assignment", EntityID: entityID}
	if err := s.audit.Record(ctx, log); err != nil {
		s.logger.Warn("roles: audit record failed", slog.Any("error", err))
	}
}
