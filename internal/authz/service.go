package authz

import (
	"context"
	"log/slog"
	"maps"

	"github.com/google/uuid"

	"github.com/skillforge/skillforge/internal/shared"
)

// RoleSource lists a person's active, unexpired role assignment IDs. The
// role assignment store satisfies this.
type RoleSource interface {
	ActiveAssignmentIDs(ctx context.Context, personID uuid.UUID) ([]uuid.UUID, error)
}

// Config carries the facade's explicit policy knobs.
type Config struct {
	// DefaultAllow decides what FilterAllowedFields returns when no
	// passing grant declares any field: all fields (true) or none
	// (false). This must be configured deliberately by the caller; the
	// zero value denies.
	DefaultAllow bool
}

// Service is the authorization facade: it composes the permission
// catalog, the scope evaluator, the field projector and the role
// assignment store into the operations upstream callers need.
type Service struct {
	catalog      Catalog
	roles        RoleSource
	perms        PermissionRepository
	cache        *PermissionCache
	logger       *slog.Logger
	defaultAllow bool
}

// NewService constructs the facade.
func NewService(catalog Catalog, roles RoleSource, perms PermissionRepository, logger *slog.Logger, cfg Config) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog:      catalog,
		roles:        roles,
		perms:        perms,
		logger:       logger,
		defaultAllow: cfg.DefaultAllow,
	}
}

// SetCache enables the redis-backed permission cache.
func (s *Service) SetCache(cache *PermissionCache) {
	s.cache = cache
}

// CheckPermission reports whether the person holds at least one advanced
// permission for (resource, action) whose scope check passes against the
// target context.
func (s *Service) CheckPermission(ctx context.Context, personID uuid.UUID, resource, action string, target ResourceContext) (bool, error) {
	perms, err := s.resolveAdvanced(ctx, personID)
	if err != nil {
		return false, err
	}
	caller := s.callerContext(ctx, personID)
	for _, p := range perms {
		if p.Resource != resource || p.Action != action {
			continue
		}
		if CheckScope(p.Scope, caller, target) {
			return true, nil
		}
	}
	return false, nil
}

// FilterAllowedFields projects data down to the union of allowed fields
// across every passing grant for (resource, action). A passing grant with
// no field whitelist is unrestricted and passes data through whole. With
// no passing grant at all the configured default applies: all fields or
// an empty record.
func (s *Service) FilterAllowedFields(ctx context.Context, personID uuid.UUID, resource, action string, data map[string]any, target ResourceContext) (map[string]any, error) {
	perms, err := s.resolveAdvanced(ctx, personID)
	if err != nil {
		return nil, err
	}
	caller := s.callerContext(ctx, personID)

	var union []string
	seen := make(map[string]struct{})
	passed := false
	unrestricted := false
	for _, p := range perms {
		if p.Resource != resource || p.Action != action {
			continue
		}
		if !CheckScope(p.Scope, caller, target) {
			continue
		}
		passed = true
		if len(p.AllowedFields) == 0 {
			unrestricted = true
			continue
		}
		for _, f := range p.AllowedFields {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			union = append(union, f)
		}
	}

	if !passed {
		if s.defaultAllow {
			return maps.Clone(data), nil
		}
		return map[string]any{}, nil
	}
	if unrestricted {
		return maps.Clone(data), nil
	}
	return Project(data, union), nil
}

// PersonPermissions is the resolved permission set for diagnostics and UI.
type PersonPermissions struct {
	PersonID uuid.UUID            `json:"personId"`
	Advanced []AdvancedPermission `json:"advanced"`
	Granted  []string             `json:"granted"`
}

// GetPersonAdvancedPermissions lists the person's resolved grants. The
// catalog filters the boolean grants; a failed grant lookup is logged and
// skipped rather than failing the whole aggregation.
func (s *Service) GetPersonAdvancedPermissions(ctx context.Context, personID uuid.UUID) (PersonPermissions, error) {
	ids, err := s.roles.ActiveAssignmentIDs(ctx, personID)
	if err != nil {
		s.logger.Error("authz: resolve assignments failed", slog.Any("error", err))
		return PersonPermissions{}, err
	}

	advanced, err := s.perms.ListAdvancedByAssignments(ctx, ids)
	if err != nil {
		s.logger.Error("authz: advanced permission lookup failed", slog.Any("error", err))
		return PersonPermissions{}, err
	}

	result := PersonPermissions{PersonID: personID, Advanced: advanced, Granted: []string{}}
	grants, err := s.perms.ListGrantsByAssignments(ctx, ids)
	if err != nil {
		// Grants are supplementary here; keep the advanced set usable.
		s.logger.Warn("authz: grant lookup failed", slog.Any("error", err))
		return result, nil
	}
	seen := make(map[string]struct{})
	for _, g := range grants {
		if !g.Granted || !s.catalog.IsValid(g.PermissionID) {
			continue
		}
		if _, ok := seen[g.PermissionID]; ok {
			continue
		}
		seen[g.PermissionID] = struct{}{}
		result.Granted = append(result.Granted, g.PermissionID)
	}
	return result, nil
}

func (s *Service) resolveAdvanced(ctx context.Context, personID uuid.UUID) ([]AdvancedPermission, error) {
	if s.cache != nil {
		perms, hit, err := s.cache.Get(ctx, personID)
		if err != nil {
			s.logger.Warn("authz: cache read failed", slog.Any("error", err))
		} else if hit {
			return perms, nil
		}
	}

	ids, err := s.roles.ActiveAssignmentIDs(ctx, personID)
	if err != nil {
		s.logger.Error("authz: resolve assignments failed", slog.Any("error", err))
		return nil, err
	}
	perms, err := s.perms.ListAdvancedByAssignments(ctx, ids)
	if err != nil {
		s.logger.Error("authz: advanced permission lookup failed", slog.Any("error", err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, personID, perms); err != nil {
			s.logger.Warn("authz: cache write failed", slog.Any("error", err))
		}
	}
	return perms, nil
}

// callerContext derives the scope-check context for the person. When the
// request principal is the same person its tenant and company identifiers
// apply; otherwise only the identity is known.
func (s *Service) callerContext(ctx context.Context, personID uuid.UUID) CallerContext {
	if p := shared.PrincipalFromContext(ctx); p != nil && p.PersonID == personID {
		return CallerContext{
			PersonID:     p.PersonID,
			TenantID:     p.TenantID,
			CompanyID:    p.CompanyID,
			DepartmentID: p.DepartmentID,
		}
	}
	return CallerContext{PersonID: personID}
}
