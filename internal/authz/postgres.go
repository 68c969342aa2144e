package authz

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPermissionRepository provides pgx backed reads of advanced
// permissions and catalog grants.
type PostgresPermissionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPermissionRepository constructs a repository.
func NewPostgresPermissionRepository(pool *pgxpool.Pool) *PostgresPermissionRepository {
	return &PostgresPermissionRepository{pool: pool}
}

// ListAdvancedByAssignments returns the advanced permissions attached to
// the given assignments.
func (r *PostgresPermissionRepository) ListAdvancedByAssignments(ctx context.Context, assignmentIDs []uuid.UUID) ([]AdvancedPermission, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, role_assignment_id, resource, action, scope, allowed_fields, conditions, created_at
		FROM advanced_permissions
		WHERE role_assignment_id = ANY($1) AND deleted_at IS NULL`, assignmentIDs)
	if err != nil {
		return nil, fmt.Errorf("authz: list advanced permissions: %w", err)
	}
	defer rows.Close()
	var out []AdvancedPermission
	for rows.Next() {
		var p AdvancedPermission
		var conditions []byte
		if err := rows.Scan(&p.ID, &p.RoleAssignmentID, &p.Resource, &p.Action, &p.Scope, &p.AllowedFields, &conditions, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("authz: scan advanced permission: %w", err)
		}
		if len(conditions) > 0 {
			if err := json.Unmarshal(conditions, &p.Conditions); err != nil {
				return nil, fmt.Errorf("authz: decode conditions: %w", err)
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("authz: list advanced permissions: %w", err)
	}
	return out, nil
}

// ListGrantsByAssignments returns the catalog grants attached to the
// given assignments.
func (r *PostgresPermissionRepository) ListGrantsByAssignments(ctx context.Context, assignmentIDs []uuid.UUID) ([]RoleGrant, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT role_assignment_id, permission_id, granted
		FROM role_permissions
		WHERE role_assignment_id = ANY($1) AND deleted_at IS NULL`, assignmentIDs)
	if err != nil {
		return nil, fmt.Errorf("authz: list grants: %w", err)
	}
	defer rows.Close()
	var out []RoleGrant
	for rows.Next() {
		var g RoleGrant
		if err := rows.Scan(&g.RoleAssignmentID, &g.PermissionID, &g.Granted); err != nil {
			return nil, fmt.Errorf("authz: scan grant: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("authz: list grants: %w", err)
	}
	return out, nil
}
