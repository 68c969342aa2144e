package authz

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AdvancedPermission is a fine-grained grant attached to a role
// assignment: a (resource, action) pair with a declared scope, an
// optional field whitelist and optional structured conditions.
type AdvancedPermission struct {
	ID               uuid.UUID      `json:"id"`
	RoleAssignmentID uuid.UUID      `json:"roleAssignmentId"`
	Resource         string         `json:"resource"`
	Action           string         `json:"action"`
	Scope            string         `json:"scope"`
	AllowedFields    []string       `json:"allowedFields,omitempty"`
	Conditions       map[string]any `json:"conditions,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// RoleGrant is a boolean grant of a catalog permission identifier for a
// role assignment.
type RoleGrant struct {
	RoleAssignmentID uuid.UUID `json:"roleAssignmentId"`
	PermissionID     string    `json:"permissionId"`
	Granted          bool      `json:"granted"`
}

// PermissionRepository reads the grants attached to role assignments.
// Implementations must exclude soft-deleted rows.
type PermissionRepository interface {
	ListAdvancedByAssignments(ctx context.Context, assignmentIDs []uuid.UUID) ([]AdvancedPermission, error)
	ListGrantsByAssignments(ctx context.Context, assignmentIDs []uuid.UUID) ([]RoleGrant, error)
}
