package shared

import (
	"context"

	"github.com/google/uuid"
)

// Principal identifies the authenticated actor on whose behalf a request
// runs. It is placed in the request context by the upstream authentication
// layer; this core only reads it.
type Principal struct {
	PersonID     uuid.UUID
	TenantID     string
	CompanyID    string
	DepartmentID string
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
