package authz

import "github.com/google/uuid"

// Advanced permission scopes, broadest first.
const (
	ScopeGlobal     = "global"
	ScopeTenant     = "tenant"
	ScopeCompany    = "company"
	ScopeDepartment = "department"
	ScopePersonal   = "personal"
)

// NormalizeScope is the write-side rule: a missing or unrecognized scope
// is stored as tenant. The evaluator below deliberately does NOT share
// this default; on evaluation an unknown scope denies. The asymmetry
// keeps a bad scope value from ever widening access.
func NormalizeScope(scope string) string {
	switch scope {
	case ScopeGlobal, ScopeTenant, ScopeCompany, ScopeDepartment, ScopePersonal:
		return scope
	default:
		return ScopeTenant
	}
}

// IsValidScope reports whether scope is one of the five enumerated values.
func IsValidScope(scope string) bool {
	switch scope {
	case ScopeGlobal, ScopeTenant, ScopeCompany, ScopeDepartment, ScopePersonal:
		return true
	}
	return false
}

// CallerContext describes the actor a scope check runs for.
type CallerContext struct {
	PersonID     uuid.UUID
	TenantID     string
	CompanyID    string
	DepartmentID string
}

// ResourceContext describes the record a scope check runs against.
type ResourceContext struct {
	OwnerID      uuid.UUID
	TenantID     string
	CompanyID    string
	DepartmentID string
}

// CheckScope decides whether the caller's context satisfies the declared
// scope of a grant against the resource. Identifier comparisons require
// both sides to be set; an unset identifier never matches.
func CheckScope(scope string, caller CallerContext, resource ResourceContext) bool {
	switch scope {
	case ScopeGlobal:
		return true
	case ScopeTenant:
		return caller.TenantID != "" && caller.TenantID == resource.TenantID
	case ScopeCompany:
		return caller.CompanyID != "" && caller.CompanyID == resource.CompanyID
	case ScopeDepartment:
		return caller.DepartmentID != "" && caller.DepartmentID == resource.DepartmentID
	case ScopePersonal:
		return caller.PersonID != uuid.Nil && caller.PersonID == resource.OwnerID
	default:
		return false
	}
}
