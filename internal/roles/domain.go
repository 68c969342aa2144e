// Package roles implements the role assignment store: the lifecycle of
// person-to-role associations including primary role designation, scoped
// duplicate prevention, best-effort transfer and reporting reads.
package roles

import (
	"time"

	"github.com/google/uuid"
)

// Assignment associates a person with a canonical role type, optionally
// scoped to a company and tenant. Assignments are soft-deleted only;
// every read path excludes rows with DeletedAt set.
type Assignment struct {
	ID            uuid.UUID
	PersonID      uuid.UUID
	RoleType      string
	CompanyID     string
	TenantID      string
	IsActive      bool
	IsPrimary     bool
	ValidUntil    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeactivatedAt *time.Time
	DeletedAt     *time.Time
}

// Expired reports whether the assignment's validity window has passed.
func (a Assignment) Expired(now time.Time) bool {
	return a.ValidUntil != nil && a.ValidUntil.Before(now)
}

// Scope is the tuple that identifies an assignment for duplicate checks
// and removal. An empty CompanyID or TenantID means "not scoped to one".
type Scope struct {
	PersonID  uuid.UUID
	RoleType  string
	CompanyID string
	TenantID  string
}

// PersonRef is the slice of person data the store needs for inverse
// lookups; person lifecycle is owned elsewhere.
type PersonRef struct {
	ID         uuid.UUID
	GivenName  string
	FamilyName string
	TenantID   string
	CompanyID  string
}

// PersonWithRole pairs an assignment with its person for inverse lookups.
type PersonWithRole struct {
	Person     PersonRef
	Assignment Assignment
}

// UpdateInput is a generic assignment patch. Nil pointers leave the field
// untouched; ClearValidUntil removes the expiry.
type UpdateInput struct {
	CompanyID       *string
	TenantID        *string
	ValidUntil      *time.Time
	ClearValidUntil bool
	IsPrimary       *bool
}

// TransferError records a single failed role during a transfer batch.
type TransferError struct {
	RoleType string `json:"roleType"`
	Error    string `json:"error"`
}

// TransferResult reports the outcome of a best-effort transfer. The call
// as a whole succeeds even when Errors is non-empty; callers must inspect
// it to detect partial failure.
type TransferResult struct {
	Transferred int             `json:"transferred"`
	Errors      []TransferError `json:"errors"`
}

// Stats is the active-assignment count per canonical role type,
// zero-filled for roles with no assignments.
type Stats struct {
	ByRole      map[string]int `json:"byRole"`
	Total       int            `json:"total"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// ListFilters narrows store queries. Zero values mean "no filter".
type ListFilters struct {
	TenantID  string
	CompanyID string
}
