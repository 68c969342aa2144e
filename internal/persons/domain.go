// Package persons provides the read side of person records the
// authorization core acts on behalf of. Person lifecycle is owned by the
// upstream platform; this package only reads.
package persons

import (
	"time"

	"github.com/google/uuid"
)

// Person is a platform identity.
type Person struct {
	ID           uuid.UUID
	TenantID     string
	CompanyID    string
	DepartmentID string
	GivenName    string
	FamilyName   string
	Email        string
	Phone        string
	PasswordHash string
	ResetToken   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// APIRecord renders the person as a generic record for whitelist
// projection. Credential fields are present here and stripped by the
// projection step, never by ad hoc handler code.
func (p Person) APIRecord() map[string]any {
	return map[string]any{
		"id":           p.ID.String(),
		"tenantId":     p.TenantID,
		"companyId":    p.CompanyID,
		"departmentId": p.DepartmentID,
		"givenName":    p.GivenName,
		"familyName":   p.FamilyName,
		"email":        p.Email,
		"phone":        p.Phone,
		"passwordHash": p.PasswordHash,
		"resetToken":   p.ResetToken,
		"createdAt":    p.CreatedAt,
		"updatedAt":    p.UpdatedAt,
	}
}
