package authz

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/skillforge/skillforge/internal/shared"
)

// Canonical role vocabulary. Distinct from, and much smaller than, the
// permission catalog.
const (
	RoleSuperAdmin      = "SUPER_ADMIN"
	RoleTenantAdmin     = "TENANT_ADMIN"
	RoleCompanyAdmin    = "COMPANY_ADMIN"
	RoleTrainingManager = "TRAINING_MANAGER"
	RoleInstructor      = "INSTRUCTOR"
	RoleCoordinator     = "COORDINATOR"
	RoleParticipant     = "PARTICIPANT"
	RoleAuditor         = "AUDITOR"
)

// CanonicalRoles lists the vocabulary in display order.
func CanonicalRoles() []string {
	return []string{
		RoleSuperAdmin,
		RoleTenantAdmin,
		RoleCompanyAdmin,
		RoleTrainingManager,
		RoleInstructor,
		RoleCoordinator,
		RoleParticipant,
		RoleAuditor,
	}
}

// roleAliases resolves legacy role names to the canonical vocabulary.
// Values must be canonical tokens and must never appear as keys, which is
// what keeps MapRoleType idempotent.
var roleAliases = map[string]string{
	"ADMIN":            RoleTenantAdmin,
	"ADMINISTRATOR":    RoleTenantAdmin,
	"COMPANYADMIN":     RoleCompanyAdmin,
	"FIRM_ADMIN":       RoleCompanyAdmin,
	"TRAINER":          RoleInstructor,
	"TEACHER":          RoleInstructor,
	"LECTURER":         RoleInstructor,
	"STUDENT":          RoleParticipant,
	"TRAINEE":          RoleParticipant,
	"ATTENDEE":         RoleParticipant,
	"COURSE_MANAGER":   RoleTrainingManager,
	"TRAINING_ADMIN":   RoleTrainingManager,
	"PLANNER":          RoleCoordinator,
	"SCHEDULER":        RoleCoordinator,
	"REVIEWER":         RoleAuditor,
	"COMPLIANCE_AUDIT": RoleAuditor,
}

var (
	whitespaceRun  = regexp.MustCompile(`\s+`)
	invalidRoleChr = regexp.MustCompile(`[^A-Z0-9_]`)
)

// canonicalizeRoleType applies the token rules without the empty-input
// check: upper-case, whitespace runs to underscores, strip anything
// outside [A-Z0-9_].
func canonicalizeRoleType(name string) string {
	token := strings.ToUpper(strings.TrimSpace(name))
	token = whitespaceRun.ReplaceAllString(token, "_")
	return invalidRoleChr.ReplaceAllString(token, "")
}

// CreateRoleType produces a canonical role token from a free-form name,
// e.g. "Company Admin" becomes "COMPANY_ADMIN". Empty input is a
// validation error.
func CreateRoleType(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("%w: role name required", shared.ErrValidation)
	}
	token := canonicalizeRoleType(name)
	if token == "" {
		return "", fmt.Errorf("%w: role name has no usable characters", shared.ErrValidation)
	}
	return token, nil
}

// MapRoleType resolves legacy and alias role names to the canonical
// vocabulary. Unknown inputs pass through unchanged after
// canonicalization. Idempotent: mapping a mapped value is a no-op.
func MapRoleType(input string) string {
	token := canonicalizeRoleType(input)
	if mapped, ok := roleAliases[token]; ok {
		return mapped
	}
	return token
}

// IsValidRole reports whether roleType is a member of the canonical
// vocabulary.
func IsValidRole(roleType string) bool {
	switch roleType {
	case RoleSuperAdmin, RoleTenantAdmin, RoleCompanyAdmin, RoleTrainingManager,
		RoleInstructor, RoleCoordinator, RoleParticipant, RoleAuditor:
		return true
	}
	return false
}

var displayCaser = cases.Title(language.English)

// FormatRoleDisplayName renders a role token for display: underscores to
// spaces, title case. Empty or unusable input yields the empty string.
func FormatRoleDisplayName(roleType string) string {
	token := canonicalizeRoleType(roleType)
	if token == "" {
		return ""
	}
	return displayCaser.String(strings.ToLower(strings.ReplaceAll(token, "_", " ")))
}

// RoleTypeValidation is the diagnostic result of ValidateRoleType.
type RoleTypeValidation struct {
	IsValid        bool     `json:"isValid"`
	OriginalRole   string   `json:"originalRole"`
	MappedRole     string   `json:"mappedRole"`
	AvailableRoles []string `json:"availableRoles"`
}

// ValidateRoleType combines mapping and membership checking for callers
// that need both the verdict and the canonical value in one call.
func ValidateRoleType(input string) RoleTypeValidation {
	mapped := MapRoleType(input)
	return RoleTypeValidation{
		IsValid:        IsValidRole(mapped),
		OriginalRole:   input,
		MappedRole:     mapped,
		AvailableRoles: CanonicalRoles(),
	}
}
