package authz

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationResult is the non-throwing validation outcome: the decision of
// how to react is entirely the caller's.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// RoleAssignmentInput carries the fields of an addRole request.
type RoleAssignmentInput struct {
	PersonID  string `validate:"required,uuid4"`
	RoleType  string `validate:"required,max=100"`
	CompanyID string `validate:"omitempty,max=100"`
	TenantID  string `validate:"omitempty,max=100"`
}

// ValidateRoleAssignment checks an addRole payload. Never returns an error;
// structural problems surface as entries in Errors.
func ValidateRoleAssignment(in RoleAssignmentInput) ValidationResult {
	result := collect(validate.Struct(in))
	if in.RoleType != "" && !IsValidRole(MapRoleType(in.RoleType)) {
		result.IsValid = false
		result.Errors = append(result.Errors, fmt.Sprintf("RoleType: %q is not a recognized role", in.RoleType))
	}
	return result
}

// AdvancedPermissionInput carries the fields of an advanced permission
// grant.
type AdvancedPermissionInput struct {
	Resource      string   `validate:"required,max=100"`
	Action        string   `validate:"required,max=100"`
	Scope         string   `validate:"omitempty,oneof=global tenant company department personal"`
	AllowedFields []string `validate:"omitempty,dive,required,max=100"`
}

// ValidateAdvancedPermission checks an advanced permission payload.
func ValidateAdvancedPermission(in AdvancedPermissionInput) ValidationResult {
	return collect(validate.Struct(in))
}

// RoleDataInput carries the fields of a role metadata update.
type RoleDataInput struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"omitempty,max=500"`
}

// ValidateRoleData checks role metadata.
func ValidateRoleData(in RoleDataInput) ValidationResult {
	return collect(validate.Struct(in))
}

// CustomRoleUpdateInput carries the mutable fields of an assignment patch.
type CustomRoleUpdateInput struct {
	CompanyID  *string `validate:"omitempty,max=100"`
	TenantID   *string `validate:"omitempty,max=100"`
	ValidUntil *string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// ValidateCustomRoleUpdate checks an assignment patch.
func ValidateCustomRoleUpdate(in CustomRoleUpdateInput) ValidationResult {
	return collect(validate.Struct(in))
}

func collect(err error) ValidationResult {
	if err == nil {
		return ValidationResult{IsValid: true, Errors: []string{}}
	}
	var messages []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			messages = append(messages, fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag()))
		}
	} else {
		messages = append(messages, strings.TrimSpace(err.Error()))
	}
	return ValidationResult{IsValid: false, Errors: messages}
}
