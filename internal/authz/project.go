package authz

// Project returns a new record containing only the keys present in both
// entity and allowedFields. Allowed fields absent from the entity are
// omitted, never synthesized. Project performs no authorization decision;
// it is the mechanical enforcement step after a decision has already
// authorized a field set.
func Project(entity map[string]any, allowedFields []string) map[string]any {
	out := make(map[string]any, len(allowedFields))
	for _, field := range allowedFields {
		if v, ok := entity[field]; ok {
			out[field] = v
		}
	}
	return out
}

// PersonAPIFields is the fixed whitelist applied to person records before
// they leave this layer. Credential material (password, passwordHash,
// resetToken) is excluded by construction.
var PersonAPIFields = []string{
	"id",
	"tenantId",
	"companyId",
	"givenName",
	"familyName",
	"email",
	"phone",
	"departmentId",
	"createdAt",
	"updatedAt",
}

// RoleAssignmentAPIFields is the whitelist for role assignment records.
var RoleAssignmentAPIFields = []string{
	"id",
	"personId",
	"roleType",
	"companyId",
	"tenantId",
	"isActive",
	"isPrimary",
	"validUntil",
	"createdAt",
	"updatedAt",
}

// SearchParamFields is the whitelist for caller-supplied search parameters.
var SearchParamFields = []string{
	"query",
	"tenantId",
	"companyId",
	"roleType",
	"activeOnly",
	"page",
	"limit",
}
