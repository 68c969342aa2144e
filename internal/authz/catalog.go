// Package authz implements the role/permission authorization core: the
// permission catalog, canonical role vocabulary, scope evaluation,
// field-level response filtering and the facade composing them.
package authz

import "sort"

// Dotted permission identifiers. These follow the legacy
// "<resource>.<action>" convention and remain the primary grant format.
const (
	PermPersonsRead   = "persons.read"
	PermPersonsWrite  = "persons.write"
	PermPersonsDelete = "persons.delete"

	// users.* predates the persons rename and is still present in stored
	// grants, so both spellings stay in the catalog.
	PermUsersRead  = "users.read"
	PermUsersWrite = "users.write"

	PermCompaniesRead  = "companies.read"
	PermCompaniesWrite = "companies.write"

	PermCoursesRead   = "courses.read"
	PermCoursesWrite  = "courses.write"
	PermCoursesDelete = "courses.delete"

	PermSchedulesRead  = "schedules.read"
	PermSchedulesWrite = "schedules.write"

	PermCertificatesRead  = "certificates.read"
	PermCertificatesIssue = "certificates.issue"

	PermDocumentsRead  = "documents.read"
	PermDocumentsWrite = "documents.write"

	PermRolesRead  = "roles.read"
	PermRolesWrite = "roles.write"

	PermPermissionsRead = "permissions.read"

	PermReportsRead = "reports.read"
)

// Enumerated uppercase identifiers, the second historical grant format.
const (
	PermViewUsers         = "VIEW_USERS"
	PermEditUsers         = "EDIT_USERS"
	PermViewCourses       = "VIEW_COURSES"
	PermEditCourses       = "EDIT_COURSES"
	PermManageSchedules   = "MANAGE_SCHEDULES"
	PermIssueCertificates = "ISSUE_CERTIFICATES"
	PermManageRoles       = "MANAGE_ROLES"
	PermViewReports       = "VIEW_REPORTS"
)

// Catalog is the process-wide, read-only registry of recognized permission
// identifiers. It is built once at startup and injected into every
// consumer; there is no write path.
type Catalog struct {
	ids map[string]struct{}
}

// NewCatalog builds a catalog from the given identifiers.
func NewCatalog(ids ...string) Catalog {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[id] = struct{}{}
	}
	return Catalog{ids: set}
}

// DefaultCatalog returns the catalog covering both historical identifier
// formats.
func DefaultCatalog() Catalog {
	return NewCatalog(
		PermPersonsRead, PermPersonsWrite, PermPersonsDelete,
		PermUsersRead, PermUsersWrite,
		PermCompaniesRead, PermCompaniesWrite,
		PermCoursesRead, PermCoursesWrite, PermCoursesDelete,
		PermSchedulesRead, PermSchedulesWrite,
		PermCertificatesRead, PermCertificatesIssue,
		PermDocumentsRead, PermDocumentsWrite,
		PermRolesRead, PermRolesWrite,
		PermPermissionsRead,
		PermReportsRead,
		PermViewUsers, PermEditUsers,
		PermViewCourses, PermEditCourses,
		PermManageSchedules, PermIssueCertificates,
		PermManageRoles, PermViewReports,
	)
}

// IsValid reports whether id is a member of the catalog.
func (c Catalog) IsValid(id string) bool {
	_, ok := c.ids[id]
	return ok
}

// List returns the catalog identifiers sorted lexicographically.
func (c Catalog) List() []string {
	out := make([]string, 0, len(c.ids))
	for id := range c.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the catalog size.
func (c Catalog) Len() int {
	return len(c.ids)
}
