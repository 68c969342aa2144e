package authz

// Permission grants arrive in two historical payload shapes: a bare
// identifier string ("users.read") or a structured record carrying a
// permissionId field. GrantInput is the tagged union covering both; every
// validation and storage step works on the normalized identifier so type
// sniffing happens in exactly one place.

// GrantRecord is the structured grant shape.
type GrantRecord struct {
	PermissionID string         `json:"permissionId"`
	Granted      bool           `json:"granted"`
	TenantAccess string         `json:"tenantAccess,omitempty"`
	ExpiresAt    string         `json:"expiresAt,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
}

// GrantInput holds either a bare identifier or a structured record.
type GrantInput struct {
	id     string
	record *GrantRecord
}

// GrantFromID wraps a bare identifier.
func GrantFromID(id string) GrantInput {
	return GrantInput{id: id}
}

// GrantFromRecord wraps a structured record.
func GrantFromRecord(r GrantRecord) GrantInput {
	return GrantInput{record: &r}
}

// PermissionID returns the normalized identifier, or false for a malformed
// item (structured record without an identifier).
func (g GrantInput) PermissionID() (string, bool) {
	if g.record != nil {
		if g.record.PermissionID == "" {
			return "", false
		}
		return g.record.PermissionID, true
	}
	if g.id == "" {
		return "", false
	}
	return g.id, true
}

// Record returns the structured record, or nil for a bare identifier.
func (g GrantInput) Record() *GrantRecord {
	return g.record
}

// FilterGrants returns the items whose normalized identifier is a catalog
// member, preserving order and shape. Malformed or unknown items are
// dropped silently; a nil input yields an empty slice, never an error.
func (c Catalog) FilterGrants(items []GrantInput) []GrantInput {
	out := make([]GrantInput, 0, len(items))
	for _, item := range items {
		id, ok := item.PermissionID()
		if !ok || !c.IsValid(id) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ValidateAndFilterPermissions is the wire-boundary variant of FilterGrants.
// It accepts the mixed JSON decoding of the two grant shapes (string, or
// map with a "permissionId" key) and drops anything else. The returned
// items keep their original shape.
func (c Catalog) ValidateAndFilterPermissions(items []any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			if c.IsValid(v) {
				out = append(out, v)
			}
		case map[string]any:
			id, ok := v["permissionId"].(string)
			if ok && c.IsValid(id) {
				out = append(out, v)
			}
		}
	}
	return out
}
