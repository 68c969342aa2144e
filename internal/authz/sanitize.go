package authz

import (
	"strings"
	"time"
)

// maxSanitizedLen caps sanitized string values.
const maxSanitizedLen = 1000

var sanitizeReplacer = strings.NewReplacer(
	"<", "",
	">", "",
	`"`, "",
	"'", "",
	"\x00", "",
)

// SanitizeString strips the characters < > " ' and NUL bytes, trims
// surrounding whitespace and caps the result at maxSanitizedLen bytes.
func SanitizeString(s string) string {
	s = sanitizeReplacer.Replace(s)
	s = strings.TrimSpace(s)
	if len(s) > maxSanitizedLen {
		s = s[:maxSanitizedLen]
	}
	return s
}

// Valid tenantAccess values for grant records.
const (
	TenantAccessAll      = "ALL"
	TenantAccessSpecific = "SPECIFIC"
	TenantAccessNone     = "NONE"
)

// SanitizeGrantFields is the allow-list SanitizeRecord applies to grant
// records arriving from the API boundary.
var SanitizeGrantFields = []string{
	"permissionId",
	"resource",
	"action",
	"scope",
	"tenantAccess",
	"allowedFields",
	"granted",
	"isActive",
	"expiresAt",
	"conditions",
}

// grant record fields coerced to booleans when present.
var booleanGrantFields = map[string]struct{}{
	"granted":  {},
	"isActive": {},
}

// SanitizeRecord copies record keeping only allowed fields and applying
// per-field rules during the copy: strings are sanitized, scope values are
// normalized, tenantAccess falls back to SPECIFIC, boolean-like fields
// default to true when present but not boolean, and expiresAt is dropped
// entirely when it parses to a date at or before now.
func SanitizeRecord(record map[string]any, allowed []string, now time.Time) map[string]any {
	out := make(map[string]any, len(allowed))
	for _, field := range allowed {
		v, ok := record[field]
		if !ok {
			continue
		}
		switch field {
		case "scope":
			s, _ := v.(string)
			out[field] = NormalizeScope(SanitizeString(s))
		case "tenantAccess":
			s, _ := v.(string)
			switch s {
			case TenantAccessAll, TenantAccessSpecific, TenantAccessNone:
				out[field] = s
			default:
				out[field] = TenantAccessSpecific
			}
		case "expiresAt":
			t, ok := parseTimestamp(v)
			if !ok || !t.After(now) {
				continue
			}
			out[field] = t
		default:
			if _, isBool := booleanGrantFields[field]; isBool {
				if b, ok := v.(bool); ok {
					out[field] = b
				} else {
					out[field] = true
				}
				continue
			}
			if s, ok := v.(string); ok {
				out[field] = SanitizeString(s)
				continue
			}
			out[field] = v
		}
	}
	// tenantAccess defaults to SPECIFIC even when absent from the input.
	if _, ok := out["tenantAccess"]; !ok && contains(allowed, "tenantAccess") {
		out["tenantAccess"] = TenantAccessSpecific
	}
	return out
}

func parseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	default:
		return time.Time{}, false
	}
}

func contains(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}
