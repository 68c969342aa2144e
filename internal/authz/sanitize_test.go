package authz

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSanitizeString(t *testing.T) {
	require.Equal(t, "bhi/b", SanitizeString(`  <b>hi</b>'  `))
	require.Equal(t, "plain", SanitizeString("plain"))
	require.Equal(t, "", SanitizeString(`<>"'`))
	require.Equal(t, "ab", SanitizeString("a\x00b"))

	long := strings.Repeat("x", maxSanitizedLen+50)
	require.Len(t, SanitizeString(long), maxSanitizedLen)
}

func TestSanitizeRecordAllowList(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := map[string]any{
		"permissionId": "users.read",
		"resource":     `per<son>s`,
		"unexpected":   "dropped",
		"granted":      "yes",
		"isActive":     false,
	}

	out := SanitizeRecord(record, SanitizeGrantFields, now)
	require.NotContains(t, out, "unexpected")
	require.Equal(t, "users.read", out["permissionId"])
	require.Equal(t, "persons", out["resource"])
	// Non-boolean values in boolean fields default to true; real booleans
	// are kept as-is.
	require.Equal(t, true, out["granted"])
	require.Equal(t, false, out["isActive"])
}

func TestSanitizeRecordScopeAndTenantAccess(t *testing.T) {
	now := time.Now()

	out := SanitizeRecord(map[string]any{"scope": "  company "}, SanitizeGrantFields, now)
	require.Equal(t, ScopeCompany, out["scope"])

	out = SanitizeRecord(map[string]any{"scope": "region"}, SanitizeGrantFields, now)
	require.Equal(t, ScopeTenant, out["scope"])

	out = SanitizeRecord(map[string]any{"tenantAccess": "ALL"}, SanitizeGrantFields, now)
	require.Equal(t, TenantAccessAll, out["tenantAccess"])

	out = SanitizeRecord(map[string]any{"tenantAccess": "whatever"}, SanitizeGrantFields, now)
	require.Equal(t, TenantAccessSpecific, out["tenantAccess"])

	// Absent tenantAccess is still defaulted when the allow-list carries it.
	out = SanitizeRecord(map[string]any{}, SanitizeGrantFields, now)
	require.Equal(t, TenantAccessSpecific, out["tenantAccess"])
}

func TestSanitizeRecordExpiresAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	out := SanitizeRecord(map[string]any{"expiresAt": future}, SanitizeGrantFields, now)
	require.Equal(t, future, out["expiresAt"])

	out = SanitizeRecord(map[string]any{"expiresAt": future.Format(time.RFC3339)}, SanitizeGrantFields, now)
	require.Equal(t, future.Truncate(time.Second), out["expiresAt"].(time.Time).UTC())

	for _, v := range []any{past, past.Format(time.RFC3339), now, "not-a-date", 42} {
		out = SanitizeRecord(map[string]any{"expiresAt": v}, SanitizeGrantFields, now)
		require.NotContains(t, out, "expiresAt", "expiresAt %v must be dropped", v)
	}
}
