package authz

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNormalizeScope(t *testing.T) {
	for _, s := range []string{ScopeGlobal, ScopeTenant, ScopeCompany, ScopeDepartment, ScopePersonal} {
		require.Equal(t, s, NormalizeScope(s))
	}
	require.Equal(t, ScopeTenant, NormalizeScope(""))
	require.Equal(t, ScopeTenant, NormalizeScope("region"))
	require.Equal(t, ScopeTenant, NormalizeScope("GLOBAL"))
}

func TestCheckScope(t *testing.T) {
	personID := uuid.New()
	otherID := uuid.New()

	caller := CallerContext{
		PersonID:     personID,
		TenantID:     "t1",
		CompanyID:    "c1",
		DepartmentID: "d1",
	}

	cases := []struct {
		name     string
		scope    string
		caller   CallerContext
		resource ResourceContext
		want     bool
	}{
		{"global always passes", ScopeGlobal, CallerContext{}, ResourceContext{}, true},
		{"tenant match", ScopeTenant, caller, ResourceContext{TenantID: "t1"}, true},
		{"tenant mismatch", ScopeTenant, caller, ResourceContext{TenantID: "t2"}, false},
		{"tenant unset on both sides", ScopeTenant, CallerContext{}, ResourceContext{}, false},
		{"company match", ScopeCompany, caller, ResourceContext{CompanyID: "c1"}, true},
		{"company unset on caller", ScopeCompany, CallerContext{TenantID: "t1"}, ResourceContext{CompanyID: ""}, false},
		{"department match", ScopeDepartment, caller, ResourceContext{DepartmentID: "d1"}, true},
		{"department mismatch", ScopeDepartment, caller, ResourceContext{DepartmentID: "d2"}, false},
		{"personal owner", ScopePersonal, caller, ResourceContext{OwnerID: personID}, true},
		{"personal other owner", ScopePersonal, caller, ResourceContext{OwnerID: otherID}, false},
		{"personal nil caller", ScopePersonal, CallerContext{}, ResourceContext{OwnerID: uuid.Nil}, false},
		{"unknown scope denies", "region", caller, ResourceContext{TenantID: "t1"}, false},
		{"empty scope denies", "", caller, ResourceContext{TenantID: "t1"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CheckScope(tc.scope, tc.caller, tc.resource))
		})
	}
}

func TestIsValidScope(t *testing.T) {
	require.True(t, IsValidScope(ScopePersonal))
	require.False(t, IsValidScope("Personal"))
	require.False(t, IsValidScope(""))
}
