package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skillforge/skillforge/internal/shared"
)

func TestCreateRoleType(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Company Admin", "COMPANY_ADMIN"},
		{"already canonical", "TRAINING_MANAGER", "TRAINING_MANAGER"},
		{"surrounding whitespace", "  instructor  ", "INSTRUCTOR"},
		{"whitespace run", "training   \t manager", "TRAINING_MANAGER"},
		{"special characters stripped", "Rôle: Admin!", "RLE_ADMIN"},
		{"digits kept", "level 2 reviewer", "LEVEL_2_REVIEWER"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CreateRoleType(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCreateRoleTypeRejectsEmpty(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := CreateRoleType(input)
		require.Error(t, err)
		require.ErrorIs(t, err, shared.ErrValidation)
	}

	// Input that canonicalizes to nothing is rejected the same way.
	_, err := CreateRoleType("!!!")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestMapRoleType(t *testing.T) {
	require.Equal(t, RoleTenantAdmin, MapRoleType("admin"))
	require.Equal(t, RoleInstructor, MapRoleType("Trainer"))
	require.Equal(t, RoleParticipant, MapRoleType("student"))
	require.Equal(t, RoleCoordinator, MapRoleType("scheduler"))
	require.Equal(t, RoleTrainingManager, MapRoleType("course manager"))

	// Unknown inputs pass through canonicalized, not rejected.
	require.Equal(t, "SOMETHING_ELSE", MapRoleType("something else"))
}

func TestMapRoleTypeIdempotent(t *testing.T) {
	inputs := []string{"admin", "Trainer", "student", "TENANT_ADMIN", "custom role"}
	for _, in := range inputs {
		once := MapRoleType(in)
		require.Equal(t, once, MapRoleType(once), "mapping %q twice must be a no-op", in)
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range CanonicalRoles() {
		require.True(t, IsValidRole(role))
	}
	require.False(t, IsValidRole("ADMIN"))
	require.False(t, IsValidRole(""))
	require.False(t, IsValidRole("tenant_admin"))
}

func TestFormatRoleDisplayName(t *testing.T) {
	require.Equal(t, "Training Manager", FormatRoleDisplayName("TRAINING_MANAGER"))
	require.Equal(t, "Super Admin", FormatRoleDisplayName("super admin"))
	require.Equal(t, "", FormatRoleDisplayName(""))
	require.Equal(t, "", FormatRoleDisplayName("!!!"))
}

func TestValidateRoleType(t *testing.T) {
	got := ValidateRoleType("Trainer")
	require.True(t, got.IsValid)
	require.Equal(t, "Trainer", got.OriginalRole)
	require.Equal(t, RoleInstructor, got.MappedRole)
	require.Equal(t, CanonicalRoles(), got.AvailableRoles)

	got = ValidateRoleType("mystery role")
	require.False(t, got.IsValid)
	require.Equal(t, "MYSTERY_ROLE", got.MappedRole)
	require.NotEmpty(t, got.AvailableRoles)
}
