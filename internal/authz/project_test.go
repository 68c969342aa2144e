package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	entity := map[string]any{
		"id":           "p1",
		"givenName":    "Astrid",
		"email":        "astrid@example.test",
		"passwordHash": "$2a$10$secret",
	}

	out := Project(entity, []string{"id", "email", "phone"})
	require.Equal(t, map[string]any{"id": "p1", "email": "astrid@example.test"}, out)

	// Allowed fields absent from the entity are omitted, never synthesized.
	_, ok := out["phone"]
	require.False(t, ok)
}

func TestProjectEmptyWhitelist(t *testing.T) {
	out := Project(map[string]any{"id": "p1"}, nil)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestPersonAPIFieldsExcludeCredentials(t *testing.T) {
	entity := map[string]any{
		"id":           "p1",
		"givenName":    "Astrid",
		"familyName":   "Berg",
		"email":        "astrid@example.test",
		"passwordHash": "$2a$10$secret",
		"resetToken":   "tok",
		"password":     "hunter2",
	}

	out := Project(entity, PersonAPIFields)
	require.NotContains(t, out, "passwordHash")
	require.NotContains(t, out, "resetToken")
	require.NotContains(t, out, "password")
	require.Equal(t, "Astrid", out["givenName"])
}
