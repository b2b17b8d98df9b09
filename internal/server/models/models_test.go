package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	r, err = ParseRole("user")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, r)

	for _, bad := range []string{"", "Admin", "root", " user"} {
		_, err := ParseRole(bad)
		assert.ErrorIs(t, err, common.ErrorInvalidRole, bad)
	}
}

func TestAccountView_HasNoPassword(t *testing.T) {
	a := &Account{ID: "1", Name: "Ann", Email: "ann@example.com", PasswordHash: "$2a$10$hash", Role: RoleUser}

	b, err := json.Marshal(a.View())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.ElementsMatch(t, []string{"id", "name", "email", "role", "isVerified"}, keys(m))
	assert.NotContains(t, string(b), "hash")
}

func TestRefreshToken_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tok := &RefreshToken{ExpiresAt: now}

	assert.False(t, tok.Expired(now))
	assert.False(t, tok.Expired(now.Add(-time.Second)))
	assert.True(t, tok.Expired(now.Add(time.Second)))
}

func TestIdentity_IsAdmin(t *testing.T) {
	var nilIdentity *Identity
	assert.False(t, nilIdentity.IsAdmin())
	assert.False(t, (&Identity{Role: RoleUser}).IsAdmin())
	assert.True(t, (&Identity{Role: RoleAdmin}).IsAdmin())
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
