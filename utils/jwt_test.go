package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := GenerateAdminToken("admin-1", "root")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAdminToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.ID)
	assert.Equal(t, "root", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "admin-1", claims.Subject)
}

func TestParseAdminTokenRejectsGarbage(t *testing.T) {
	_, err := ParseAdminToken("not.a.token")
	assert.Error(t, err)
}
