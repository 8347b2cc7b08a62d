package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseJWT(t *testing.T) {
	tok, err := GenerateJWT("user-1", string(RoleMember), "chat_service")
	require.NoError(t, err)

	claims, err := ParseJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.MemberID)
	assert.Equal(t, "member", claims.Role)
	assert.Equal(t, "chat_service", claims.Issuer)
}

func TestParseJWT_Tampered(t *testing.T) {
	tok, err := GenerateJWT("user-1", string(RoleMember), "chat_service")
	require.NoError(t, err)

	_, err = ParseJWT(tok + "x")
	assert.Error(t, err)
}
