package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	secret := []byte("test-secret")

	tok, err := GenerateToken("admin", secret, time.Hour)
	require.NoError(t, err)

	username, err := UsernameFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", username)
}

func TestUsernameFromToken_Expired(t *testing.T) {
	secret := []byte("test-secret")

	tok, err := GenerateToken("admin", secret, -time.Second)
	require.NoError(t, err)

	_, err = UsernameFromToken(tok, secret)
	assert.Error(t, err)
}

func TestUsernameFromToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken("admin", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = UsernameFromToken(tok, []byte("wrong-secret"))
	assert.Error(t, err)
}

func TestUsernameFromToken_Malformed(t *testing.T) {
	_, err := UsernameFromToken("not.a.jwt", []byte("k"))
	assert.Error(t, err)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("admin")
	require.NoError(t, err)
	require.NotEqual(t, "admin", hash)

	assert.True(t, VerifyPassword("admin", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}
