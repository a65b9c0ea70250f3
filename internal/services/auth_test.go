package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() TokenService {
	return TokenService{
		Secret:     []byte("test-secret"),
		Issuer:     "coastal-guardian",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := testTokens()
	pair, err := tokens.CreatePair("user-1")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Greater(t, pair.ExpiresAt, time.Now().Unix())

	subject, err := tokens.Subject(pair.AccessToken, "access")
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)

	subject, err = tokens.Subject(pair.RefreshToken, "refresh")
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
}

func TestTokenTypeMismatch(t *testing.T) {
	tokens := testTokens()
	pair, err := tokens.CreatePair("user-1")
	require.NoError(t, err)

	_, err = tokens.Subject(pair.RefreshToken, "access")
	require.Error(t, err)
	serviceErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, 401, serviceErr.Status)
}

func TestTokenWrongSecret(t *testing.T) {
	pair, err := testTokens().CreatePair("user-1")
	require.NoError(t, err)

	other := testTokens()
	other.Secret = []byte("different-secret")
	_, err = other.Subject(pair.AccessToken, "access")
	assert.Error(t, err)
}

func TestTokenWrongIssuer(t *testing.T) {
	pair, err := testTokens().CreatePair("user-1")
	require.NoError(t, err)

	other := testTokens()
	other.Issuer = "someone-else"
	_, err = other.Subject(pair.AccessToken, "access")
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	_, err := testTokens().Subject("not.a.token", "access")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	tokens := testTokens()
	hashed, err := tokens.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hashed)
	assert.True(t, tokens.VerifyPassword("s3cret-pass", hashed))
	assert.False(t, tokens.VerifyPassword("wrong-pass", hashed))
}
