package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamTokenRoundTrip(t *testing.T) {
	token, err := GenerateStreamToken(42, 7, "1080p", time.Minute, "test-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := VerifyStreamToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, uint(7), claims.MovieID)
	assert.Equal(t, "1080p", claims.MaxQuality)
}

func TestStreamTokenWrongSecret(t *testing.T) {
	token, err := GenerateStreamToken(42, 7, "1080p", time.Minute, "test-secret")
	require.NoError(t, err)

	_, err = VerifyStreamToken(token, "other-secret")
	assert.Error(t, err)
}

func TestStreamTokenExpired(t *testing.T) {
	token, err := GenerateStreamToken(42, 7, "2160p", -time.Minute, "test-secret")
	require.NoError(t, err)

	_, err = VerifyStreamToken(token, "test-secret")
	assert.Error(t, err)
}

func TestStreamTokenTampered(t *testing.T) {
	token, err := GenerateStreamToken(42, 7, "1080p", time.Minute, "test-secret")
	require.NoError(t, err)

	_, err = VerifyStreamToken(token+"x", "test-secret")
	assert.Error(t, err)

	_, err = VerifyStreamToken("not-a-token", "test-secret")
	assert.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken(9, "jane", "jane@example.com", false, time.Hour, "jwt-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAccessToken(token, "jwt-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, "jane", claims.Name)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
	assert.NotEmpty(t, claims.ID)
}

func TestAccessTokenUniqueJTI(t *testing.T) {
	a, err := GenerateAccessToken(1, "a", "a@example.com", false, time.Hour, "jwt-secret")
	require.NoError(t, err)
	b, err := GenerateAccessToken(1, "a", "a@example.com", false, time.Hour, "jwt-secret")
	require.NoError(t, err)

	ca, err := ParseAccessToken(a, "jwt-secret")
	require.NoError(t, err)
	cb, err := ParseAccessToken(b, "jwt-secret")
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID, cb.ID)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(9, "jane", "jane@example.com", false, -time.Hour, "jwt-secret")
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "jwt-secret")
	assert.Error(t, err)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(9, "jane", "jane@example.com", true, time.Hour, "jwt-secret")
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "wrong")
	assert.Error(t, err)
}
