package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("access-secret", 42, "USER", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	uid, exp, err := VerifyToken("access-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), uid)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), exp, 5*time.Second)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("access-secret", 42, "USER", 15)
	require.NoError(t, err)

	_, _, err = VerifyToken("other-secret", tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenNotValidAsAccess(t *testing.T) {
	// Distinct secrets: a refresh token must never verify against the
	// access secret.
	refresh, err := NewRefreshToken("refresh-secret", 7, 30)
	require.NoError(t, err)

	_, _, err = VerifyToken("access-secret", refresh.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	uid, _, err := VerifyToken("refresh-secret", refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), uid)
}

func TestVerifyTokenExpired(t *testing.T) {
	tok, err := NewAccessToken("access-secret", 42, "USER", -1)
	require.NoError(t, err)

	_, _, err = VerifyToken("access-secret", tok.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	_, _, err := VerifyToken("access-secret", "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashRefreshRaw(t *testing.T) {
	h1 := HashRefreshRaw("token-a")
	h2 := HashRefreshRaw("token-a")
	h3 := HashRefreshRaw("token-b")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // hex-encoded SHA-256
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "hunter22"))
	assert.False(t, VerifyPassword(hash, "hunter23"))
	assert.False(t, VerifyPassword("not-a-hash", "hunter22"))
}
