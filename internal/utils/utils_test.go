package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const secret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(secret, 42, "admin", 15)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	c, err := ParseAccessToken(secret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), c.UserID)
	assert.Equal(t, "admin", c.Role)
}

func TestExpiredTokenIsDistinguished(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  "7",
		"role": "user",
		"exp":  time.Now().Add(-time.Minute).Unix(),
		"iat":  time.Now().Add(-time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, err = ParseAccessToken(secret, raw)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestInvalidTokens(t *testing.T) {
	tok, err := NewAccessToken(secret, 1, "user", 5)
	require.NoError(t, err)

	for name, raw := range map[string]string{
		"wrong secret": mustSign(t, "other-secret"),
		"garbage":      "not-a-jwt",
		"tampered":     tok.Token[:len(tok.Token)-2] + "xx",
	} {
		_, err := ParseAccessToken(secret, raw)
		assert.ErrorIs(t, err, ErrTokenInvalid, name)
	}
}

func mustSign(t *testing.T, key string) string {
	t.Helper()
	tok, err := NewAccessToken(key, 1, "user", 5)
	require.NoError(t, err)
	return tok.Token
}

func TestRefreshTokenHashing(t *testing.T) {
	rt, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96)
	assert.Len(t, HashRefreshRaw(rt.Raw), 64)
	assert.NotEqual(t, rt.Raw, HashRefreshRaw(rt.Raw))
	assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))
}

func TestPasswordHelpers(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong"))

	p, err := RandomPassword(12)
	require.NoError(t, err)
	assert.Len(t, p, 12)
	for _, r := range p {
		assert.True(t, strings.ContainsRune(passwordAlphabet, r))
	}
}
