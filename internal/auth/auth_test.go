package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$")

	assert.NoError(t, VerifyPassword("correct horse battery staple", hash))
	assert.ErrorIs(t, VerifyPassword("Tr0ub4dor&3", hash), ErrPasswordMismatch)

	other, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts differ")

	assert.Error(t, VerifyPassword("x", "$2a$10$notargon"))
}

func TestTokenIssuer(t *testing.T) {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("test-secret-that-is-long-enough!", time.Hour)
	issuer.now = func() time.Time { return now }

	token, expiresAt, err := issuer.Issue("user-1", "session-1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expiresAt)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "session-1", claims.SessionID())
	assert.Equal(t, "JWT", claims.Source())
	assert.NotEmpty(t, claims.TokenID)

	forger := NewTokenIssuer("some-other-secret", time.Hour)
	forger.now = issuer.now
	forged, _, err := forger.Issue("user-1", "")
	require.NoError(t, err)
	_, err = issuer.Parse(forged)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	now = now.Add(2 * time.Hour)
	_, err = issuer.Parse(token)
	assert.True(t, errors.Is(err, ErrInvalidToken), "expired")

	_, err = issuer.Parse("not.a.jwt")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestGenerateAndFingerprintToken(t *testing.T) {
	a, err := GenerateToken(32)
	require.NoError(t, err)
	b, err := GenerateToken(32)
	require.NoError(t, err)
	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)

	assert.Equal(t, FingerprintToken(a), FingerprintToken(a))
	assert.NotEqual(t, FingerprintToken(a), FingerprintToken(b))
	assert.NotContains(t, FingerprintToken(a), a)

	_, err = GenerateToken(0)
	assert.Error(t, err)
}
