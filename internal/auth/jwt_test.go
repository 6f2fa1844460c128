package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sandevgo/syllabot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
}

func TestVerifier_RoundTrip(t *testing.T) {
	t.Parallel()
	v, err := NewVerifier("secret", "authenticated")
	require.NoError(t, err)

	token, err := v.Sign("user-1", "a@b.c", validClaims())
	require.NoError(t, err)

	for _, cred := range []string{token, "Bearer " + token, "bearer " + token} {
		id, err := v.Verify(cred)
		require.NoError(t, err)
		assert.Equal(t, core.Identity{ID: "user-1", Email: "a@b.c"}, id)
	}
}

func TestVerifier_Rejects(t *testing.T) {
	t.Parallel()
	v, err := NewVerifier("secret", "authenticated")
	require.NoError(t, err)
	other, err := NewVerifier("other-secret", "authenticated")
	require.NoError(t, err)

	wrongSig, err := other.Sign("user-1", "", validClaims())
	require.NoError(t, err)
	expired, err := v.Sign("user-1", "", jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))})
	require.NoError(t, err)
	noExp, err := v.Sign("user-1", "", jwt.RegisteredClaims{})
	require.NoError(t, err)
	noSubject, err := v.Sign("", "", validClaims())
	require.NoError(t, err)

	tests := map[string]string{
		"empty":           "",
		"garbage":         "Bearer not-a-token",
		"wrong signature": wrongSig,
		"expired":         expired,
		"no expiry":       noExp,
		"no subject":      noSubject,
	}
	for name, cred := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(cred)
			assert.ErrorIs(t, err, core.ErrUnauthenticated)
		})
	}
}

func TestBearerToken(t *testing.T) {
	t.Parallel()
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}

func TestNewVerifier_EmptySecret(t *testing.T) {
	t.Parallel()
	_, err := NewVerifier("", "")
	assert.Error(t, err)
}
