package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer([]byte("test-secret"))
	require.NoError(t, err)

	token, err := issuer.GenerateSessionToken("session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := issuer.Authorize(token, "session-1")
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, SessionRole, claims.Role)
}

func TestTokenIssuer_Rejections(t *testing.T) {
	issuer, err := NewTokenIssuer([]byte("test-secret"))
	require.NoError(t, err)
	other, err := NewTokenIssuer([]byte("other-secret"))
	require.NoError(t, err)

	valid, err := issuer.GenerateSessionToken("session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = issuer.Authorize(valid, "session-2")
	assert.ErrorIs(t, err, ErrSessionMismatch)

	_, err = other.ValidateToken(valid)
	assert.Error(t, err)

	expired, err := issuer.GenerateSessionToken("session-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = issuer.ValidateToken(expired)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))

	_, err = issuer.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenIssuer_RejectsForeignRole(t *testing.T) {
	issuer, err := NewTokenIssuer([]byte("test-secret"))
	require.NoError(t, err)

	claims := &JWTClaims{
		SessionID: "session-1",
		Role:      "device",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = issuer.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidClaims)
}

func TestNewTokenIssuer_EmptySecret(t *testing.T) {
	_, err := NewTokenIssuer(nil)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = BearerToken("bearer xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	for _, header := range []string{"", "Bearer ", "Basic dXNlcjpwYXNz", "abc"} {
		_, err := BearerToken(header)
		assert.ErrorIs(t, err, ErrMissingToken, header)
	}
}
