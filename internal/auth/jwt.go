package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionRole is the only role issued today
const SessionRole = "session"

var (
	// ErrMissingToken is returned when no bearer token is present
	ErrMissingToken = errors.New("missing bearer token")
	// ErrSessionMismatch is returned when a token is used for another session
	ErrSessionMismatch = errors.New("token does not grant access to this session")
)

// JWTClaims represents the claims in our JWT token
type JWTClaims struct {
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and validates session tokens with an HMAC secret
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates an issuer for the given secret
func NewTokenIssuer(secret []byte) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &TokenIssuer{secret: secret, now: time.Now}, nil
}

// GenerateSessionToken issues a token scoped to one session that expires at expiresAt
func (i *TokenIssuer) GenerateSessionToken(sessionID string, expiresAt time.Time) (string, error) {
	claims := &JWTClaims{
		SessionID: sessionID,
		Role:      SessionRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(i.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ValidateToken validates a JWT token and returns the claims
func (i *TokenIssuer) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		if claims.Role != SessionRole || claims.SessionID == "" {
			return nil, fmt.Errorf("%w: not a session token", jwt.ErrTokenInvalidClaims)
		}
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}

// Authorize validates token and checks that it grants access to sessionID
func (i *TokenIssuer) Authorize(tokenString, sessionID string) (*JWTClaims, error) {
	claims, err := i.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if sessionID != "" && claims.SessionID != sessionID {
		return nil, ErrSessionMismatch
	}
	return claims, nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
