// Package jwt verifies HS256 bearer tokens and extracts the caller identity.
// Tokens are issued elsewhere; Generate exists for tooling and tests.
package jwt

import (
	"errors"
	"time"

	jwtstd "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingKey   = errors.New("jwt: signing key is not configured")
	ErrInvalidToken = errors.New("jwt: invalid token")
)

// TokenManager signs and verifies tokens with a shared secret.
type TokenManager struct {
	key string
}

// NewTokenManager creates a manager for key.
func NewTokenManager(key string) *TokenManager {
	return &TokenManager{key: key}
}

// Generate signs an access token for userID with role.
func (m *TokenManager) Generate(userID, role string, ttl time.Duration) (string, error) {
	if m.key == "" {
		return "", ErrMissingKey
	}
	now := time.Now()
	claims := jwtstd.MapClaims{
		"jti":  uuid.NewString(),
		"sub":  userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	return jwtstd.NewWithClaims(jwtstd.SigningMethodHS256, claims).SignedString([]byte(m.key))
}

// DecodeToken verifies tokenString and returns its claims.
func (m *TokenManager) DecodeToken(tokenString string) (map[string]any, error) {
	if m.key == "" {
		return nil, ErrMissingKey
	}
	token, err := jwtstd.Parse(tokenString, func(*jwtstd.Token) (any, error) {
		return []byte(m.key), nil
	}, jwtstd.WithValidMethods([]string{jwtstd.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwtstd.MapClaims)
	if !token.Valid || !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Identity reads the user id and role, looking at the top level first and
// then inside a nested payload object. user_id and id take precedence over
// sub, which some issuers use for the token kind.
func Identity(claims map[string]any) (userID, role string) {
	sources := []map[string]any{claims}
	if payload, ok := claims["payload"].(map[string]any); ok {
		sources = append(sources, payload)
	}
	for _, keys := range [][]string{{"user_id", "id"}, {"sub"}} {
		for _, src := range sources {
			if userID == "" {
				userID = firstString(src, keys...)
			}
		}
	}
	for _, src := range sources {
		if role == "" {
			role = firstString(src, "role")
		}
	}
	return userID, role
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
