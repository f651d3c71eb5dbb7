package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
)

// TokenManager issues and verifies the bearer tokens that carry a principal.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for p with the configured TTL.
func (m *TokenManager) Issue(p Principal) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  p.ID.String(),
		"role": string(p.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(m.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns the principal it carries.
func (m *TokenManager) Verify(tokenString string) (Principal, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return Principal{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Principal{}, fmt.Errorf("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid subject in token: %w", err)
	}

	roleStr, _ := claims["role"].(string)
	role := models.Role(roleStr)
	if !models.ValidRole(role) {
		return Principal{}, fmt.Errorf("unknown role in token: %q", roleStr)
	}

	return Principal{ID: id, Role: role}, nil
}
