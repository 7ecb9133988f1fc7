package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lumenchat/canopy/pkg/tenant"
)

const issuer = "canopy"

// Claims is the JWT claims payload for a session token
type Claims struct {
	CustomerSlug string `json:"customer_slug"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues and verifies HS256-signed session tokens
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager creates a token manager with the given signing secret and
// token lifetime.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

// IssueToken creates a signed session token for a user
func (m *Manager) IssueToken(user *tenant.User) (string, error) {
	now := time.Now()
	claims := Claims{
		CustomerSlug: user.CustomerSlug,
		Role:         string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a session token and returns its Session. Expired
// tokens return ErrExpiredToken; every other failure returns
// ErrInvalidToken so callers leak nothing about why verification failed.
func (m *Manager) ParseToken(tokenString string) (*Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	role := tenant.Role(claims.Role)
	if !role.Valid() {
		return nil, ErrInvalidToken
	}

	return &Session{
		UserID:       userID,
		CustomerSlug: claims.CustomerSlug,
		Role:         role,
	}, nil
}
