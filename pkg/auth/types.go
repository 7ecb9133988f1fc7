package auth

import (
	"errors"

	"github.com/lumenchat/canopy/pkg/tenant"
)

// Session holds the authenticated identity attached to a request: which
// user, within which tenant, with which role. It is the triple every
// protected handler consumes.
type Session struct {
	UserID       int64       `json:"user_id"`
	CustomerSlug string      `json:"customer_slug"`
	Role         tenant.Role `json:"role"`
}

var (
	// ErrInvalidToken indicates a token that failed signature or claims validation
	ErrInvalidToken = errors.New("invalid session token")

	// ErrExpiredToken indicates a well-formed token past its expiry
	ErrExpiredToken = errors.New("session token expired")
)
