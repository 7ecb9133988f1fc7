package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/lumenchat/canopy/pkg/auth"
	"github.com/lumenchat/canopy/pkg/contextkeys"
	"github.com/lumenchat/canopy/pkg/httputil"
	"github.com/lumenchat/canopy/pkg/tenant"
)

// SessionMiddleware authenticates requests with a bearer session token
type SessionMiddleware struct {
	manager  *auth.Manager
	optional bool // If true, allow requests without a token
}

// NewSessionMiddleware creates session authentication middleware
func NewSessionMiddleware(manager *auth.Manager, optional bool) *SessionMiddleware {
	return &SessionMiddleware{
		manager:  manager,
		optional: optional,
	}
}

// Handler wraps an HTTP handler with session authentication
func (m *SessionMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			if m.optional {
				next.ServeHTTP(w, r)
				return
			}
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		session, err := m.manager.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				httputil.WriteUnauthorized(w, "session expired")
				return
			}
			httputil.WriteUnauthorized(w, "invalid session token")
			return
		}

		ctx := contextkeys.WithSession(r.Context(), session)
		ctx = contextkeys.WithUserID(ctx, strconv.FormatInt(session.UserID, 10))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSession extracts the authenticated session from a request
func GetSession(r *http.Request) *auth.Session {
	value := r.Context().Value(contextkeys.SessionKey)
	if value == nil {
		return nil
	}
	session, ok := value.(*auth.Session)
	if !ok {
		return nil
	}
	return session
}

// RequireRole creates middleware that rejects sessions below the given role.
// SUPER_USER passes every role check.
func RequireRole(role tenant.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSession(r)
			if session == nil {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			if !roleSatisfies(session.Role, role) {
				httputil.WriteForbidden(w, "insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func roleSatisfies(have, want tenant.Role) bool {
	if have == tenant.RoleSuperUser {
		return true
	}
	switch want {
	case tenant.RoleSuperUser:
		return false
	case tenant.RoleAdmin:
		return have == tenant.RoleAdmin
	default:
		return have.Valid()
	}
}
