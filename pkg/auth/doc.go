// Package auth issues and verifies session tokens.
//
// # Overview
//
// A session token is an HS256-signed JWT carrying the (user, tenant, role)
// triple as claims. Tokens are issued after credential or SSO login and
// presented as a bearer token on subsequent requests; verification is
// stateless, so any instance can validate a token issued by another.
//
// # Usage Example
//
//	manager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
//	token, err := manager.IssueToken(user)
//
//	session, err := manager.ParseToken(token)
//	switch {
//	case errors.Is(err, auth.ErrExpiredToken):
//		// prompt re-login
//	case err != nil:
//		// reject
//	}
//
// # Related Packages
//
//   - pkg/middleware: extracts and verifies bearer tokens per request
//   - pkg/sso: SAML/OIDC logins that end in an issued session token
package auth
