// Package middleware provides authentication, tenant scoping, and quota
// enforcement middleware.
//
// # Middleware Ordering Requirements
//
// The middleware in this package have strict ordering dependencies. Running
// them out of order causes requests to be rejected as unauthenticated even
// when they carry a valid token.
//
// REQUIRED ORDERING (outer to inner):
//  1. SessionMiddleware - verifies the bearer token, sets the session context
//  2. TenantMiddleware  - loads the session's customer record into context
//  3. QuotaMiddleware.Enforce(action) - per-route capability/limit checks
//
// Example (correct):
//
//	protected.Use(sessionMW.Handler)  // 1. Sets session context
//	protected.Use(tenantMW.Handler)   // 2. Loads the customer
//	protected.Handle("/agents", quotaMW.Enforce(permissions.ActionCreateAgent)(createAgent)).
//	    Methods("POST")               // 3. Checks quota
//
// TenantMiddleware reads the customer slug from the session, and
// QuotaMiddleware reads both the session and the customer record; neither
// can run first.
//
// # Related Packages
//
//   - pkg/auth: token verification used by SessionMiddleware
//   - pkg/permissions: the decision function behind QuotaMiddleware
//   - pkg/tenantconf: configuration resolution behind QuotaMiddleware
package middleware
