// Package api exposes the control plane over HTTP.
//
// # Overview
//
// The server mounts three route families:
//
//   - Provisioning routes (/api/customers...) manage customer records and
//     their configuration documents. They carry no session check and are
//     expected to be reachable only from the operator network.
//   - Tenant routes (/api/me, /api/users...) require a bearer session token;
//     the tenant context is taken from the token, never from the request, so
//     a session can only ever read and write its own tenant.
//   - SSO routes (/auth/sso/...) when SSO handlers are mounted.
//
// Configuration writes are strict (a document with validation errors is
// rejected with 422 and the line-numbered issues) while reads stay lenient.
// Every write that changes a document invalidates the resolver cache after
// the write succeeds.
//
// # Usage Example
//
//	server := api.NewServer(store, resolver, manager,
//		api.WithLogger(logger),
//		api.WithSSOHandlers(ssoHandlers),
//	)
//	http.ListenAndServe(":8080", server)
//
// # Related Packages
//
//   - pkg/middleware: the session/tenant/quota chain on tenant routes
//   - pkg/tenantconf: document validation and resolution behind the config routes
//   - pkg/permissions: derivation behind /api/users/{id}/permissions
package api
