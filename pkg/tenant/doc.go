// Package tenant provides customer (tenant) and user records for the Canopy
// control plane, plus the persistence boundary used by configuration
// resolution and permission checks.
//
// # Overview
//
// A customer is an isolated tenant account with its own configuration
// document, users, and countable resources (agents, collections, files).
// The Store interface is the only way the rest of the system reads or writes
// these records; it is implemented for PostgreSQL (production), SQLite
// (single-node/dev deployments), and in-memory (tests).
//
// # Usage Example
//
// Open a store and look up a tenant:
//
//	store, err := tenant.NewPostgresStore(db)
//	customer, err := store.FindActiveCustomerBySlug(ctx, "acme")
//	if tenant.IsNotFound(err) {
//		// 404
//	}
//
// Count a resource for quota enforcement:
//
//	n, err := store.CountResource(ctx, customer.ID, tenant.ResourceAgents)
//
// # Related Packages
//
//   - pkg/tenantconf: configuration resolution on top of Store
//   - pkg/permissions: role/capability derivation
package tenant
