// Package permissions derives per-request authorization from a resolved
// tenant configuration and validates individual actions against it.
//
// # Overview
//
// Derive computes a PermissionSet from a tenant's resolved Config plus the
// user's role. The set carries boolean capabilities (can_manage_agents,
// can_manage_users, ...) and passes the tenant's limits and presentation
// config through verbatim. It is ephemeral: recomputed per request, never
// stored.
//
// Feature flags gate only the lowest role tier; ADMIN and SUPER_USER retain
// feature-area capabilities with the flag off. User and settings management
// always require ADMIN or above.
//
// Validate is a pure decision function for mutating actions: it checks the
// governing capability, then the governing limit against the current
// resource count. -1 marks a limit as unlimited; 0 blocks creation outright.
// Unrecognized actions are denied.
//
// # Usage Example
//
//	perms := permissions.Derive(cfg, user.Role)
//	decision := permissions.Validate(perms, permissions.ActionCreateAgent, agentCount)
//	if !decision.Allowed {
//		// decision.Reason is safe to return to the client
//	}
//
// # Related Packages
//
//   - pkg/tenantconf: produces the Config this package consumes
//   - pkg/api: exposes permissions and action checks over HTTP
package permissions
