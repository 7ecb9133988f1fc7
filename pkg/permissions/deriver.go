package permissions

import (
	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
)

// Capabilities is the set of boolean permission flags derived for one user
// within one tenant.
type Capabilities struct {
	CanManageAgents      bool `json:"can_manage_agents"`
	CanManageCollections bool `json:"can_manage_collections"`
	CanManageTeams       bool `json:"can_manage_teams"`
	CanViewAnalytics     bool `json:"can_view_analytics"`
	CanManageUsers       bool `json:"can_manage_users"`
	CanManageSettings    bool `json:"can_manage_settings"`
}

// PermissionSet is the per-request authorization view: the user's role, the
// derived capabilities, and the tenant's limits and presentation config
// passed through verbatim. It is recomputed on every request and never
// persisted or cached on its own.
type PermissionSet struct {
	Role         tenant.Role           `json:"role"`
	Capabilities Capabilities          `json:"capabilities"`
	Limits       tenantconf.Limits     `json:"limits"`
	UI           tenantconf.UIConfig   `json:"ui"`
	Chat         tenantconf.ChatConfig `json:"chat"`
}

// Derive computes a PermissionSet from a resolved tenant configuration and a
// user role. It never fails: an unrecognized role is treated as the lowest
// tier, so every fallback is toward denial.
//
// Feature flags restrict only the lowest role tier. An ADMIN or SUPER_USER
// keeps the feature-gated capabilities even when the tenant has the feature
// flag off; the flag controls what ordinary members can do, not what
// administrators can configure.
func Derive(cfg tenantconf.Config, role tenant.Role) PermissionSet {
	if !role.Valid() {
		role = tenant.RoleUser
	}
	elevated := role != tenant.RoleUser
	admin := role == tenant.RoleAdmin || role == tenant.RoleSuperUser

	return PermissionSet{
		Role: role,
		Capabilities: Capabilities{
			CanManageAgents:      elevated || cfg.Features.Agents,
			CanManageCollections: elevated || cfg.Features.Collections,
			CanManageTeams:       elevated || cfg.Features.Teams,
			CanViewAnalytics:     elevated || cfg.Features.Analytics,
			CanManageUsers:       admin,
			CanManageSettings:    admin,
		},
		Limits: cfg.Limits,
		UI:     cfg.UI,
		Chat:   cfg.Chat,
	}
}
