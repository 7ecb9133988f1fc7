package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
)

func TestDeriveCapabilityAsymmetry(t *testing.T) {
	cfg := tenantconf.StrictDefaults()
	cfg.Features.Teams = false

	user := Derive(cfg, tenant.RoleUser)
	assert.False(t, user.Capabilities.CanManageTeams)

	admin := Derive(cfg, tenant.RoleAdmin)
	assert.True(t, admin.Capabilities.CanManageTeams, "feature flags restrict only the USER tier")
}

func TestDeriveFeatureGatesForUsers(t *testing.T) {
	cfg := tenantconf.StrictDefaults()
	cfg.Features = tenantconf.Features{
		Agents:      true,
		Collections: false,
		Teams:       false,
		Analytics:   true,
	}

	perms := Derive(cfg, tenant.RoleUser)
	assert.True(t, perms.Capabilities.CanManageAgents)
	assert.False(t, perms.Capabilities.CanManageCollections)
	assert.False(t, perms.Capabilities.CanManageTeams)
	assert.True(t, perms.Capabilities.CanViewAnalytics)
}

func TestDeriveAdminOnlyCapabilities(t *testing.T) {
	cfg := tenantconf.StrictDefaults()

	tests := []struct {
		role     tenant.Role
		expected bool
	}{
		{role: tenant.RoleUser, expected: false},
		{role: tenant.RoleAdmin, expected: true},
		{role: tenant.RoleSuperUser, expected: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			perms := Derive(cfg, tt.role)
			assert.Equal(t, tt.expected, perms.Capabilities.CanManageUsers)
			assert.Equal(t, tt.expected, perms.Capabilities.CanManageSettings)
		})
	}
}

func TestDeriveUnknownRoleIsMostRestrictive(t *testing.T) {
	cfg := tenantconf.StrictDefaults()
	cfg.Features.Teams = false

	perms := Derive(cfg, tenant.Role("INTERN"))
	assert.Equal(t, tenant.RoleUser, perms.Role)
	assert.False(t, perms.Capabilities.CanManageTeams)
	assert.False(t, perms.Capabilities.CanManageUsers)

	empty := Derive(cfg, "")
	assert.Equal(t, tenant.RoleUser, empty.Role)
}

func TestDerivePassesThroughConfig(t *testing.T) {
	cfg := tenantconf.StrictDefaults()
	cfg.Limits.MaxAgents = tenantconf.Unlimited
	cfg.UI.Theme = tenantconf.ThemeDark
	cfg.Chat.MaxMessages = 7

	perms := Derive(cfg, tenant.RoleAdmin)
	assert.Equal(t, cfg.Limits, perms.Limits)
	assert.Equal(t, cfg.UI, perms.UI)
	assert.Equal(t, cfg.Chat, perms.Chat)
}
