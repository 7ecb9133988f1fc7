package permissions

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
)

func adminPerms(cfg tenantconf.Config) PermissionSet {
	return Derive(cfg, tenant.RoleAdmin)
}

func TestValidateAllowsWithinLimit(t *testing.T) {
	perms := adminPerms(tenantconf.StrictDefaults())

	decision := Validate(perms, ActionCreateAgent, 4)
	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reason)
}

func TestValidateDeniesWithoutCapability(t *testing.T) {
	cfg := tenantconf.StrictDefaults()
	cfg.Features.Agents = false
	perms := Derive(cfg, tenant.RoleUser)

	decision := Validate(perms, ActionCreateAgent, 0)
	assert.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "no permission")
}

func TestValidateCapabilityCheckedBeforeLimit(t *testing.T) {
	cfg := tenantconf.StrictDefaults()
	cfg.Features.Agents = false
	cfg.Limits.MaxAgents = 0
	perms := Derive(cfg, tenant.RoleUser)

	decision := Validate(perms, ActionCreateAgent, 0)
	require.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "no permission")
}

func TestValidateLimitReached(t *testing.T) {
	cfg := tenantconf.StrictDefaults()
	cfg.Limits.MaxAgents = 5
	perms := adminPerms(cfg)

	decision := Validate(perms, ActionCreateAgent, 5)
	require.False(t, decision.Allowed)
	// the denial reason names the numeric limit
	assert.Contains(t, decision.Reason, "5")

	decision = Validate(perms, ActionCreateAgent, 6)
	assert.False(t, decision.Allowed, "over the limit stays denied")
}

func TestValidateUnlimitedMarker(t *testing.T) {
	cfg := tenantconf.StrictDefaults()
	cfg.Limits.MaxAgents = tenantconf.Unlimited
	perms := adminPerms(cfg)

	decision := Validate(perms, ActionCreateAgent, 999999)
	assert.True(t, decision.Allowed)
}

func TestValidateZeroBlocksCreation(t *testing.T) {
	cfg := tenantconf.StrictDefaults()
	cfg.Limits.MaxAgents = 0
	perms := adminPerms(cfg)

	for _, count := range []int{0, 1, 100} {
		decision := Validate(perms, ActionCreateAgent, count)
		assert.False(t, decision.Allowed, "count=%d", count)
		assert.Contains(t, decision.Reason, "0")
	}
}

func TestValidateUnknownActionDenied(t *testing.T) {
	perms := adminPerms(tenantconf.StrictDefaults())

	decision := Validate(perms, Action("delete_everything"), 0)
	require.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "unrecognized action")
}

func TestValidateCreateTeamHasNoLimit(t *testing.T) {
	cfg := tenantconf.StrictDefaults()
	cfg.Features.Teams = true
	perms := Derive(cfg, tenant.RoleUser)

	decision := Validate(perms, ActionCreateTeam, 1000000)
	assert.True(t, decision.Allowed)

	cfg.Features.Teams = false
	decision = Validate(Derive(cfg, tenant.RoleUser), ActionCreateTeam, 0)
	assert.False(t, decision.Allowed)
}

func TestValidateUploadFileAgainstStorage(t *testing.T) {
	cfg := tenantconf.StrictDefaults()
	cfg.Limits.StorageMB = 512
	perms := Derive(cfg, tenant.RoleUser)

	assert.True(t, Validate(perms, ActionUploadFile, 511).Allowed)

	decision := Validate(perms, ActionUploadFile, 512)
	require.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "512")
}

func TestValidateEveryActionAtDefaults(t *testing.T) {
	perms := adminPerms(tenantconf.StrictDefaults())

	for action := range actionRules {
		t.Run(string(action), func(t *testing.T) {
			decision := Validate(perms, action, 0)
			assert.True(t, decision.Allowed, fmt.Sprintf("%s should be allowed for an admin at defaults", action))
		})
	}
}

func TestActionResource(t *testing.T) {
	tests := []struct {
		action   Action
		resource tenant.Resource
		capped   bool
	}{
		{action: ActionCreateAgent, resource: tenant.ResourceAgents, capped: true},
		{action: ActionCreateCollection, resource: tenant.ResourceCollections, capped: true},
		{action: ActionCreateUser, resource: tenant.ResourceUsers, capped: true},
		{action: ActionUploadFile, resource: tenant.ResourceStorageMB, capped: true},
		{action: ActionCreateTeam, capped: false},
		{action: Action("bogus"), capped: false},
	}

	for _, tt := range tests {
		resource, ok := tt.action.Resource()
		assert.Equal(t, tt.capped, ok, string(tt.action))
		assert.Equal(t, tt.resource, resource, string(tt.action))
	}
}

func TestEndToEndResolutionScenario(t *testing.T) {
	text := "[ui]\ntheme = \"dark\"\nprimary_color = \"#3B82F6\"\n[limits]\nmax_users = 0\n"
	cfg := tenantconf.MergeOverDefaults(tenantconf.ParseLenient(text), tenantconf.StrictDefaults())

	assert.Equal(t, tenantconf.ThemeDark, cfg.UI.Theme)
	assert.Equal(t, "#3B82F6", cfg.UI.PrimaryColor)
	assert.True(t, cfg.UI.ShowBranding)
	assert.Equal(t, 0, cfg.Limits.MaxUsers)
	assert.Equal(t, 5, cfg.Limits.MaxAgents)

	decision := Validate(adminPerms(cfg), ActionCreateUser, 0)
	require.False(t, decision.Allowed)
	assert.Contains(t, decision.Reason, "0")
}
