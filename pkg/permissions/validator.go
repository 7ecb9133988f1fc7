package permissions

import (
	"fmt"

	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
)

// Action names a mutating operation subject to capability and limit checks.
type Action string

const (
	ActionCreateAgent      Action = "create_agent"
	ActionCreateCollection Action = "create_collection"
	ActionCreateUser       Action = "create_user"
	ActionCreateTeam       Action = "create_team"
	ActionUploadFile       Action = "upload_file"
)

// Decision is the outcome of validating one action. Reason is set only on
// denial and is safe to show to the end user.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// actionRule binds an action to its governing capability and, when the
// action creates a countable resource, to the limit that caps it.
type actionRule struct {
	capability func(Capabilities) bool
	limitKey   string
	limit      func(tenantconf.Limits) int
	resource   tenant.Resource
	noun       string
}

var actionRules = map[Action]actionRule{
	ActionCreateAgent: {
		capability: func(c Capabilities) bool { return c.CanManageAgents },
		limitKey:   tenantconf.LimitMaxAgents,
		limit:      func(l tenantconf.Limits) int { return l.MaxAgents },
		resource:   tenant.ResourceAgents,
		noun:       "agents",
	},
	ActionCreateCollection: {
		capability: func(c Capabilities) bool { return c.CanManageCollections },
		limitKey:   tenantconf.LimitMaxCollections,
		limit:      func(l tenantconf.Limits) int { return l.MaxCollections },
		resource:   tenant.ResourceCollections,
		noun:       "collections",
	},
	ActionCreateUser: {
		capability: func(c Capabilities) bool { return c.CanManageUsers },
		limitKey:   tenantconf.LimitMaxUsers,
		limit:      func(l tenantconf.Limits) int { return l.MaxUsers },
		resource:   tenant.ResourceUsers,
		noun:       "users",
	},
	ActionCreateTeam: {
		capability: func(c Capabilities) bool { return c.CanManageTeams },
		noun:       "teams",
	},
	ActionUploadFile: {
		capability: func(c Capabilities) bool { return true },
		limitKey:   tenantconf.LimitStorageMB,
		limit:      func(l tenantconf.Limits) int { return l.StorageMB },
		resource:   tenant.ResourceStorageMB,
		noun:       "storage (MB)",
	},
}

// Resource returns the countable resource an action is capped by, if any.
// Callers use it to look up the current count before validating.
func (a Action) Resource() (tenant.Resource, bool) {
	rule, ok := actionRules[a]
	if !ok || rule.limit == nil {
		return "", false
	}
	return rule.resource, true
}

// Validate decides whether an action is allowed for the given permission set
// and current resource count. It is a pure function of its arguments.
//
// Unrecognized actions are denied. A limit of -1 never denies regardless of
// the count; a limit of 0 denies every creation.
func Validate(perms PermissionSet, action Action, currentCount int) Decision {
	rule, ok := actionRules[action]
	if !ok {
		return Decision{Allowed: false, Reason: fmt.Sprintf("unrecognized action %q", action)}
	}

	if !rule.capability(perms.Capabilities) {
		return Decision{Allowed: false, Reason: fmt.Sprintf("no permission to manage %s", rule.noun)}
	}

	if rule.limit != nil {
		limit := rule.limit(perms.Limits)
		if limit != tenantconf.Unlimited && currentCount >= limit {
			return Decision{
				Allowed: false,
				Reason:  fmt.Sprintf("%s limit reached (%d of %d)", rule.noun, currentCount, limit),
			}
		}
	}

	return Decision{Allowed: true}
}
