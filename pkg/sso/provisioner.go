package sso

import (
	"context"
	"fmt"

	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/webhook"
)

// Provisioner creates or refreshes user records from completed SSO logins
// (just-in-time provisioning). Users are always scoped to the customer
// account whose login flow produced the identity.
type Provisioner struct {
	store         tenant.Store
	autoProvision bool
	groupRoles    map[string]tenant.Role
	notifier      *webhook.Notifier
}

// ProvisionerOption configures a Provisioner
type ProvisionerOption func(*Provisioner)

// WithGroupRoles maps identity-provider group names to roles. When a login
// carries a mapped group, the provisioned user gets the highest matching
// role; otherwise new users default to USER.
func WithGroupRoles(mapping map[string]tenant.Role) ProvisionerOption {
	return func(p *Provisioner) {
		p.groupRoles = mapping
	}
}

// WithNotifier emits a user.provisioned webhook for each newly created user
func WithNotifier(notifier *webhook.Notifier) ProvisionerOption {
	return func(p *Provisioner) {
		p.notifier = notifier
	}
}

// NewProvisioner creates a provisioner. When autoProvision is false, logins
// from identities with no existing user record fail.
func NewProvisioner(store tenant.Store, autoProvision bool, opts ...ProvisionerOption) *Provisioner {
	p := &Provisioner{
		store:         store,
		autoProvision: autoProvision,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision returns the user record for an authenticated identity, creating
// it when auto-provisioning is enabled.
func (p *Provisioner) Provision(ctx context.Context, customer *tenant.Customer, identity *Identity) (*tenant.User, error) {
	user, err := p.store.FindUserByEmail(ctx, customer.ID, identity.Email)
	if err == nil {
		return user, nil
	}
	if !tenant.IsNotFound(err) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !p.autoProvision {
		return nil, fmt.Errorf("no account for %s and auto-provisioning is disabled", identity.Email)
	}

	user = &tenant.User{
		CustomerID: customer.ID,
		Email:      identity.Email,
		FullName:   identity.DisplayName(),
		Role:       p.roleForGroups(identity.Groups),
	}
	if err := p.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	if p.notifier != nil {
		p.notifier.Notify(ctx, customer.Slug, webhook.EventUserProvisioned, map[string]interface{}{
			"user_id":  user.ID,
			"email":    user.Email,
			"provider": string(identity.Provider),
		})
	}
	return user, nil
}

// roleForGroups picks the highest role granted by the identity's groups
func (p *Provisioner) roleForGroups(groups []string) tenant.Role {
	role := tenant.RoleUser
	for _, group := range groups {
		mapped, ok := p.groupRoles[group]
		if !ok {
			continue
		}
		if mapped == tenant.RoleAdmin {
			role = tenant.RoleAdmin
		}
	}
	return role
}
