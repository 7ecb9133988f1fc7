// Package sso implements single sign-on login flows over SAML 2.0, OAuth2,
// and OpenID Connect.
//
// # Overview
//
// Identity providers are configured once per deployment and held in a
// Registry. Whether a given tenant may use a provider is decided per login
// from the tenant's resolved configuration document: the provider name must
// appear in the [integrations] allowed_oauth list. A completed login yields a
// provider-agnostic Identity, which the Provisioner maps onto a user record
// (creating one just-in-time when enabled), and the flow ends with an issued
// session token.
//
// # Usage Example
//
//	registry := sso.NewRegistry()
//	google, _ := sso.PresetConfig(sso.ProviderGoogle)
//	google.OIDCConfig.ClientID = cfg.ClientID
//	google.OIDCConfig.ClientSecret = cfg.ClientSecret
//	google.Enabled = true
//
//	provider, err := sso.NewFactory(baseURL).Create(google)
//	if err != nil {
//		return err
//	}
//	registry.Register(provider)
//
//	handlers := sso.NewHandlers(store, resolver, registry,
//		sso.NewProvisioner(store, true), manager, logger)
//	handlers.RegisterRoutes(router)
//
// # Related Packages
//
//   - pkg/auth: session tokens issued after a successful login
//   - pkg/tenantconf: the per-tenant allowed_oauth gate
//   - pkg/tenant: user records created by just-in-time provisioning
package sso
