package sso

import (
	"context"
	"fmt"
	"net/http"
)

// Provider defines the interface for SSO identity providers
type Provider interface {
	// Type returns the protocol the provider speaks
	Type() ProviderType

	// Name returns the provider name tenants reference in allowed_oauth
	Name() ProviderName

	// InitiateLogin redirects the browser to the identity provider
	InitiateLogin(w http.ResponseWriter, r *http.Request, state string) error

	// HandleCallback processes the provider callback and returns the
	// authenticated identity
	HandleCallback(r *http.Request) (*Identity, error)

	// ValidateConfig validates the provider configuration
	ValidateConfig() error
}

// Factory creates provider instances from deployment configuration
type Factory struct {
	baseURL string
}

// NewFactory creates a provider factory. baseURL is the externally visible
// address of this service, used to derive callback and metadata URLs.
func NewFactory(baseURL string) *Factory {
	return &Factory{baseURL: baseURL}
}

// Create builds a provider instance from configuration. An empty redirect URL
// defaults to this service's callback route for the provider.
func (f *Factory) Create(config *ProviderConfig) (Provider, error) {
	if !config.Enabled {
		return nil, fmt.Errorf("provider %s is disabled", config.Name)
	}

	callback := fmt.Sprintf("%s/auth/sso/%s/callback", f.baseURL, config.Name)
	if config.OAuth2Config != nil && config.OAuth2Config.RedirectURL == "" {
		config.OAuth2Config.RedirectURL = callback
	}
	if config.OIDCConfig != nil && config.OIDCConfig.RedirectURL == "" {
		config.OIDCConfig.RedirectURL = callback
	}

	switch config.Type {
	case ProviderTypeSAML:
		return NewSAMLProvider(config, f.baseURL)
	case ProviderTypeOAuth2:
		return NewOAuth2Provider(config)
	case ProviderTypeOIDC:
		return NewOIDCProvider(context.Background(), config)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.Type)
	}
}

// PresetConfig returns the well-known settings for a provider. Client
// credentials still need to be filled in by the operator.
func PresetConfig(name ProviderName) (*ProviderConfig, error) {
	switch name {
	case ProviderGoogle:
		return &ProviderConfig{
			Name:       ProviderGoogle,
			Type:       ProviderTypeOIDC,
			Attributes: DefaultAttributeMap(),
			OIDCConfig: &OIDCConfig{
				IssuerURL: "https://accounts.google.com",
				Scopes:    []string{"openid", "profile", "email"},
			},
		}, nil

	case ProviderOkta:
		return &ProviderConfig{
			Name:       ProviderOkta,
			Type:       ProviderTypeOIDC,
			Attributes: DefaultAttributeMap(),
			OIDCConfig: &OIDCConfig{
				Scopes: []string{"openid", "profile", "email", "groups"},
			},
		}, nil

	case ProviderAzureAD:
		config := &ProviderConfig{
			Name:       ProviderAzureAD,
			Type:       ProviderTypeOIDC,
			Attributes: DefaultAttributeMap(),
			OIDCConfig: &OIDCConfig{
				Scopes: []string{"openid", "profile", "email"},
			},
		}
		// Azure's stable user identifier is the object ID, not sub
		config.Attributes.UserID = "oid"
		return config, nil

	case ProviderGitHub:
		return &ProviderConfig{
			Name: ProviderGitHub,
			Type: ProviderTypeOAuth2,
			Attributes: AttributeMap{
				UserID:   "id",
				Email:    "email",
				FullName: "name",
			},
			OAuth2Config: &OAuth2Config{
				AuthURL:     "https://github.com/login/oauth/authorize",
				TokenURL:    "https://github.com/login/oauth/access_token",
				UserInfoURL: "https://api.github.com/user",
				Scopes:      []string{"read:user", "user:email"},
			},
		}, nil

	default:
		return nil, fmt.Errorf("no preset configuration for provider: %s", name)
	}
}

// Registry holds the providers configured for this deployment, keyed by name
type Registry struct {
	providers map[ProviderName]Provider
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[ProviderName]Provider)}
}

// Register adds a provider to the registry, replacing any provider with the
// same name.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns the named provider, or nil if it is not configured
func (r *Registry) Get(name ProviderName) Provider {
	return r.providers[name]
}

// Names returns the names of all registered providers
func (r *Registry) Names() []ProviderName {
	names := make([]ProviderName, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
