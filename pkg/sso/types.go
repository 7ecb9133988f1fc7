package sso

// ProviderType identifies the protocol a provider speaks
type ProviderType string

const (
	ProviderTypeSAML   ProviderType = "saml"
	ProviderTypeOAuth2 ProviderType = "oauth2"
	ProviderTypeOIDC   ProviderType = "oidc"
)

// ProviderName identifies a configured identity provider. Tenant
// configuration documents reference providers by this name in their
// allowed_oauth list.
type ProviderName string

const (
	ProviderGoogle  ProviderName = "google"
	ProviderOkta    ProviderName = "okta"
	ProviderAzureAD ProviderName = "azuread"
	ProviderGitHub  ProviderName = "github"
)

// ProviderConfig holds the deployment-level configuration for one identity
// provider. Providers are configured once per deployment; tenants opt in per
// provider through their configuration document.
type ProviderConfig struct {
	Name         ProviderName  `json:"name"`
	Type         ProviderType  `json:"type"`
	Enabled      bool          `json:"enabled"`
	SAMLConfig   *SAMLConfig   `json:"saml_config,omitempty"`
	OAuth2Config *OAuth2Config `json:"oauth2_config,omitempty"`
	OIDCConfig   *OIDCConfig   `json:"oidc_config,omitempty"`
	Attributes   AttributeMap  `json:"attribute_mapping"`
}

// SAMLConfig holds SAML 2.0 provider settings
type SAMLConfig struct {
	EntityID     string `json:"entity_id"`
	SSOURL       string `json:"sso_url"`
	SLOURL       string `json:"slo_url,omitempty"`
	Certificate  string `json:"certificate"`
	PrivateKey   string `json:"private_key,omitempty"`
	SignRequests bool   `json:"sign_requests"`
	NameIDFormat string `json:"name_id_format,omitempty"`
}

// OAuth2Config holds plain OAuth2 provider settings
type OAuth2Config struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURL      string   `json:"auth_url"`
	TokenURL     string   `json:"token_url"`
	UserInfoURL  string   `json:"user_info_url"`
	RedirectURL  string   `json:"redirect_url"`
	Scopes       []string `json:"scopes"`
}

// OIDCConfig holds OpenID Connect provider settings
type OIDCConfig struct {
	IssuerURL    string   `json:"issuer_url"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURL  string   `json:"redirect_url"`
	Scopes       []string `json:"scopes"`
}

// AttributeMap maps provider claim or assertion names onto identity fields
type AttributeMap struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Groups    string `json:"groups,omitempty"`
}

// DefaultAttributeMap covers the standard OIDC claim names; most providers
// need no more than this.
func DefaultAttributeMap() AttributeMap {
	return AttributeMap{
		UserID:    "sub",
		Email:     "email",
		FullName:  "name",
		FirstName: "given_name",
		LastName:  "family_name",
		Groups:    "groups",
	}
}

// Identity is the provider-agnostic result of a completed SSO login
type Identity struct {
	Provider   ProviderName      `json:"provider"`
	ExternalID string            `json:"external_id"`
	Email      string            `json:"email"`
	FullName   string            `json:"full_name,omitempty"`
	FirstName  string            `json:"first_name,omitempty"`
	LastName   string            `json:"last_name,omitempty"`
	Groups     []string          `json:"groups,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// DisplayName returns the best available human-readable name
func (i *Identity) DisplayName() string {
	if i.FullName != "" {
		return i.FullName
	}
	if i.FirstName != "" && i.LastName != "" {
		return i.FirstName + " " + i.LastName
	}
	return i.Email
}
