package tenantconf

// Unlimited is the limit value meaning no ceiling. A limit of 0 blocks
// creation entirely; any other negative value is invalid.
const Unlimited = -1

// Theme values recognized in the ui section
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Feature names recognized in the features section
const (
	FeatureAgents      = "agents"
	FeatureCollections = "collections"
	FeatureTeams       = "teams"
	FeatureAnalytics   = "analytics"
)

// Limit names recognized in the limits section
const (
	LimitMaxUsers       = "max_users"
	LimitMaxAgents      = "max_agents"
	LimitMaxCollections = "max_collections"
	LimitStorageMB      = "storage_mb"
)

// UIConfig holds tenant branding settings
type UIConfig struct {
	Theme        string `json:"theme"`
	LogoPath     string `json:"logo_path"`
	PrimaryColor string `json:"primary_color"`
	ShowBranding bool   `json:"show_branding"`
}

// ChatConfig holds chat behavior settings
type ChatConfig struct {
	HasHistory     bool   `json:"has_history"`
	MaxMessages    int    `json:"max_messages"`
	DefaultAgent   string `json:"default_agent"`
	WelcomeMessage string `json:"welcome_message"`
}

// Features holds the per-tenant feature gates
type Features struct {
	Agents      bool `json:"agents"`
	Collections bool `json:"collections"`
	Teams       bool `json:"teams"`
	Analytics   bool `json:"analytics"`
}

// Enabled returns the gate for a feature name; unknown names are disabled.
func (f Features) Enabled(name string) bool {
	switch name {
	case FeatureAgents:
		return f.Agents
	case FeatureCollections:
		return f.Collections
	case FeatureTeams:
		return f.Teams
	case FeatureAnalytics:
		return f.Analytics
	}
	return false
}

// Limits holds the per-tenant resource ceilings. Unlimited (-1) disables the
// ceiling; 0 blocks creation.
type Limits struct {
	MaxUsers       int `json:"max_users"`
	MaxAgents      int `json:"max_agents"`
	MaxCollections int `json:"max_collections"`
	StorageMB      int `json:"storage_mb"`
}

// For returns the limit for a limit name and whether the name is recognized.
func (l Limits) For(name string) (int, bool) {
	switch name {
	case LimitMaxUsers:
		return l.MaxUsers, true
	case LimitMaxAgents:
		return l.MaxAgents, true
	case LimitMaxCollections:
		return l.MaxCollections, true
	case LimitStorageMB:
		return l.StorageMB, true
	}
	return 0, false
}

// Integrations holds external integration settings
type Integrations struct {
	AllowedOAuth []string `json:"allowed_oauth"`
	WebhookURL   string   `json:"webhook_url"`
}

// OAuthAllowed reports whether an SSO provider name is in the allowed set.
func (i Integrations) OAuthAllowed(provider string) bool {
	for _, p := range i.AllowedOAuth {
		if p == provider {
			return true
		}
	}
	return false
}

// Config is a fully resolved tenant configuration. Every field carries a
// value, either the tenant's override or the profile default; a Config is
// never partial.
type Config struct {
	UI           UIConfig     `json:"ui"`
	Chat         ChatConfig   `json:"chat"`
	Features     Features     `json:"features"`
	Limits       Limits       `json:"limits"`
	Integrations Integrations `json:"integrations"`
}
