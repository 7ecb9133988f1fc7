package tenantconf

// Two default profiles exist and are deliberately distinct:
//
//   - StrictDefaults is the baseline the resolver merges tenant overrides
//     over. Its feature gates are conservative (teams and analytics off), so
//     a tenant that never enabled a feature does not get it by accident.
//   - TemplateDefaults is the scaffold used when provisioning a brand-new
//     tenant document. All features are on so a fresh tenant starts fully
//     functional; the administrator trims it down.
//
// Call sites must pick one explicitly; never substitute one for the other.

// StrictDefaults returns the conservative default configuration used as the
// merge baseline during resolution. Each call returns an independent copy.
func StrictDefaults() Config {
	return Config{
		UI: UIConfig{
			Theme:        ThemeLight,
			LogoPath:     "/logos/default.svg",
			PrimaryColor: "#2563EB",
			ShowBranding: true,
		},
		Chat: ChatConfig{
			HasHistory:     true,
			MaxMessages:    100,
			DefaultAgent:   "assistant",
			WelcomeMessage: "Hello! How can I help you today?",
		},
		Features: Features{
			Agents:      true,
			Collections: true,
			Teams:       false,
			Analytics:   false,
		},
		Limits: Limits{
			MaxUsers:       10,
			MaxAgents:      5,
			MaxCollections: 10,
			StorageMB:      512,
		},
		Integrations: Integrations{
			AllowedOAuth: []string{},
			WebhookURL:   "",
		},
	}
}

// TemplateDefaults returns the scaffold profile for a brand-new tenant,
// parameterized by the tenant slug (used for the default logo path). Each
// call returns an independent copy.
func TemplateDefaults(slug string) Config {
	cfg := StrictDefaults()
	cfg.UI.LogoPath = "/logos/" + slug + ".svg"
	cfg.Features = Features{
		Agents:      true,
		Collections: true,
		Teams:       true,
		Analytics:   true,
	}
	cfg.Integrations.AllowedOAuth = []string{"google"}
	return cfg
}

// DefaultDocument renders a fresh configuration document for a new tenant
// from the template profile.
func DefaultDocument(slug string) string {
	return RenderDocument(TemplateDefaults(slug))
}
