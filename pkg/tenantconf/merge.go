package tenantconf

// MergeOverDefaults applies a parsed Document over a complete base Config.
// Only keys explicitly present in the document replace the base value; keys
// absent from an override section, and sections absent from the document,
// keep the base value. Values of the wrong type for their key, and limit
// values below -1, are ignored so a malformed override can never punch a
// hole in the resolved Config.
func MergeOverDefaults(doc Document, base Config) Config {
	cfg := base

	if sec, ok := doc["ui"]; ok {
		applyString(sec, "theme", &cfg.UI.Theme)
		applyString(sec, "logo_path", &cfg.UI.LogoPath)
		applyString(sec, "primary_color", &cfg.UI.PrimaryColor)
		applyBool(sec, "show_branding", &cfg.UI.ShowBranding)
	}

	if sec, ok := doc["chat"]; ok {
		applyBool(sec, "has_history", &cfg.Chat.HasHistory)
		applyInt(sec, "max_messages", &cfg.Chat.MaxMessages)
		applyString(sec, "default_agent", &cfg.Chat.DefaultAgent)
		applyString(sec, "welcome_message", &cfg.Chat.WelcomeMessage)
	}

	if sec, ok := doc["features"]; ok {
		applyBool(sec, FeatureAgents, &cfg.Features.Agents)
		applyBool(sec, FeatureCollections, &cfg.Features.Collections)
		applyBool(sec, FeatureTeams, &cfg.Features.Teams)
		applyBool(sec, FeatureAnalytics, &cfg.Features.Analytics)
	}

	if sec, ok := doc["limits"]; ok {
		applyLimit(sec, LimitMaxUsers, &cfg.Limits.MaxUsers)
		applyLimit(sec, LimitMaxAgents, &cfg.Limits.MaxAgents)
		applyLimit(sec, LimitMaxCollections, &cfg.Limits.MaxCollections)
		applyLimit(sec, LimitStorageMB, &cfg.Limits.StorageMB)
	}

	if sec, ok := doc["integrations"]; ok {
		if v, ok := sec["allowed_oauth"].([]string); ok {
			cfg.Integrations.AllowedOAuth = append([]string(nil), v...)
		}
		applyString(sec, "webhook_url", &cfg.Integrations.WebhookURL)
	}

	return cfg
}

func applyString(sec Section, key string, dst *string) {
	if v, ok := sec[key].(string); ok {
		*dst = v
	}
}

func applyBool(sec Section, key string, dst *bool) {
	if v, ok := sec[key].(bool); ok {
		*dst = v
	}
}

func applyInt(sec Section, key string, dst *int) {
	if v, ok := sec[key].(int); ok {
		*dst = v
	}
}

// applyLimit applies an integer limit; -1 means unlimited, values below -1
// are invalid and keep the default.
func applyLimit(sec Section, key string, dst *int) {
	if v, ok := sec[key].(int); ok && v >= Unlimited {
		*dst = v
	}
}
