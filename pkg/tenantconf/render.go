package tenantconf

import (
	"fmt"
	"strings"
)

// RenderDocument renders a Config back to document text. The output
// round-trips: parsing and merging it over any base reproduces the same
// Config. Comments and formatting of an original document are not preserved.
func RenderDocument(cfg Config) string {
	var b strings.Builder

	b.WriteString("[ui]\n")
	fmt.Fprintf(&b, "theme = %q\n", cfg.UI.Theme)
	fmt.Fprintf(&b, "logo_path = %q\n", cfg.UI.LogoPath)
	fmt.Fprintf(&b, "primary_color = %q\n", cfg.UI.PrimaryColor)
	fmt.Fprintf(&b, "show_branding = %t\n", cfg.UI.ShowBranding)

	b.WriteString("\n[chat]\n")
	fmt.Fprintf(&b, "has_history = %t\n", cfg.Chat.HasHistory)
	fmt.Fprintf(&b, "max_messages = %d\n", cfg.Chat.MaxMessages)
	fmt.Fprintf(&b, "default_agent = %q\n", cfg.Chat.DefaultAgent)
	fmt.Fprintf(&b, "welcome_message = %q\n", cfg.Chat.WelcomeMessage)

	b.WriteString("\n[features]\n")
	fmt.Fprintf(&b, "agents = %t\n", cfg.Features.Agents)
	fmt.Fprintf(&b, "collections = %t\n", cfg.Features.Collections)
	fmt.Fprintf(&b, "teams = %t\n", cfg.Features.Teams)
	fmt.Fprintf(&b, "analytics = %t\n", cfg.Features.Analytics)

	b.WriteString("\n[limits]\n")
	fmt.Fprintf(&b, "max_users = %d\n", cfg.Limits.MaxUsers)
	fmt.Fprintf(&b, "max_agents = %d\n", cfg.Limits.MaxAgents)
	fmt.Fprintf(&b, "max_collections = %d\n", cfg.Limits.MaxCollections)
	fmt.Fprintf(&b, "storage_mb = %d\n", cfg.Limits.StorageMB)

	b.WriteString("\n[integrations]\n")
	fmt.Fprintf(&b, "allowed_oauth = %s\n", renderArray(cfg.Integrations.AllowedOAuth))
	fmt.Fprintf(&b, "webhook_url = %q\n", cfg.Integrations.WebhookURL)

	return b.String()
}

func renderArray(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
