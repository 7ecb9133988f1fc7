package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenchat/canopy/pkg/tenantconf"
)

func TestResolveCommandMergesOverDefaults(t *testing.T) {
	path := writeDoc(t, "[ui]\ntheme = \"dark\"\n[limits]\nmax_agents = 20\n")

	var out bytes.Buffer
	require.NoError(t, runResolve(&out, []string{"-file", path}))

	var cfg tenantconf.Config
	require.NoError(t, json.Unmarshal(out.Bytes(), &cfg))
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, 20, cfg.Limits.MaxAgents)
	// untouched keys come from the strict defaults
	assert.Equal(t, 100, cfg.Chat.MaxMessages)
}

func TestResolveCommandRequiresFile(t *testing.T) {
	var out bytes.Buffer
	err := runResolve(&out, nil)
	require.Error(t, err)
}

func TestRenderCommandScaffoldsTemplate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runRender(&out, []string{"-slug", "acme"}))
	assert.Contains(t, out.String(), "/logos/acme.svg")
	assert.Contains(t, out.String(), `allowed_oauth = ["google"]`)
}

func TestRenderCommandRequiresSlug(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, runRender(&out, nil))
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"validate", "render", "resolve"} {
		assert.Contains(t, root.Subcommands, name)
	}
}
