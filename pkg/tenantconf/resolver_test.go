package tenantconf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenchat/canopy/pkg/tenant"
)

func seedCustomer(t *testing.T, store *tenant.MemoryStore, slug, configText string) *tenant.Customer {
	t.Helper()
	customer := &tenant.Customer{
		Name:       slug,
		Slug:       slug,
		ConfigText: configText,
	}
	require.NoError(t, store.CreateCustomer(context.Background(), customer))
	return customer
}

func TestResolveInlineDocument(t *testing.T) {
	store := tenant.NewMemoryStore()
	seedCustomer(t, store, "acme", "[ui]\ntheme = \"dark\"\n")
	resolver := NewResolver(store)

	cfg, err := resolver.Resolve(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, ThemeDark, cfg.UI.Theme)
	// everything not written comes from the conservative baseline
	assert.False(t, cfg.Features.Teams)
	assert.Equal(t, 10, cfg.Limits.MaxUsers)
}

func TestResolveLegacyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acme.conf")
	require.NoError(t, os.WriteFile(path, []byte("[limits]\nmax_agents = 42\n"), 0644))

	store := tenant.NewMemoryStore()
	customer := &tenant.Customer{Name: "acme", Slug: "acme", LegacyConfigPath: path}
	require.NoError(t, store.CreateCustomer(context.Background(), customer))

	resolver := NewResolver(store)
	cfg, err := resolver.Resolve(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Limits.MaxAgents)
}

func TestResolveInlineWinsOverLegacyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acme.conf")
	require.NoError(t, os.WriteFile(path, []byte("[limits]\nmax_agents = 42\n"), 0644))

	store := tenant.NewMemoryStore()
	customer := &tenant.Customer{
		Name:             "acme",
		Slug:             "acme",
		ConfigText:       "[limits]\nmax_agents = 7\n",
		LegacyConfigPath: path,
	}
	require.NoError(t, store.CreateCustomer(context.Background(), customer))

	resolver := NewResolver(store)
	cfg, err := resolver.Resolve(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Limits.MaxAgents)
}

func TestResolveUnreadableLegacyFileFallsBackToDefaults(t *testing.T) {
	store := tenant.NewMemoryStore()
	customer := &tenant.Customer{
		Name:             "acme",
		Slug:             "acme",
		LegacyConfigPath: filepath.Join(t.TempDir(), "does-not-exist.conf"),
	}
	require.NoError(t, store.CreateCustomer(context.Background(), customer))

	resolver := NewResolver(store)
	cfg, err := resolver.Resolve(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, TemplateDefaults("acme"), cfg)
}

func TestResolveNoDocumentSynthesizesTemplate(t *testing.T) {
	store := tenant.NewMemoryStore()
	seedCustomer(t, store, "acme", "   \n\t")

	resolver := NewResolver(store)
	cfg, err := resolver.Resolve(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, TemplateDefaults("acme"), cfg)
	assert.Equal(t, "/logos/acme.svg", cfg.UI.LogoPath)
}

func TestResolveUnknownTenant(t *testing.T) {
	resolver := NewResolver(tenant.NewMemoryStore())

	_, err := resolver.Resolve(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, tenant.IsNotFound(err))
	assert.Equal(t, 0, resolver.CacheLen(), "failed resolutions must not be cached")
}

func TestResolveDeletedTenant(t *testing.T) {
	store := tenant.NewMemoryStore()
	customer := seedCustomer(t, store, "acme", "")
	require.NoError(t, store.SoftDeleteCustomer(context.Background(), customer.ID))

	resolver := NewResolver(store)
	_, err := resolver.Resolve(context.Background(), "acme")
	assert.True(t, tenant.IsNotFound(err))
}

func TestResolveCachesUntilInvalidated(t *testing.T) {
	store := tenant.NewMemoryStore()
	customer := seedCustomer(t, store, "acme", "[ui]\ntheme = \"dark\"\n")
	resolver := NewResolver(store)
	ctx := context.Background()

	cfg, err := resolver.Resolve(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, cfg.UI.Theme)

	require.NoError(t, store.UpdateConfigText(ctx, customer.ID, "[ui]\ntheme = \"light\"\n"))

	cfg, err = resolver.Resolve(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, cfg.UI.Theme, "stale value expected before invalidation")

	resolver.Invalidate("acme")

	cfg, err = resolver.Resolve(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, cfg.UI.Theme)
}

func TestInvalidateAll(t *testing.T) {
	store := tenant.NewMemoryStore()
	seedCustomer(t, store, "acme", "")
	seedCustomer(t, store, "globex", "")
	resolver := NewResolver(store)
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, "acme")
	require.NoError(t, err)
	_, err = resolver.Resolve(ctx, "globex")
	require.NoError(t, err)
	require.Equal(t, 2, resolver.CacheLen())

	resolver.InvalidateAll()
	assert.Equal(t, 0, resolver.CacheLen())
}

func TestInvalidateUnknownSlugIsHarmless(t *testing.T) {
	resolver := NewResolver(tenant.NewMemoryStore())
	resolver.Invalidate("never-resolved")
	assert.Equal(t, 0, resolver.CacheLen())
}

func TestResolveCacheTTL(t *testing.T) {
	store := tenant.NewMemoryStore()
	customer := seedCustomer(t, store, "acme", "[ui]\ntheme = \"dark\"\n")
	resolver := NewResolver(store, WithCacheTTL(50*time.Millisecond))
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, "acme")
	require.NoError(t, err)

	require.NoError(t, store.UpdateConfigText(ctx, customer.ID, "[ui]\ntheme = \"light\"\n"))
	time.Sleep(100 * time.Millisecond)

	cfg, err := resolver.Resolve(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, cfg.UI.Theme, "entry should have expired without an explicit invalidation")
}

func TestResolveCacheSizeBound(t *testing.T) {
	store := tenant.NewMemoryStore()
	seedCustomer(t, store, "acme", "")
	seedCustomer(t, store, "globex", "")
	seedCustomer(t, store, "initech", "")
	resolver := NewResolver(store, WithCacheSize(2))
	ctx := context.Background()

	for _, slug := range []string{"acme", "globex", "initech"} {
		_, err := resolver.Resolve(ctx, slug)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, resolver.CacheLen())
}

func TestResolveConcurrent(t *testing.T) {
	store := tenant.NewMemoryStore()
	seedCustomer(t, store, "acme", "[ui]\ntheme = \"dark\"\n")
	resolver := NewResolver(store)

	done := make(chan Config, 16)
	for i := 0; i < 16; i++ {
		go func() {
			cfg, err := resolver.Resolve(context.Background(), "acme")
			assert.NoError(t, err)
			done <- cfg
		}()
	}
	for i := 0; i < 16; i++ {
		cfg := <-done
		assert.Equal(t, ThemeDark, cfg.UI.Theme)
	}
	assert.Equal(t, 1, resolver.CacheLen())
}
