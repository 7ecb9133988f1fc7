package sso

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOIDCIssuer serves a minimal OIDC discovery document
func fakeOIDCIssuer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"issuer": %q,
			"authorization_endpoint": %q,
			"token_endpoint": %q,
			"jwks_uri": %q,
			"id_token_signing_alg_values_supported": ["RS256"]
		}`, server.URL, server.URL+"/authorize", server.URL+"/token", server.URL+"/keys")
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"keys": []}`)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func oidcTestConfig(issuerURL string) *ProviderConfig {
	return &ProviderConfig{
		Name:       ProviderOkta,
		Type:       ProviderTypeOIDC,
		Enabled:    true,
		Attributes: DefaultAttributeMap(),
		OIDCConfig: &OIDCConfig{
			IssuerURL:    issuerURL,
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "https://canopy.test/callback",
			Scopes:       []string{"openid", "profile", "email"},
		},
	}
}

func TestNewOIDCProviderDiscovery(t *testing.T) {
	issuer := fakeOIDCIssuer(t)
	provider, err := NewOIDCProvider(context.Background(), oidcTestConfig(issuer.URL))
	require.NoError(t, err)
	assert.Equal(t, ProviderTypeOIDC, provider.Type())
	assert.Equal(t, ProviderOkta, provider.Name())
}

func TestNewOIDCProviderDiscoveryFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewOIDCProvider(context.Background(), oidcTestConfig(server.URL))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover")
}

func TestOIDCInitiateLoginRedirects(t *testing.T) {
	issuer := fakeOIDCIssuer(t)
	provider, err := NewOIDCProvider(context.Background(), oidcTestConfig(issuer.URL))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/login", nil)
	require.NoError(t, provider.InitiateLogin(w, r, "state-token"))

	assert.Equal(t, http.StatusFound, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "state-token", location.Query().Get("state"))
	assert.Contains(t, location.Query().Get("scope"), "openid")
}

func TestOIDCCallbackMissingCode(t *testing.T) {
	issuer := fakeOIDCIssuer(t)
	provider, err := NewOIDCProvider(context.Background(), oidcTestConfig(issuer.URL))
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "/callback", nil)
	_, err = provider.HandleCallback(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorization code")
}

func TestOIDCValidateConfig(t *testing.T) {
	issuer := fakeOIDCIssuer(t)

	tests := []struct {
		name   string
		mutate func(*OIDCConfig)
		want   string
	}{
		{name: "missing client_id", mutate: func(c *OIDCConfig) { c.ClientID = "" }, want: "client_id"},
		{name: "missing client_secret", mutate: func(c *OIDCConfig) { c.ClientSecret = "" }, want: "client_secret"},
		{name: "missing redirect_url", mutate: func(c *OIDCConfig) { c.RedirectURL = "" }, want: "redirect_url"},
		{name: "missing openid scope", mutate: func(c *OIDCConfig) { c.Scopes = []string{"profile"} }, want: "openid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := oidcTestConfig(issuer.URL)
			provider, err := NewOIDCProvider(context.Background(), config)
			require.NoError(t, err)

			tt.mutate(config.OIDCConfig)
			err = provider.ValidateConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
