package sso

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOAuth2Server stands in for an OAuth2 identity provider, serving the
// token and userinfo endpoints.
func fakeOAuth2Server(t *testing.T, userInfo map[string]interface{}) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"test-access-token","token_type":"bearer"}`)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func oauth2TestProvider(t *testing.T, server *httptest.Server) *OAuth2Provider {
	t.Helper()
	provider, err := NewOAuth2Provider(&ProviderConfig{
		Name:    ProviderGitHub,
		Type:    ProviderTypeOAuth2,
		Enabled: true,
		Attributes: AttributeMap{
			UserID:   "id",
			Email:    "email",
			FullName: "name",
			Groups:   "teams",
		},
		OAuth2Config: &OAuth2Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			AuthURL:      server.URL + "/authorize",
			TokenURL:     server.URL + "/token",
			UserInfoURL:  server.URL + "/userinfo",
			RedirectURL:  "https://canopy.test/callback",
			Scopes:       []string{"read:user"},
		},
	})
	require.NoError(t, err)
	return provider
}

func TestOAuth2InitiateLoginRedirects(t *testing.T) {
	server := fakeOAuth2Server(t, nil)
	provider := oauth2TestProvider(t, server)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/login", nil)
	require.NoError(t, provider.InitiateLogin(w, r, "state-token"))

	assert.Equal(t, http.StatusFound, w.Code)
	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "state-token", location.Query().Get("state"))
	assert.Equal(t, "client-id", location.Query().Get("client_id"))
}

func TestOAuth2HandleCallback(t *testing.T) {
	server := fakeOAuth2Server(t, map[string]interface{}{
		"id":    float64(12345),
		"email": "jordan@acme.test",
		"name":  "Jordan Smith",
		"teams": []interface{}{"engineering", "admins"},
	})
	provider := oauth2TestProvider(t, server)

	r := httptest.NewRequest("GET", "/callback?code=auth-code&state=s", nil)
	identity, err := provider.HandleCallback(r)
	require.NoError(t, err)

	assert.Equal(t, "12345", identity.ExternalID)
	assert.Equal(t, "jordan@acme.test", identity.Email)
	assert.Equal(t, "Jordan Smith", identity.FullName)
	assert.Equal(t, []string{"engineering", "admins"}, identity.Groups)
	assert.Equal(t, ProviderGitHub, identity.Provider)
}

func TestOAuth2HandleCallbackMissingCode(t *testing.T) {
	server := fakeOAuth2Server(t, nil)
	provider := oauth2TestProvider(t, server)

	r := httptest.NewRequest("GET", "/callback", nil)
	_, err := provider.HandleCallback(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorization code")
}

func TestOAuth2HandleCallbackMissingEmail(t *testing.T) {
	server := fakeOAuth2Server(t, map[string]interface{}{
		"id":   float64(1),
		"name": "No Email",
	})
	provider := oauth2TestProvider(t, server)

	r := httptest.NewRequest("GET", "/callback?code=auth-code", nil)
	_, err := provider.HandleCallback(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestOAuth2ValidateConfig(t *testing.T) {
	valid := func() *OAuth2Config {
		return &OAuth2Config{
			ClientID:     "id",
			ClientSecret: "secret",
			AuthURL:      "https://idp.test/authorize",
			TokenURL:     "https://idp.test/token",
			UserInfoURL:  "https://idp.test/userinfo",
			RedirectURL:  "https://canopy.test/callback",
			Scopes:       []string{"read:user"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*OAuth2Config)
		want   string
	}{
		{name: "missing client_id", mutate: func(c *OAuth2Config) { c.ClientID = "" }, want: "client_id"},
		{name: "missing client_secret", mutate: func(c *OAuth2Config) { c.ClientSecret = "" }, want: "client_secret"},
		{name: "missing auth_url", mutate: func(c *OAuth2Config) { c.AuthURL = "" }, want: "auth_url"},
		{name: "missing token_url", mutate: func(c *OAuth2Config) { c.TokenURL = "" }, want: "token_url"},
		{name: "missing user_info_url", mutate: func(c *OAuth2Config) { c.UserInfoURL = "" }, want: "user_info_url"},
		{name: "missing scopes", mutate: func(c *OAuth2Config) { c.Scopes = nil }, want: "scopes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			provider, err := NewOAuth2Provider(&ProviderConfig{
				Name:         ProviderGitHub,
				Type:         ProviderTypeOAuth2,
				Enabled:      true,
				OAuth2Config: cfg,
			})
			require.NoError(t, err)
			err = provider.ValidateConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	provider, err := NewOAuth2Provider(&ProviderConfig{
		Name: ProviderGitHub, Type: ProviderTypeOAuth2, Enabled: true, OAuth2Config: valid(),
	})
	require.NoError(t, err)
	assert.NoError(t, provider.ValidateConfig())
}

func TestMapIdentityAttributes(t *testing.T) {
	claims := map[string]interface{}{
		"sub":         "u-1",
		"email":       "u@acme.test",
		"name":        "U One",
		"given_name":  "U",
		"family_name": "One",
		"groups":      []interface{}{"a", "b"},
		"locale":      "en",
	}
	identity := mapIdentity(claims, DefaultAttributeMap(), ProviderGoogle)

	assert.Equal(t, "u-1", identity.ExternalID)
	assert.Equal(t, "u@acme.test", identity.Email)
	assert.Equal(t, "U One", identity.FullName)
	assert.Equal(t, []string{"a", "b"}, identity.Groups)
	assert.Equal(t, "en", identity.Attributes["locale"])
}

func TestIdentityDisplayName(t *testing.T) {
	assert.Equal(t, "Full Name", (&Identity{FullName: "Full Name", Email: "e"}).DisplayName())
	assert.Equal(t, "A B", (&Identity{FirstName: "A", LastName: "B", Email: "e"}).DisplayName())
	assert.Equal(t, "e@x.test", (&Identity{Email: "e@x.test"}).DisplayName())
}
