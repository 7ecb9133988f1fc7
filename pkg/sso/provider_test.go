package sso

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryRejectsDisabledProvider(t *testing.T) {
	factory := NewFactory("https://canopy.test")
	_, err := factory.Create(&ProviderConfig{
		Name:    ProviderGoogle,
		Type:    ProviderTypeOIDC,
		Enabled: false,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	factory := NewFactory("https://canopy.test")
	_, err := factory.Create(&ProviderConfig{
		Name:    "custom",
		Type:    "ldap",
		Enabled: true,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider type")
}

func TestFactoryCreatesOAuth2Provider(t *testing.T) {
	factory := NewFactory("https://canopy.test")
	provider, err := factory.Create(&ProviderConfig{
		Name:    ProviderGitHub,
		Type:    ProviderTypeOAuth2,
		Enabled: true,
		OAuth2Config: &OAuth2Config{
			ClientID:     "id",
			ClientSecret: "secret",
			AuthURL:      "https://github.com/login/oauth/authorize",
			TokenURL:     "https://github.com/login/oauth/access_token",
			UserInfoURL:  "https://api.github.com/user",
			RedirectURL:  "https://canopy.test/callback",
			Scopes:       []string{"read:user"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, ProviderTypeOAuth2, provider.Type())
	assert.Equal(t, ProviderGitHub, provider.Name())
}

func TestFactoryDefaultsRedirectURL(t *testing.T) {
	factory := NewFactory("https://canopy.test")
	config := &ProviderConfig{
		Name:    ProviderGitHub,
		Type:    ProviderTypeOAuth2,
		Enabled: true,
		OAuth2Config: &OAuth2Config{
			ClientID:     "id",
			ClientSecret: "secret",
			AuthURL:      "https://github.com/login/oauth/authorize",
			TokenURL:     "https://github.com/login/oauth/access_token",
			UserInfoURL:  "https://api.github.com/user",
		},
	}
	_, err := factory.Create(config)
	require.NoError(t, err)
	assert.Equal(t, "https://canopy.test/auth/sso/github/callback", config.OAuth2Config.RedirectURL)
}

func TestPresetConfig(t *testing.T) {
	tests := []struct {
		name     ProviderName
		wantType ProviderType
		userID   string
	}{
		{name: ProviderGoogle, wantType: ProviderTypeOIDC, userID: "sub"},
		{name: ProviderOkta, wantType: ProviderTypeOIDC, userID: "sub"},
		{name: ProviderAzureAD, wantType: ProviderTypeOIDC, userID: "oid"},
		{name: ProviderGitHub, wantType: ProviderTypeOAuth2, userID: "id"},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			config, err := PresetConfig(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.name, config.Name)
			assert.Equal(t, tt.wantType, config.Type)
			assert.Equal(t, tt.userID, config.Attributes.UserID)
		})
	}
}

func TestPresetConfigUnknown(t *testing.T) {
	_, err := PresetConfig("keycloak")
	require.Error(t, err)
}

func TestPresetGoogleHasIssuer(t *testing.T) {
	config, err := PresetConfig(ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.google.com", config.OIDCConfig.IssuerURL)
	assert.Contains(t, config.OIDCConfig.Scopes, "openid")
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	assert.Nil(t, registry.Get(ProviderGoogle))
	assert.Empty(t, registry.Names())

	provider, err := NewOAuth2Provider(&ProviderConfig{
		Name:         ProviderGitHub,
		Type:         ProviderTypeOAuth2,
		Enabled:      true,
		OAuth2Config: &OAuth2Config{AuthURL: "a", TokenURL: "t"},
	})
	require.NoError(t, err)

	registry.Register(provider)
	assert.Equal(t, provider, registry.Get(ProviderGitHub))
	assert.Equal(t, []ProviderName{ProviderGitHub}, registry.Names())
}
