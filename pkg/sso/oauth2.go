package sso

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
)

// OAuth2Provider implements SSO against plain OAuth2 providers that expose a
// userinfo endpoint but no OIDC discovery document.
type OAuth2Provider struct {
	config       *ProviderConfig
	oauth2Config *oauth2.Config
}

// NewOAuth2Provider creates a new OAuth2 provider
func NewOAuth2Provider(config *ProviderConfig) (*OAuth2Provider, error) {
	if config.OAuth2Config == nil {
		return nil, fmt.Errorf("oauth2 config is required")
	}

	oauth2Cfg := &oauth2.Config{
		ClientID:     config.OAuth2Config.ClientID,
		ClientSecret: config.OAuth2Config.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  config.OAuth2Config.AuthURL,
			TokenURL: config.OAuth2Config.TokenURL,
		},
		RedirectURL: config.OAuth2Config.RedirectURL,
		Scopes:      config.OAuth2Config.Scopes,
	}

	return &OAuth2Provider{
		config:       config,
		oauth2Config: oauth2Cfg,
	}, nil
}

// Type returns the provider type
func (p *OAuth2Provider) Type() ProviderType {
	return ProviderTypeOAuth2
}

// Name returns the provider name
func (p *OAuth2Provider) Name() ProviderName {
	return p.config.Name
}

// InitiateLogin redirects to the OAuth2 authorization endpoint
func (p *OAuth2Provider) InitiateLogin(w http.ResponseWriter, r *http.Request, state string) error {
	authURL := p.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, authURL, http.StatusFound)
	return nil
}

// HandleCallback exchanges the authorization code and fetches userinfo
func (p *OAuth2Provider) HandleCallback(r *http.Request) (*Identity, error) {
	code := r.URL.Query().Get("code")
	if code == "" {
		return nil, fmt.Errorf("missing authorization code")
	}

	ctx := r.Context()
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	userInfo, err := p.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	identity := mapIdentity(userInfo, p.config.Attributes, p.config.Name)
	if identity.ExternalID == "" {
		return nil, fmt.Errorf("missing user ID in userinfo response")
	}
	if identity.Email == "" {
		return nil, fmt.Errorf("missing email in userinfo response")
	}
	return identity, nil
}

// fetchUserInfo fetches and decodes the userinfo endpoint
func (p *OAuth2Provider) fetchUserInfo(ctx context.Context, token *oauth2.Token) (map[string]interface{}, error) {
	if p.config.OAuth2Config.UserInfoURL == "" {
		return nil, fmt.Errorf("user_info_url is required")
	}

	client := p.oauth2Config.Client(ctx, token)
	resp, err := client.Get(p.config.OAuth2Config.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("user info request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var userInfo map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return userInfo, nil
}

// ValidateConfig validates the OAuth2 configuration
func (p *OAuth2Provider) ValidateConfig() error {
	cfg := p.config.OAuth2Config
	if cfg == nil {
		return fmt.Errorf("oauth2 config is required")
	}
	if cfg.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if cfg.ClientSecret == "" {
		return fmt.Errorf("client_secret is required")
	}
	if cfg.AuthURL == "" {
		return fmt.Errorf("auth_url is required")
	}
	if cfg.TokenURL == "" {
		return fmt.Errorf("token_url is required")
	}
	if cfg.UserInfoURL == "" {
		return fmt.Errorf("user_info_url is required")
	}
	if cfg.RedirectURL == "" {
		return fmt.Errorf("redirect_url is required")
	}
	if len(cfg.Scopes) == 0 {
		return fmt.Errorf("scopes are required")
	}
	return nil
}

// mapIdentity applies an attribute mapping to raw provider claims
func mapIdentity(claims map[string]interface{}, attrs AttributeMap, provider ProviderName) *Identity {
	identity := &Identity{
		Provider:   provider,
		Attributes: make(map[string]string),
	}

	for k, v := range claims {
		if str, ok := v.(string); ok {
			identity.Attributes[k] = str
		}
	}

	identity.ExternalID = getStringValue(claims, attrs.UserID)
	identity.Email = getStringValue(claims, attrs.Email)
	identity.FullName = getStringValue(claims, attrs.FullName)
	identity.FirstName = getStringValue(claims, attrs.FirstName)
	identity.LastName = getStringValue(claims, attrs.LastName)
	if attrs.Groups != "" {
		identity.Groups = getArrayValue(claims, attrs.Groups)
	}
	return identity
}

func getStringValue(data map[string]interface{}, key string) string {
	if key == "" {
		return ""
	}
	switch v := data[key].(type) {
	case string:
		return v
	case float64:
		// numeric user IDs come back as JSON numbers
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}

func getArrayValue(data map[string]interface{}, key string) []string {
	if key == "" {
		return nil
	}
	arr, ok := data[key].([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(arr))
	for _, item := range arr {
		if str, ok := item.(string); ok {
			result = append(result, str)
		}
	}
	return result
}
