package sso

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"os"
	"strings"

	"github.com/gorilla/mux"

	"github.com/lumenchat/canopy/pkg/auth"
	"github.com/lumenchat/canopy/pkg/httputil"
	"github.com/lumenchat/canopy/pkg/observability"
	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
)

const stateCookieName = "canopy_sso_state"

// Handlers serves the per-tenant SSO login flows. A provider is usable by a
// tenant only when the tenant's resolved configuration lists it in
// [integrations] allowed_oauth.
type Handlers struct {
	store       tenant.Store
	resolver    *tenantconf.Resolver
	registry    *Registry
	provisioner *Provisioner
	manager     *auth.Manager
	logger      *observability.Logger
}

// NewHandlers creates SSO handlers backed by the given provider registry
func NewHandlers(store tenant.Store, resolver *tenantconf.Resolver, registry *Registry, provisioner *Provisioner, manager *auth.Manager, logger *observability.Logger) *Handlers {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, os.Stdout)
	}
	return &Handlers{
		store:       store,
		resolver:    resolver,
		registry:    registry,
		provisioner: provisioner,
		manager:     manager,
		logger:      logger,
	}
}

// RegisterRoutes registers the SSO routes on a router. The callback route
// carries no tenant segment: the redirect URI registered at the identity
// provider is fixed per deployment, so the tenant rides in the state cookie
// set at login time instead.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/sso/{tenant}/{provider}/login", h.initiateLogin).Methods("GET")
	router.HandleFunc("/auth/sso/{provider}/callback", h.handleCallback).Methods("GET", "POST")
	router.HandleFunc("/sso/providers", h.listProviders).Methods("GET")
	router.HandleFunc("/sso/metadata/{provider}", h.samlMetadata).Methods("GET")
}

// tenantProvider resolves the tenant, checks the allowed_oauth gate, and
// returns the provider instance.
func (h *Handlers) tenantProvider(w http.ResponseWriter, r *http.Request, slug string, providerName ProviderName) (*tenant.Customer, Provider, bool) {
	customer, err := h.store.FindActiveCustomerBySlug(r.Context(), slug)
	if err != nil {
		if tenant.IsNotFound(err) {
			httputil.WriteNotFoundError(w, err.Error())
			return nil, nil, false
		}
		httputil.WriteInternalError(w, err)
		return nil, nil, false
	}

	cfg, err := h.resolver.Resolve(r.Context(), slug)
	if err != nil {
		if tenant.IsNotFound(err) {
			httputil.WriteNotFoundError(w, err.Error())
			return nil, nil, false
		}
		httputil.WriteInternalError(w, err)
		return nil, nil, false
	}

	if !cfg.Integrations.OAuthAllowed(string(providerName)) {
		httputil.WriteForbidden(w, "sso provider not allowed for this tenant")
		return nil, nil, false
	}

	provider := h.registry.Get(providerName)
	if provider == nil {
		httputil.WriteNotFoundError(w, "sso provider not configured: "+string(providerName))
		return nil, nil, false
	}
	return customer, provider, true
}

// initiateLogin handles GET /auth/sso/{tenant}/{provider}/login
func (h *Handlers) initiateLogin(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	customer, provider, ok := h.tenantProvider(w, r, vars["tenant"], ProviderName(vars["provider"]))
	if !ok {
		return
	}

	state, err := newStateToken()
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	// the cookie remembers which tenant started the login; the callback
	// route has no tenant of its own
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    customer.Slug + ":" + state,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	h.logger.WithTenant(customer.Slug).
		WithField("provider", string(provider.Name())).
		Info("initiating sso login")

	if err := provider.InitiateLogin(w, r, state); err != nil {
		httputil.WriteInternalError(w, err)
	}
}

// handleCallback handles GET/POST /auth/sso/{provider}/callback. On success
// it responds with a session token and the provisioned user.
func (h *Handlers) handleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil {
		httputil.WriteBadRequest(w, "missing state cookie")
		return
	}
	slug, state, found := strings.Cut(stateCookie.Value, ":")
	if !found || slug == "" || state == "" {
		httputil.WriteBadRequest(w, "malformed state cookie")
		return
	}

	customer, provider, ok := h.tenantProvider(w, r, slug, ProviderName(mux.Vars(r)["provider"]))
	if !ok {
		return
	}

	stateParam := r.URL.Query().Get("state")
	if r.Method == http.MethodPost {
		// SAML carries state in RelayState
		stateParam = r.FormValue("RelayState")
	}
	if stateParam == "" || stateParam != state {
		httputil.WriteBadRequest(w, "invalid state parameter")
		return
	}

	identity, err := provider.HandleCallback(r)
	if err != nil {
		h.logger.WithTenant(customer.Slug).WithError(err).Warn("sso callback failed")
		httputil.WriteUnauthorized(w, "authentication failed: "+err.Error())
		return
	}

	user, err := h.provisioner.Provision(r.Context(), customer, identity)
	if err != nil {
		h.logger.WithTenant(customer.Slug).WithError(err).Warn("sso provisioning failed")
		httputil.WriteForbidden(w, err.Error())
		return
	}

	token, err := h.manager.IssueToken(user)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	// the state cookie is single-use
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, MaxAge: -1, Path: "/"})

	h.logger.WithTenant(customer.Slug).
		WithFields(map[string]interface{}{
			"provider": string(provider.Name()),
			"user_id":  user.ID,
		}).
		Info("sso login completed")

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// listProviders handles GET /sso/providers
func (h *Handlers) listProviders(w http.ResponseWriter, r *http.Request) {
	names := h.registry.Names()
	providers := make([]map[string]string, 0, len(names))
	for _, name := range names {
		providers = append(providers, map[string]string{
			"name": string(name),
			"type": string(h.registry.Get(name).Type()),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"providers": providers})
}

// samlMetadata handles GET /sso/metadata/{provider}
func (h *Handlers) samlMetadata(w http.ResponseWriter, r *http.Request) {
	providerName := ProviderName(mux.Vars(r)["provider"])
	provider := h.registry.Get(providerName)
	if provider == nil {
		httputil.WriteNotFoundError(w, "sso provider not configured: "+string(providerName))
		return
	}

	samlProvider, ok := provider.(*SAMLProvider)
	if !ok {
		httputil.WriteBadRequest(w, "provider is not SAML")
		return
	}

	metadata, err := samlProvider.Metadata()
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Write(metadata)
}

// newStateToken generates a random CSRF state token
func newStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
