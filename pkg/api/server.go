package api

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/lumenchat/canopy/pkg/auth"
	"github.com/lumenchat/canopy/pkg/httputil"
	"github.com/lumenchat/canopy/pkg/middleware"
	"github.com/lumenchat/canopy/pkg/observability"
	"github.com/lumenchat/canopy/pkg/permissions"
	"github.com/lumenchat/canopy/pkg/sso"
	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
	"github.com/lumenchat/canopy/pkg/webhook"
)

// Server is the control-plane HTTP API
type Server struct {
	store    tenant.Store
	resolver *tenantconf.Resolver
	manager  *auth.Manager
	logger   *observability.Logger
	router   *mux.Router
	sso      *sso.Handlers
	notifier *webhook.Notifier
}

// ServerOption configures a Server
type ServerOption func(*Server)

// WithLogger sets the structured logger
func WithLogger(logger *observability.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// WithSSOHandlers mounts the SSO login routes on the server
func WithSSOHandlers(handlers *sso.Handlers) ServerOption {
	return func(s *Server) { s.sso = handlers }
}

// WithNotifier emits tenant webhooks for config updates and deletions
func WithNotifier(notifier *webhook.Notifier) ServerOption {
	return func(s *Server) { s.notifier = notifier }
}

// NewServer creates the API server and sets up its routes
func NewServer(store tenant.Store, resolver *tenantconf.Resolver, manager *auth.Manager, opts ...ServerOption) *Server {
	s := &Server{
		store:    store,
		resolver: resolver,
		manager:  manager,
		router:   mux.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = observability.NewLogger(observability.InfoLevel, os.Stdout)
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes.
//
// Provisioning routes (customer and configuration management) are expected
// to be reachable only from the operator network and carry no session check.
// Tenant routes require a session; mutating tenant routes additionally go
// through quota enforcement.
func (s *Server) setupRoutes() {
	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.LoggingMiddleware(s.logger))
	s.router.Use(httputil.RecoveryMiddleware(s.logger))

	// Customer provisioning
	s.router.HandleFunc("/api/customers", s.createCustomer).Methods("POST")
	s.router.HandleFunc("/api/customers", s.listCustomers).Methods("GET")
	s.router.HandleFunc("/api/customers/{slug}", s.getCustomer).Methods("GET")
	s.router.HandleFunc("/api/customers/{slug}", s.deleteCustomer).Methods("DELETE")

	// Configuration management
	s.router.HandleFunc("/api/customers/{slug}/config", s.getConfig).Methods("GET")
	s.router.HandleFunc("/api/customers/{slug}/config", s.putConfig).Methods("PUT")
	s.router.HandleFunc("/api/customers/{slug}/config/validate", s.validateConfig).Methods("POST")
	s.router.HandleFunc("/api/customers/{slug}/config/resolved", s.getResolvedConfig).Methods("GET")

	// Session-scoped tenant routes
	sessionMW := middleware.NewSessionMiddleware(s.manager, false)
	tenantMW := middleware.NewTenantMiddleware(s.store)
	quotaMW := middleware.NewQuotaMiddleware(s.resolver, s.store)

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(sessionMW.Handler)
	protected.Use(tenantMW.Handler)

	protected.HandleFunc("/me", s.getMe).Methods("GET")
	protected.HandleFunc("/users/{id}/permissions", s.getUserPermissions).Methods("GET")
	protected.HandleFunc("/users/{id}/actions/check", s.checkAction).Methods("POST")
	protected.Handle("/users",
		quotaMW.Enforce(permissions.ActionCreateUser)(http.HandlerFunc(s.createUser))).Methods("POST")

	// SSO login flows
	if s.sso != nil {
		s.sso.RegisterRoutes(s.router)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
