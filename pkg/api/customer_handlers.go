package api

import (
	"net/http"

	"github.com/lumenchat/canopy/pkg/httputil"
	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
	"github.com/lumenchat/canopy/pkg/webhook"
)

// createCustomer handles POST /api/customers. New customers start with a
// scaffolded configuration document rendered from the template profile.
func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return
	}
	if !httputil.RequireSlug(w, req.Slug, "slug") {
		return
	}

	customer := &tenant.Customer{
		Name:             req.Name,
		Slug:             req.Slug,
		ConfigText:       tenantconf.DefaultDocument(req.Slug),
		LegacyConfigPath: req.LegacyConfigPath,
	}
	if err := s.store.CreateCustomer(r.Context(), customer); err != nil {
		if tenant.IsAlreadyExists(err) {
			httputil.WriteConflict(w, "customer slug already exists")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	s.logger.WithTenant(customer.Slug).Info("customer provisioned")
	httputil.WriteCreated(w, customer)
}

// listCustomers handles GET /api/customers
func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.store.ListCustomers(r.Context())
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"customers": customers})
}

// getCustomer handles GET /api/customers/{slug}
func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, ok := s.findCustomer(w, r)
	if !ok {
		return
	}
	httputil.WriteSuccess(w, customer)
}

// deleteCustomer handles DELETE /api/customers/{slug}. The record is kept
// with status deleted; active lookups and session validation stop matching
// it immediately.
func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	customer, ok := s.findCustomer(w, r)
	if !ok {
		return
	}

	if s.notifier != nil {
		// notify while the tenant still resolves; afterwards its webhook URL
		// is gone with it
		s.notifier.Notify(r.Context(), customer.Slug, webhook.EventCustomerDeleted, nil)
	}

	if err := s.store.SoftDeleteCustomer(r.Context(), customer.ID); err != nil {
		if tenant.IsNotFound(err) {
			httputil.WriteNotFoundError(w, err.Error())
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}
	s.resolver.Invalidate(customer.Slug)

	s.logger.WithTenant(customer.Slug).Info("customer soft-deleted")
	httputil.WriteNoContent(w)
}

// findCustomer loads the active customer named by the slug path variable,
// writing the error response itself on failure.
func (s *Server) findCustomer(w http.ResponseWriter, r *http.Request) (*tenant.Customer, bool) {
	slug, ok := httputil.ParsePathStringOrError(w, r, "slug")
	if !ok {
		return nil, false
	}

	customer, err := s.store.FindActiveCustomerBySlug(r.Context(), slug)
	if err != nil {
		if tenant.IsNotFound(err) {
			httputil.WriteNotFoundError(w, err.Error())
			return nil, false
		}
		httputil.WriteInternalError(w, err)
		return nil, false
	}
	return customer, true
}
