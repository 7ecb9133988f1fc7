package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/lumenchat/canopy/pkg/httputil"
	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
	"github.com/lumenchat/canopy/pkg/webhook"
)

// getConfig handles GET /api/customers/{slug}/config. It returns the raw
// document from the same source order the resolver uses: inline text, then
// the legacy file, then a synthesized default.
func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	customer, ok := s.findCustomer(w, r)
	if !ok {
		return
	}

	text, source := s.rawDocument(customer)
	httputil.WriteSuccess(w, ConfigDocumentResponse{
		Slug:   customer.Slug,
		Source: source,
		Text:   text,
	})
}

// rawDocument mirrors the resolver's source selection for display purposes
func (s *Server) rawDocument(customer *tenant.Customer) (string, string) {
	if strings.TrimSpace(customer.ConfigText) != "" {
		return customer.ConfigText, "inline"
	}
	if customer.LegacyConfigPath != "" {
		if data, err := os.ReadFile(customer.LegacyConfigPath); err == nil {
			return string(data), "legacy_file"
		}
	}
	return tenantconf.DefaultDocument(customer.Slug), "default"
}

// putConfig handles PUT /api/customers/{slug}/config. Writes are strict:
// a document with validation errors is rejected before anything is
// persisted. Lenient parsing still governs reads, so documents written
// through other channels stay resolvable.
func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	customer, ok := s.findCustomer(w, r)
	if !ok {
		return
	}

	var req PutConfigRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	issues := tenantconf.ValidateDocument(req.Text)
	if tenantconf.HasErrors(issues) {
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
			Valid:  false,
			Issues: issues,
		})
		return
	}

	if err := s.store.UpdateConfigText(r.Context(), customer.ID, req.Text); err != nil {
		if tenant.IsNotFound(err) {
			httputil.WriteNotFoundError(w, err.Error())
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}
	// invalidate only after the write has succeeded
	s.resolver.Invalidate(customer.Slug)
	if s.notifier != nil {
		// resolves post-invalidation, so the notification reflects the new document
		s.notifier.Notify(r.Context(), customer.Slug, webhook.EventConfigUpdated, nil)
	}

	s.logger.WithTenant(customer.Slug).Info("tenant configuration updated")
	httputil.WriteSuccess(w, ValidationResponse{Valid: true, Issues: issues})
}

// validateConfig handles POST /api/customers/{slug}/config/validate. It is a
// pure pre-flight: nothing is persisted and the cache is untouched.
func (s *Server) validateConfig(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.findCustomer(w, r); !ok {
		return
	}

	var req PutConfigRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	issues := tenantconf.ValidateDocument(req.Text)
	httputil.WriteSuccess(w, ValidationResponse{
		Valid:  !tenantconf.HasErrors(issues),
		Issues: issues,
	})
}

// getResolvedConfig handles GET /api/customers/{slug}/config/resolved,
// returning the fully merged configuration the chat backend consumes.
func (s *Server) getResolvedConfig(w http.ResponseWriter, r *http.Request) {
	slug, ok := httputil.ParsePathStringOrError(w, r, "slug")
	if !ok {
		return
	}

	cfg, err := s.resolver.Resolve(r.Context(), slug)
	if err != nil {
		if tenant.IsNotFound(err) {
			httputil.WriteNotFoundError(w, err.Error())
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, cfg)
}
