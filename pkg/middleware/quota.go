package middleware

import (
	"net/http"

	"github.com/lumenchat/canopy/pkg/httputil"
	"github.com/lumenchat/canopy/pkg/permissions"
	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
)

// QuotaMiddleware guards mutating routes with capability and limit checks
// against the tenant's resolved configuration.
type QuotaMiddleware struct {
	resolver *tenantconf.Resolver
	store    tenant.Store
}

// NewQuotaMiddleware creates quota enforcement middleware
func NewQuotaMiddleware(resolver *tenantconf.Resolver, store tenant.Store) *QuotaMiddleware {
	return &QuotaMiddleware{
		resolver: resolver,
		store:    store,
	}
}

// Enforce returns middleware that validates the given action before the
// handler runs. The current resource count is read live from the store for
// limit-capped actions.
//
// MUST run after SessionMiddleware and TenantMiddleware: it reads both the
// session and the customer record from the request context.
func (m *QuotaMiddleware) Enforce(action permissions.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSession(r)
			customer := GetCustomer(r)
			if session == nil || customer == nil {
				httputil.WriteUnauthorized(w, "authentication required")
				return
			}

			cfg, err := m.resolver.Resolve(r.Context(), customer.Slug)
			if err != nil {
				if tenant.IsNotFound(err) {
					httputil.WriteNotFoundError(w, err.Error())
					return
				}
				httputil.WriteInternalError(w, err)
				return
			}

			count := 0
			if resource, capped := action.Resource(); capped {
				count, err = m.store.CountResource(r.Context(), customer.ID, resource)
				if err != nil {
					httputil.WriteInternalError(w, err)
					return
				}
			}

			perms := permissions.Derive(cfg, session.Role)
			if decision := permissions.Validate(perms, action, count); !decision.Allowed {
				httputil.WriteForbidden(w, decision.Reason)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
