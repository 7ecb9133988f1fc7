package middleware

import (
	"net/http"

	"github.com/lumenchat/canopy/pkg/contextkeys"
	"github.com/lumenchat/canopy/pkg/httputil"
	"github.com/lumenchat/canopy/pkg/tenant"
)

// TenantMiddleware resolves the authenticated session's tenant and attaches
// the customer record to the request context.
type TenantMiddleware struct {
	store tenant.Store
}

// NewTenantMiddleware creates tenant-scoping middleware
func NewTenantMiddleware(store tenant.Store) *TenantMiddleware {
	return &TenantMiddleware{store: store}
}

// Handler wraps an HTTP handler with tenant resolution.
// MUST run after SessionMiddleware: it reads the session's customer slug.
func (m *TenantMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := GetSession(r)
		if session == nil {
			httputil.WriteUnauthorized(w, "authentication required")
			return
		}

		customer, err := m.store.FindActiveCustomerBySlug(r.Context(), session.CustomerSlug)
		if err != nil {
			if tenant.IsNotFound(err) {
				// the tenant was deleted out from under an otherwise valid session
				httputil.WriteUnauthorized(w, "tenant no longer active")
				return
			}
			httputil.WriteInternalError(w, err)
			return
		}

		ctx := contextkeys.WithCustomer(r.Context(), customer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCustomer extracts the tenant's customer record from a request
func GetCustomer(r *http.Request) *tenant.Customer {
	value := r.Context().Value(contextkeys.CustomerKey)
	if value == nil {
		return nil
	}
	customer, ok := value.(*tenant.Customer)
	if !ok {
		return nil
	}
	return customer
}
