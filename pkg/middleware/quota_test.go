package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenchat/canopy/pkg/auth"
	"github.com/lumenchat/canopy/pkg/permissions"
	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
)

type quotaFixture struct {
	store    *tenant.MemoryStore
	resolver *tenantconf.Resolver
	manager  *auth.Manager
	customer *tenant.Customer
}

func newQuotaFixture(t *testing.T, configText string) *quotaFixture {
	t.Helper()
	store := tenant.NewMemoryStore()
	customer := &tenant.Customer{Name: "acme", Slug: "acme", ConfigText: configText}
	require.NoError(t, store.CreateCustomer(context.Background(), customer))
	return &quotaFixture{
		store:    store,
		resolver: tenantconf.NewResolver(store),
		manager:  auth.NewManager("secret", time.Hour),
		customer: customer,
	}
}

func (f *quotaFixture) request(t *testing.T, role tenant.Role, action permissions.Action) *httptest.ResponseRecorder {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	sessionMW := NewSessionMiddleware(f.manager, false)
	tenantMW := NewTenantMiddleware(f.store)
	quotaMW := NewQuotaMiddleware(f.resolver, f.store)
	handler := sessionMW.Handler(tenantMW.Handler(quotaMW.Enforce(action)(next)))

	token, err := f.manager.IssueToken(&tenant.User{ID: 1, CustomerSlug: "acme", Role: role})
	require.NoError(t, err)

	r := httptest.NewRequest("POST", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

func TestEnforceAllowsWithinLimits(t *testing.T) {
	f := newQuotaFixture(t, "")
	w := f.request(t, tenant.RoleAdmin, permissions.ActionCreateAgent)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestEnforceDeniesAtLimit(t *testing.T) {
	f := newQuotaFixture(t, "[limits]\nmax_agents = 2\n")
	f.store.SetResourceCount(f.customer.ID, tenant.ResourceAgents, 2)

	w := f.request(t, tenant.RoleAdmin, permissions.ActionCreateAgent)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "2")
}

func TestEnforceDeniesWithoutCapability(t *testing.T) {
	f := newQuotaFixture(t, "[features]\nagents = false\n")
	w := f.request(t, tenant.RoleUser, permissions.ActionCreateAgent)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "no permission")
}

func TestEnforceCountsUsersLive(t *testing.T) {
	f := newQuotaFixture(t, "[limits]\nmax_users = 1\n")
	require.NoError(t, f.store.CreateUser(context.Background(), &tenant.User{CustomerID: f.customer.ID, Email: "a@acme.test"}))

	w := f.request(t, tenant.RoleAdmin, permissions.ActionCreateUser)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestEnforceCountErrorIs500(t *testing.T) {
	f := newQuotaFixture(t, "")
	f.store.FailCounts(f.customer.ID, assert.AnError)

	w := f.request(t, tenant.RoleAdmin, permissions.ActionCreateAgent)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestEnforceUncappedActionSkipsCount(t *testing.T) {
	f := newQuotaFixture(t, "")
	// counting is broken, but create_team has no limit so it is never consulted
	f.store.FailCounts(f.customer.ID, assert.AnError)

	w := f.request(t, tenant.RoleAdmin, permissions.ActionCreateTeam)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestEnforceWithoutContext(t *testing.T) {
	f := newQuotaFixture(t, "")
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handler := NewQuotaMiddleware(f.resolver, f.store).Enforce(permissions.ActionCreateAgent)(next)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("POST", "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTenantMiddlewareDeletedTenant(t *testing.T) {
	f := newQuotaFixture(t, "")
	require.NoError(t, f.store.SoftDeleteCustomer(context.Background(), f.customer.ID))

	w := f.request(t, tenant.RoleAdmin, permissions.ActionCreateAgent)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "no longer active")
}
