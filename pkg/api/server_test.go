package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumenchat/canopy/pkg/auth"
	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
)

type apiFixture struct {
	store    *tenant.MemoryStore
	resolver *tenantconf.Resolver
	manager  *auth.Manager
	server   *Server
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := tenant.NewMemoryStore()
	resolver := tenantconf.NewResolver(store)
	manager := auth.NewManager("test-secret", time.Hour)
	return &apiFixture{
		store:    store,
		resolver: resolver,
		manager:  manager,
		server:   NewServer(store, resolver, manager),
	}
}

// do sends a request through the full router. A non-empty token is attached
// as a bearer token; a non-nil body is JSON-encoded.
func (f *apiFixture) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, r)
	return w
}

// provisionCustomer creates a customer through the API and returns it
func (f *apiFixture) provisionCustomer(t *testing.T, name, slug string) *tenant.Customer {
	t.Helper()
	w := f.do(t, "POST", "/api/customers", CreateCustomerRequest{Name: name, Slug: slug}, "")
	require.Equal(t, 201, w.Code, w.Body.String())

	customer := &tenant.Customer{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), customer))
	return customer
}

// seedUser creates a user directly in the store and returns a session token
func (f *apiFixture) seedUser(t *testing.T, customer *tenant.Customer, email string, role tenant.Role) (*tenant.User, string) {
	t.Helper()
	user := &tenant.User{CustomerID: customer.ID, Email: email, Role: role}
	require.NoError(t, f.store.CreateUser(context.Background(), user))

	token, err := f.manager.IssueToken(user)
	require.NoError(t, err)
	return user, token
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}
