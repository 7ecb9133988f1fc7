package api

import (
	"net/http"

	"github.com/lumenchat/canopy/pkg/httputil"
	"github.com/lumenchat/canopy/pkg/middleware"
	"github.com/lumenchat/canopy/pkg/tenant"
)

// createUser handles POST /api/users. The quota middleware has already
// checked the create_user capability and the max_users limit by the time
// this handler runs.
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	customer := middleware.GetCustomer(r)

	var req CreateUserRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Email, "email") {
		return
	}

	role := req.Role
	if role == "" {
		role = tenant.RoleUser
	}
	// tenant admins cannot mint cross-tenant administrators
	if role != tenant.RoleUser && role != tenant.RoleAdmin {
		httputil.WriteValidationError(w, "role must be USER or ADMIN")
		return
	}

	user := &tenant.User{
		CustomerID: customer.ID,
		Email:      req.Email,
		FullName:   req.FullName,
		Role:       role,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	s.logger.WithTenant(customer.Slug).WithField("user_id", user.ID).Info("user created")
	httputil.WriteCreated(w, user)
}
