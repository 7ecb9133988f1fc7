package api

import (
	"net/http"

	"github.com/lumenchat/canopy/pkg/httputil"
	"github.com/lumenchat/canopy/pkg/middleware"
	"github.com/lumenchat/canopy/pkg/permissions"
	"github.com/lumenchat/canopy/pkg/tenant"
)

// getMe handles GET /api/me, returning the session's user record and the
// permission set derived from the tenant's current configuration.
func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r)
	customer := middleware.GetCustomer(r)

	user, err := s.store.FindUserByID(r.Context(), session.UserID)
	if err != nil {
		if tenant.IsNotFound(err) {
			httputil.WriteUnauthorized(w, "user no longer active")
			return
		}
		httputil.WriteInternalError(w, err)
		return
	}

	cfg, err := s.resolver.Resolve(r.Context(), customer.Slug)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"user":        user,
		"permissions": permissions.Derive(cfg, user.Role),
	})
}

// targetUser loads the user named by the id path variable and enforces the
// access rule shared by the permissions endpoints: the target must belong to
// the requester's tenant, and the requester must be an admin or the target
// themselves. Cross-tenant ids read as not found.
func (s *Server) targetUser(w http.ResponseWriter, r *http.Request) (*tenant.User, bool) {
	session := middleware.GetSession(r)
	customer := middleware.GetCustomer(r)

	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return nil, false
	}

	user, err := s.store.FindUserByID(r.Context(), id)
	if err != nil {
		if tenant.IsNotFound(err) {
			httputil.WriteNotFoundError(w, err.Error())
			return nil, false
		}
		httputil.WriteInternalError(w, err)
		return nil, false
	}
	if user.CustomerID != customer.ID {
		httputil.WriteNotFoundError(w, "user not found")
		return nil, false
	}

	admin := session.Role == tenant.RoleAdmin || session.Role == tenant.RoleSuperUser
	if !admin && session.UserID != user.ID {
		httputil.WriteForbidden(w, "cannot inspect another user's permissions")
		return nil, false
	}
	return user, true
}

// getUserPermissions handles GET /api/users/{id}/permissions
func (s *Server) getUserPermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := s.targetUser(w, r)
	if !ok {
		return
	}
	customer := middleware.GetCustomer(r)

	cfg, err := s.resolver.Resolve(r.Context(), customer.Slug)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}
	httputil.WriteSuccess(w, permissions.Derive(cfg, user.Role))
}

// checkAction handles POST /api/users/{id}/actions/check. The response is
// always 200; denial is data, not an HTTP error.
func (s *Server) checkAction(w http.ResponseWriter, r *http.Request) {
	user, ok := s.targetUser(w, r)
	if !ok {
		return
	}
	customer := middleware.GetCustomer(r)

	var req CheckActionRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequireNonEmpty(w, req.Action, "action") {
		return
	}

	cfg, err := s.resolver.Resolve(r.Context(), customer.Slug)
	if err != nil {
		httputil.WriteInternalError(w, err)
		return
	}

	action := permissions.Action(req.Action)
	count := 0
	switch {
	case req.CurrentCount != nil:
		count = *req.CurrentCount
	default:
		if resource, capped := action.Resource(); capped {
			count, err = s.store.CountResource(r.Context(), customer.ID, resource)
			if err != nil {
				httputil.WriteInternalError(w, err)
				return
			}
		}
	}

	perms := permissions.Derive(cfg, user.Role)
	httputil.WriteSuccess(w, permissions.Validate(perms, action, count))
}
