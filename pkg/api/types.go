package api

import (
	"github.com/lumenchat/canopy/pkg/tenant"
	"github.com/lumenchat/canopy/pkg/tenantconf"
)

// CreateCustomerRequest is the body of POST /api/customers
type CreateCustomerRequest struct {
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	LegacyConfigPath string `json:"legacy_config_path,omitempty"`
}

// ConfigDocumentResponse is the body of GET /api/customers/{slug}/config
type ConfigDocumentResponse struct {
	Slug   string `json:"slug"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

// PutConfigRequest is the body of PUT /api/customers/{slug}/config and
// POST /api/customers/{slug}/config/validate
type PutConfigRequest struct {
	Text string `json:"text"`
}

// ValidationResponse reports strict-validation findings for a document
type ValidationResponse struct {
	Valid  bool               `json:"valid"`
	Issues []tenantconf.Issue `json:"issues"`
}

// CreateUserRequest is the body of POST /api/users
type CreateUserRequest struct {
	Email    string      `json:"email"`
	FullName string      `json:"full_name,omitempty"`
	Role     tenant.Role `json:"role,omitempty"`
}

// CheckActionRequest is the body of POST /api/users/{id}/actions/check.
// CurrentCount overrides the live resource count when set; when omitted the
// server counts the action's resource itself.
type CheckActionRequest struct {
	Action       string `json:"action"`
	CurrentCount *int   `json:"current_count,omitempty"`
}
