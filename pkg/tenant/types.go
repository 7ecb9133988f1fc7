package tenant

import (
	"errors"
	"time"
)

// Role represents a user's role within a customer account
type Role string

const (
	RoleUser      Role = "USER"       // Lowest tier, feature flags apply
	RoleAdmin     Role = "ADMIN"      // Can manage users and settings
	RoleSuperUser Role = "SUPER_USER" // Cross-tenant administrator
)

// Valid reports whether the role is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperUser:
		return true
	}
	return false
}

// CustomerStatus represents customer lifecycle status
type CustomerStatus string

const (
	CustomerStatusActive  CustomerStatus = "active"
	CustomerStatusDeleted CustomerStatus = "deleted"
)

// Customer represents a tenant account
type Customer struct {
	ID               int64          `json:"id"`
	Name             string         `json:"name"`
	Slug             string         `json:"slug"`
	ConfigText       string         `json:"config_text,omitempty"`
	LegacyConfigPath string         `json:"legacy_config_path,omitempty"`
	Status           CustomerStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        *time.Time     `json:"deleted_at,omitempty"`
}

// User represents a user within a customer account
type User struct {
	ID           int64     `json:"id"`
	CustomerID   int64     `json:"customer_id"`
	CustomerSlug string    `json:"customer_slug"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Resource identifies a countable per-customer resource
type Resource string

const (
	ResourceUsers       Resource = "users"
	ResourceAgents      Resource = "agents"
	ResourceCollections Resource = "collections"
	ResourceStorageMB   Resource = "storage_mb"
)

// NotFoundError indicates that a customer or user record does not exist or is
// not active. It is the only storage error that propagates to API callers.
type NotFoundError struct {
	Entity string // "customer" or "user"
	Key    string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found: " + e.Key
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// AlreadyExistsError indicates a uniqueness violation: a duplicate customer
// slug, or a duplicate user email within a customer account.
type AlreadyExistsError struct {
	Entity string
	Key    string
}

func (e *AlreadyExistsError) Error() string {
	return e.Entity + " already exists: " + e.Key
}

// IsAlreadyExists checks if an error is an AlreadyExistsError
func IsAlreadyExists(err error) bool {
	var ae *AlreadyExistsError
	return errors.As(err, &ae)
}
