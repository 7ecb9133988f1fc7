package tenant

import "context"

// Store defines the persistence boundary for customer and user records.
//
// FindActiveCustomerBySlug and FindUserByID return *NotFoundError when the
// record does not exist or has been soft-deleted. Write paths that change a
// customer's configuration document (UpdateConfigText) do not touch the
// resolver cache; callers are responsible for invalidating after a
// successful write.
type Store interface {
	// Customer records
	CreateCustomer(ctx context.Context, customer *Customer) error
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	FindActiveCustomerBySlug(ctx context.Context, slug string) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)
	UpdateConfigText(ctx context.Context, id int64, text string) error
	SoftDeleteCustomer(ctx context.Context, id int64) error

	// User records
	CreateUser(ctx context.Context, user *User) error
	FindUserByID(ctx context.Context, id int64) (*User, error)
	FindUserByEmail(ctx context.Context, customerID int64, email string) (*User, error)

	// CountResource returns the current count of a countable resource for a
	// customer. For ResourceStorageMB the count is total stored megabytes.
	CountResource(ctx context.Context, customerID int64, resource Resource) (int, error)
}
