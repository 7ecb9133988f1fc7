package tenant

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with in-memory maps. It is used in tests and
// as a stand-in store when no database is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	nextID      int64
	customers   map[int64]*Customer
	users       map[int64]*User
	counts      map[int64]map[Resource]int
	countErrors map[int64]error
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:      1,
		customers:   make(map[int64]*Customer),
		users:       make(map[int64]*User),
		counts:      make(map[int64]map[Resource]int),
		countErrors: make(map[int64]error),
	}
}

// CreateCustomer creates a new customer record
func (s *MemoryStore) CreateCustomer(ctx context.Context, customer *Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.customers {
		if existing.Slug == customer.Slug {
			return &AlreadyExistsError{Entity: "customer", Key: customer.Slug}
		}
	}

	if customer.Status == "" {
		customer.Status = CustomerStatusActive
	}
	customer.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	copied := *customer
	s.customers[customer.ID] = &copied
	return nil
}

// GetCustomer retrieves a customer by ID
func (s *MemoryStore) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, &NotFoundError{Entity: "customer", Key: fmt.Sprintf("id=%d", id)}
	}
	copied := *customer
	return &copied, nil
}

// FindActiveCustomerBySlug retrieves an active customer by slug
func (s *MemoryStore) FindActiveCustomerBySlug(ctx context.Context, slug string) (*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, customer := range s.customers {
		if customer.Slug == slug && customer.Status == CustomerStatusActive && customer.DeletedAt == nil {
			copied := *customer
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Entity: "customer", Key: slug}
}

// ListCustomers lists all customers, most recent first
func (s *MemoryStore) ListCustomers(ctx context.Context) ([]*Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]*Customer, 0, len(s.customers))
	for _, customer := range s.customers {
		copied := *customer
		customers = append(customers, &copied)
	}
	sort.Slice(customers, func(i, j int) bool {
		return customers[i].CreatedAt.After(customers[j].CreatedAt)
	})
	return customers, nil
}

// UpdateConfigText replaces a customer's stored configuration document
func (s *MemoryStore) UpdateConfigText(ctx context.Context, id int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[id]
	if !ok || customer.DeletedAt != nil {
		return &NotFoundError{Entity: "customer", Key: fmt.Sprintf("id=%d", id)}
	}
	customer.ConfigText = text
	customer.UpdatedAt = time.Now().UTC()
	return nil
}

// SoftDeleteCustomer marks a customer as deleted
func (s *MemoryStore) SoftDeleteCustomer(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[id]
	if !ok || customer.DeletedAt != nil {
		return &NotFoundError{Entity: "customer", Key: fmt.Sprintf("id=%d", id)}
	}
	now := time.Now().UTC()
	customer.Status = CustomerStatusDeleted
	customer.DeletedAt = &now
	customer.UpdatedAt = now
	return nil
}

// CreateUser creates a new user record
func (s *MemoryStore) CreateUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customer, ok := s.customers[user.CustomerID]
	if !ok {
		return &NotFoundError{Entity: "customer", Key: fmt.Sprintf("id=%d", user.CustomerID)}
	}
	for _, existing := range s.users {
		if existing.CustomerID == user.CustomerID && existing.Email == user.Email {
			return &AlreadyExistsError{Entity: "user", Key: user.Email}
		}
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	user.ID = s.nextID
	s.nextID++
	user.CustomerSlug = customer.Slug
	user.IsActive = true
	user.CreatedAt = time.Now().UTC()

	copied := *user
	s.users[user.ID] = &copied
	return nil
}

// FindUserByID retrieves an active user by ID
func (s *MemoryStore) FindUserByID(ctx context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok || !user.IsActive {
		return nil, &NotFoundError{Entity: "user", Key: fmt.Sprintf("id=%d", id)}
	}
	copied := *user
	return &copied, nil
}

// FindUserByEmail retrieves an active user by email within a customer account
func (s *MemoryStore) FindUserByEmail(ctx context.Context, customerID int64, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.CustomerID == customerID && user.Email == email && user.IsActive {
			copied := *user
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Entity: "user", Key: email}
}

// CountResource returns the current count of a resource for a customer
func (s *MemoryStore) CountResource(ctx context.Context, customerID int64, resource Resource) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.countErrors[customerID]; err != nil {
		return 0, err
	}
	if resource == ResourceUsers {
		count := 0
		for _, user := range s.users {
			if user.CustomerID == customerID && user.IsActive {
				count++
			}
		}
		return count, nil
	}
	return s.counts[customerID][resource], nil
}

// SetResourceCount seeds a resource count for tests
func (s *MemoryStore) SetResourceCount(customerID int64, resource Resource, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counts[customerID] == nil {
		s.counts[customerID] = make(map[Resource]int)
	}
	s.counts[customerID][resource] = count
}

// FailCounts makes CountResource return the given error for a customer, for tests
func (s *MemoryStore) FailCounts(customerID int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countErrors[customerID] = err
}
