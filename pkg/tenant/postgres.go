package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres opens a PostgreSQL connection pool and verifies connectivity
func OpenPostgres(ctx context.Context, url string, maxConns int) (*PostgresStore, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return NewPostgresStore(db), nil
}

// DB exposes the underlying connection pool for health checks
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Close closes the underlying connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Migrate creates the schema if it does not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			config_text TEXT NOT NULL DEFAULT '',
			legacy_config_path TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			email TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'USER',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (customer_id, email)
		)`,
		`CREATE TABLE IF NOT EXISTS agents (
			id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS collections (
			id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			id BIGSERIAL PRIMARY KEY,
			customer_id BIGINT NOT NULL REFERENCES customers(id),
			collection_id BIGINT REFERENCES collections(id),
			filename TEXT NOT NULL,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_customer ON users(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_agents_customer ON agents(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_collections_customer ON collections(customer_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// CreateCustomer creates a new customer record
func (s *PostgresStore) CreateCustomer(ctx context.Context, customer *Customer) error {
	if customer.Status == "" {
		customer.Status = CustomerStatusActive
	}

	query := `
		INSERT INTO customers (name, slug, config_text, legacy_config_path, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowContext(ctx, query,
		customer.Name, customer.Slug, customer.ConfigText, customer.LegacyConfigPath, customer.Status).
		Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if isPQUniqueViolation(err) {
		return &AlreadyExistsError{Entity: "customer", Key: customer.Slug}
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	return nil
}

// isPQUniqueViolation reports whether err is a postgres unique_violation
func isPQUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// GetCustomer retrieves a customer by ID
func (s *PostgresStore) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	query := `
		SELECT id, name, slug, config_text, legacy_config_path, status, created_at, updated_at, deleted_at
		FROM customers
		WHERE id = $1
	`
	return s.scanCustomer(s.db.QueryRowContext(ctx, query, id), fmt.Sprintf("id=%d", id))
}

// FindActiveCustomerBySlug retrieves an active customer by slug. Soft-deleted
// customers are treated as missing.
func (s *PostgresStore) FindActiveCustomerBySlug(ctx context.Context, slug string) (*Customer, error) {
	query := `
		SELECT id, name, slug, config_text, legacy_config_path, status, created_at, updated_at, deleted_at
		FROM customers
		WHERE slug = $1 AND status = 'active' AND deleted_at IS NULL
	`
	return s.scanCustomer(s.db.QueryRowContext(ctx, query, slug), slug)
}

// ListCustomers lists all customers, most recent first
func (s *PostgresStore) ListCustomers(ctx context.Context) ([]*Customer, error) {
	query := `
		SELECT id, name, slug, config_text, legacy_config_path, status, created_at, updated_at, deleted_at
		FROM customers
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		customer := &Customer{}
		var deletedAt sql.NullTime
		if err := rows.Scan(
			&customer.ID, &customer.Name, &customer.Slug, &customer.ConfigText,
			&customer.LegacyConfigPath, &customer.Status, &customer.CreatedAt,
			&customer.UpdatedAt, &deletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		if deletedAt.Valid {
			t := deletedAt.Time
			customer.DeletedAt = &t
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

// UpdateConfigText replaces a customer's stored configuration document.
// The new content fully replaces the old; callers must invalidate the
// resolver cache afterwards.
func (s *PostgresStore) UpdateConfigText(ctx context.Context, id int64, text string) error {
	query := `
		UPDATE customers
		SET config_text = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, text, id)
	if err != nil {
		return fmt.Errorf("failed to update config text: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &NotFoundError{Entity: "customer", Key: fmt.Sprintf("id=%d", id)}
	}
	return nil
}

// SoftDeleteCustomer marks a customer as deleted without removing the record
func (s *PostgresStore) SoftDeleteCustomer(ctx context.Context, id int64) error {
	query := `
		UPDATE customers
		SET status = 'deleted', deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &NotFoundError{Entity: "customer", Key: fmt.Sprintf("id=%d", id)}
	}
	return nil
}

// CreateUser creates a new user record
func (s *PostgresStore) CreateUser(ctx context.Context, user *User) error {
	if user.Role == "" {
		user.Role = RoleUser
	}
	user.IsActive = true

	query := `
		INSERT INTO users (customer_id, email, full_name, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query,
		user.CustomerID, user.Email, user.FullName, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt)
	if isPQUniqueViolation(err) {
		return &AlreadyExistsError{Entity: "user", Key: user.Email}
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByID retrieves an active user by ID, joined with the customer slug
func (s *PostgresStore) FindUserByID(ctx context.Context, id int64) (*User, error) {
	query := `
		SELECT u.id, u.customer_id, c.slug, u.email, u.full_name, u.role, u.is_active, u.created_at
		FROM users u
		JOIN customers c ON u.customer_id = c.id
		WHERE u.id = $1 AND u.is_active = TRUE
	`
	user := &User{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.CustomerID, &user.CustomerSlug, &user.Email,
		&user.FullName, &user.Role, &user.IsActive, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "user", Key: fmt.Sprintf("id=%d", id)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByEmail retrieves an active user by email within a customer account
func (s *PostgresStore) FindUserByEmail(ctx context.Context, customerID int64, email string) (*User, error) {
	query := `
		SELECT u.id, u.customer_id, c.slug, u.email, u.full_name, u.role, u.is_active, u.created_at
		FROM users u
		JOIN customers c ON u.customer_id = c.id
		WHERE u.customer_id = $1 AND u.email = $2 AND u.is_active = TRUE
	`
	user := &User{}
	err := s.db.QueryRowContext(ctx, query, customerID, email).Scan(
		&user.ID, &user.CustomerID, &user.CustomerSlug, &user.Email,
		&user.FullName, &user.Role, &user.IsActive, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "user", Key: email}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CountResource returns the current count of a resource for a customer
func (s *PostgresStore) CountResource(ctx context.Context, customerID int64, resource Resource) (int, error) {
	var query string
	switch resource {
	case ResourceUsers:
		query = `SELECT COUNT(*) FROM users WHERE customer_id = $1 AND is_active = TRUE`
	case ResourceAgents:
		query = `SELECT COUNT(*) FROM agents WHERE customer_id = $1`
	case ResourceCollections:
		query = `SELECT COUNT(*) FROM collections WHERE customer_id = $1`
	case ResourceStorageMB:
		query = `SELECT COALESCE(SUM(size_bytes), 0) / (1024 * 1024) FROM files WHERE customer_id = $1`
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, customerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", resource, err)
	}
	return count, nil
}

// scanCustomer scans a single customer row, mapping sql.ErrNoRows to NotFoundError
func (s *PostgresStore) scanCustomer(row *sql.Row, key string) (*Customer, error) {
	customer := &Customer{}
	var deletedAt sql.NullTime
	err := row.Scan(
		&customer.ID, &customer.Name, &customer.Slug, &customer.ConfigText,
		&customer.LegacyConfigPath, &customer.Status, &customer.CreatedAt,
		&customer.UpdatedAt, &deletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Entity: "customer", Key: key}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		customer.DeletedAt = &t
	}
	return customer, nil
}
