package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite. It is intended for single-node
// and development deployments; production uses PostgresStore.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) a SQLite database file
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	// SQLite handles one writer at a time
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// DB exposes the underlying connection for health checks
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			config_text TEXT NOT NULL DEFAULT '',
			legacy_config_path TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			deleted_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			email TEXT NOT NULL,
			full_name TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT 'USER',
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (customer_id, email)
		)`,
		`CREATE TABLE IF NOT EXISTS agents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS collections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			collection_id INTEGER REFERENCES collections(id),
			filename TEXT NOT NULL,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite migration failed: %w", err)
		}
	}
	return nil
}

// isSQLiteUniqueViolation reports whether err is a unique constraint failure
func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// CreateCustomer creates a new customer record
func (s *SQLiteStore) CreateCustomer(ctx context.Context, customer *Customer) error {
	if customer.Status == "" {
		customer.Status = CustomerStatusActive
	}
	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (name, slug, config_text, legacy_config_path, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		customer.Name, customer.Slug, customer.ConfigText, customer.LegacyConfigPath,
		customer.Status, now, now)
	if isSQLiteUniqueViolation(err) {
		return &AlreadyExistsError{Entity: "customer", Key: customer.Slug}
	}
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get customer id: %w", err)
	}
	customer.ID = id
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return nil
}

// GetCustomer retrieves a customer by ID
func (s *SQLiteStore) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, config_text, legacy_config_path, status, created_at, updated_at, deleted_at
		 FROM customers WHERE id = ?`, id)
	return scanSQLiteCustomer(row, fmt.Sprintf("id=%d", id))
}

// FindActiveCustomerBySlug retrieves an active customer by slug
func (s *SQLiteStore) FindActiveCustomerBySlug(ctx context.Context, slug string) (*Customer, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, config_text, legacy_config_path, status, created_at, updated_at, deleted_at
		 FROM customers WHERE slug = ? AND status = 'active' AND deleted_at IS NULL`, slug)
	return scanSQLiteCustomer(row, slug)
}

// ListCustomers lists all customers, most recent first
func (s *SQLiteStore) ListCustomers(ctx context.Context) ([]*Customer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug, config_text, legacy_config_path, status, created_at, updated_at, deleted_at
		 FROM customers ORDER BY created_at DESC`)
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

// UpdateConfigText replaces a customer's stored configuration document
func (s *SQLiteStore) UpdateConfigText(ctx context.Context, id int64, text string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE customers SET config_text = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		text, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update config text: %w", err)
	}
	return requireRowAffected(result, id)
}

// SoftDeleteCustomer marks a customer as deleted
func (s *SQLiteStore) SoftDeleteCustomer(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx,
		`UPDATE customers SET status = 'deleted', deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	return requireRowAffected(result, id)
}

// CreateUser creates a new user record
func (s *SQLiteStore) CreateUser(ctx context.Context, user *User) error {
	if user.Role == "" {
		user.Role = RoleUser
	}
	user.IsActive = true
	now := time.Now().UTC()

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (customer_id, email, full_name, role, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.CustomerID, user.Email, user.FullName, user.Role, user.IsActive, now)
	if isSQLiteUniqueViolation(err) {
		return &AlreadyExistsError{Entity: "user", Key: user.Email}
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	return nil
}

// FindUserByID retrieves an active user by ID
func (s *SQLiteStore) FindUserByID(ctx context.Context, id int64) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.customer_id, c.slug, u.email, u.full_name, u.role, u.is_active, u.created_at
		 FROM users u JOIN customers c ON u.customer_id = c.id
		 WHERE u.id = ? AND u.is_active = 1`, id).Scan(
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
func (s *SQLiteStore) FindUserByEmail(ctx context.Context, customerID int64, email string) (*User, error) {
	user := &User{}
	err := s.db.QueryRowContext(ctx,
		`SELECT u.id, u.customer_id, c.slug, u.email, u.full_name, u.role, u.is_active, u.created_at
		 FROM users u JOIN customers c ON u.customer_id = c.id
		 WHERE u.customer_id = ? AND u.email = ? AND u.is_active = 1`, customerID, email).Scan(
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
func (s *SQLiteStore) CountResource(ctx context.Context, customerID int64, resource Resource) (int, error) {
	var query string
	switch resource {
	case ResourceUsers:
		query = `SELECT COUNT(*) FROM users WHERE customer_id = ? AND is_active = 1`
	case ResourceAgents:
		query = `SELECT COUNT(*) FROM agents WHERE customer_id = ?`
	case ResourceCollections:
		query = `SELECT COUNT(*) FROM collections WHERE customer_id = ?`
	case ResourceStorageMB:
		query = `SELECT COALESCE(SUM(size_bytes), 0) / (1024 * 1024) FROM files WHERE customer_id = ?`
	default:
		return 0, fmt.Errorf("unknown resource: %s", resource)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, customerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", resource, err)
	}
	return count, nil
}

func scanSQLiteCustomer(row *sql.Row, key string) (*Customer, error) {
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

func requireRowAffected(result sql.Result, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return &NotFoundError{Entity: "customer", Key: fmt.Sprintf("id=%d", id)}
	}
	return nil
}
