package tenant

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func customerColumns() []string {
	return []string{"id", "name", "slug", "config_text", "legacy_config_path",
		"status", "created_at", "updated_at", "deleted_at"}
}

func TestPostgresCreateCustomer(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).
		WithArgs("Acme Corp", "acme", "", "", string(CustomerStatusActive)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(7), now, now))

	customer := &Customer{Name: "Acme Corp", Slug: "acme"}
	require.NoError(t, store.CreateCustomer(context.Background(), customer))
	assert.Equal(t, int64(7), customer.ID)
	assert.Equal(t, CustomerStatusActive, customer.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateCustomerDuplicateSlug(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO customers")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "customers_slug_key"})

	err := store.CreateCustomer(context.Background(), &Customer{Name: "Acme", Slug: "acme"})
	require.Error(t, err)
	assert.True(t, IsAlreadyExists(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindActiveCustomerBySlug(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers")).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows(customerColumns()).
			AddRow(int64(7), "Acme Corp", "acme", "[ui]\n", "", "active", now, now, nil))

	customer, err := store.FindActiveCustomerBySlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, int64(7), customer.ID)
	assert.Equal(t, "[ui]\n", customer.ConfigText)
	assert.Nil(t, customer.DeletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindActiveCustomerBySlugNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(customerColumns()))

	_, err := store.FindActiveCustomerBySlug(context.Background(), "ghost")
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateConfigText(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE customers")).
		WithArgs("[ui]\ntheme = \"dark\"\n", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdateConfigText(context.Background(), 7, "[ui]\ntheme = \"dark\"\n")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateConfigTextDeletedCustomer(t *testing.T) {
	store, mock := newMockStore(t)

	// the WHERE clause excludes soft-deleted rows, so nothing is updated
	mock.ExpectExec(regexp.QuoteMeta("UPDATE customers")).
		WithArgs("[ui]\n", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateConfigText(context.Background(), 7, "[ui]\n")
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateUserDuplicateEmail(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_customer_id_email_key"})

	err := store.CreateUser(context.Background(), &User{CustomerID: 7, Email: "jo@acme.test"})
	require.Error(t, err)
	assert.True(t, IsAlreadyExists(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindUserByEmailNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs(int64(7), "ghost@acme.test").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "slug", "email",
			"full_name", "role", "is_active", "created_at"}))

	_, err := store.FindUserByEmail(context.Background(), 7, "ghost@acme.test")
	assert.True(t, IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCountResource(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := store.CountResource(context.Background(), 7, ResourceUsers)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCountResourceUnknown(t *testing.T) {
	store, _ := newMockStore(t)

	_, err := store.CountResource(context.Background(), 7, Resource("widgets"))
	require.Error(t, err)
	assert.False(t, errors.As(err, new(*NotFoundError)))
}
