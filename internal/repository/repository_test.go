package repository

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewRepository(db, log), mock
}

func TestGetCustomer(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name"}).AddRow(int64(7), "Acme Ltd"))

	customer, err := repo.GetCustomer(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, int64(7), customer.ID)
	assert.Equal(t, "Acme Ltd", customer.Name())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomerNotFound(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE id = $1")).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	customer, err := repo.GetCustomer(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestGetCustomerFault(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE id = $1")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetCustomer(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestListCustomers(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers ORDER BY display_name, id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "display_name"}).
			AddRow(int64(2), "Alpha").
			AddRow(int64(1), nil))

	customers, err := repo.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Alpha", customers[0].Name())
	assert.Nil(t, customers[1].DisplayName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetInvoices(t *testing.T) {
	repo, mock := newTestRepository(t)
	issued := time.Date(2023, 1, 1, 10, 0, 0, 0, time.UTC)
	paid := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices WHERE customer_id = $1 ORDER BY id")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "invoice_date", "payment_date", "amount"}).
			AddRow(int64(1), int64(3), issued, paid, "1000.00").
			AddRow(int64(2), int64(3), issued, nil, nil).
			AddRow(int64(3), nil, nil, nil, "12.34"))

	invoices, err := repo.GetInvoices(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, invoices, 3)

	first := invoices[0]
	require.NotNil(t, first.InvoiceDate)
	require.NotNil(t, first.PaymentDate)
	assert.True(t, issued.Equal(*first.InvoiceDate))
	assert.True(t, paid.Equal(*first.PaymentDate))
	assert.True(t, decimal.RequireFromString("1000").Equal(first.AmountOrZero()))

	second := invoices[1]
	assert.Nil(t, second.PaymentDate)
	assert.False(t, second.Amount.Valid)
	assert.True(t, second.AmountOrZero().IsZero())

	third := invoices[2]
	assert.Nil(t, third.InvoiceDate)
	assert.Equal(t, int64(0), third.CustomerID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetInvoicesUntil(t *testing.T) {
	repo, mock := newTestRepository(t)
	end := time.Date(2023, 1, 8, 17, 45, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("invoice_date::date <= $2::date")).
		WithArgs(int64(3), "2023-01-08").
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "invoice_date", "payment_date", "amount"}))

	invoices, err := repo.GetInvoicesUntil(context.Background(), 3, end)
	require.NoError(t, err)
	assert.Empty(t, invoices)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetInvoicesRowError(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM invoices")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "invoice_date", "payment_date", "amount"}).
			AddRow(int64(1), int64(3), nil, nil, "1").
			RowError(0, errors.New("broken row")))

	_, err := repo.GetInvoices(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken row")
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	log := logrus.New()
	log.SetOutput(io.Discard)
	repo := NewRepository(db, log)

	mock.ExpectPing().WillReturnError(errors.New("down"))
	require.Error(t, repo.Ping(context.Background()))
}
