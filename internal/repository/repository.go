package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/balance-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const invoiceColumns = `id, customer_id, invoice_date, payment_date, amount`

// Repository provides read-only access to the customer ledger
type Repository struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB, log *logrus.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// Ping checks that the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// GetCustomer retrieves a customer by id. It returns nil when no such customer exists.
func (r *Repository) GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error) {
	query := `
		SELECT id, display_name
		FROM customers
		WHERE id = $1`

	var (
		customer models.Customer
		name     sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, customerID).Scan(&customer.ID, &name)
	if errors.Is(err, sql.ErrNoRows) {
		r.log.WithField("customer_id", customerID).Debug("Customer not found")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	if name.Valid {
		customer.DisplayName = &name.String
	}
	return &customer, nil
}

// ListCustomers retrieves all customers ordered by display name
func (r *Repository) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	query := `
		SELECT id, display_name
		FROM customers
		ORDER BY display_name, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		var (
			customer models.Customer
			name     sql.NullString
		)
		if err := rows.Scan(&customer.ID, &name); err != nil {
			return nil, fmt.Errorf("failed to read customer: %w", err)
		}
		if name.Valid {
			customer.DisplayName = &name.String
		}
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	r.log.WithField("count", len(customers)).Debug("Customers loaded")
	return customers, nil
}

// GetInvoices retrieves every invoice of a customer
func (r *Repository) GetInvoices(ctx context.Context, customerID int64) ([]models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE customer_id = $1
		ORDER BY id`

	invoices, err := r.queryInvoices(ctx, query, customerID)
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"customer_id": customerID,
		"count":       len(invoices),
	}).Debug("Invoices loaded")
	return invoices, nil
}

// GetInvoicesUntil retrieves the invoices of a customer that were issued or
// paid on or before the calendar day of end. Invoices dated entirely after end
// cannot affect any balance up to end and are left in the database.
func (r *Repository) GetInvoicesUntil(ctx context.Context, customerID int64, end time.Time) ([]models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE customer_id = $1
		  AND ((invoice_date IS NOT NULL AND invoice_date::date <= $2::date)
		    OR (payment_date IS NOT NULL AND payment_date::date <= $2::date))
		ORDER BY id`

	day := end.Format(models.DateLayout)
	invoices, err := r.queryInvoices(ctx, query, customerID, day)
	if err != nil {
		return nil, err
	}

	r.log.WithFields(logrus.Fields{
		"customer_id": customerID,
		"end":         day,
		"count":       len(invoices),
	}).Debug("Invoices loaded up to end date")
	return invoices, nil
}

func (r *Repository) queryInvoices(ctx context.Context, query string, args ...any) ([]models.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var (
			inv         models.Invoice
			customerID  sql.NullInt64
			invoiceDate sql.NullTime
			paymentDate sql.NullTime
			amount      decimal.NullDecimal
		)
		if err := rows.Scan(&inv.ID, &customerID, &invoiceDate, &paymentDate, &amount); err != nil {
			return nil, fmt.Errorf("failed to read invoice: %w", err)
		}
		inv.CustomerID = customerID.Int64
		inv.Amount = amount
		if invoiceDate.Valid {
			inv.InvoiceDate = &invoiceDate.Time
		}
		if paymentDate.Valid {
			inv.PaymentDate = &paymentDate.Time
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	return invoices, nil
}
