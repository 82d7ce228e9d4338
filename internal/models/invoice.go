package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a ledger row as fetched from the store.
// A nil PaymentDate means the invoice is still unpaid.
type Invoice struct {
	ID          int64
	CustomerID  int64
	InvoiceDate *time.Time
	PaymentDate *time.Time
	Amount      decimal.NullDecimal
}

// AmountOrZero returns the invoice amount, treating a missing amount as zero
func (i Invoice) AmountOrZero() decimal.Decimal {
	if !i.Amount.Valid {
		return decimal.Zero
	}
	return i.Amount.Decimal
}
