package models

import "github.com/shopspring/decimal"

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// CustomerSummary is the list entry returned by the customers endpoint
type CustomerSummary struct {
	ID          int64   `json:"id"`
	DisplayName *string `json:"display_name"`
}

// BalancePoint represents the end-of-day balance for a specific day
type BalancePoint struct {
	Date            string          `json:"date"` // Format: YYYY-MM-DD
	EndOfDayBalance decimal.Decimal `json:"end_of_day_balance"`
	DailyChange     decimal.Decimal `json:"daily_change"`
}

// MaxDebtResult is the day on which a customer's running balance peaked
type MaxDebtResult struct {
	CustomerID  int64           `json:"customer_id"`
	DisplayName *string         `json:"display_name"`
	Date        string          `json:"date"` // Format: YYYY-MM-DD
	Balance     decimal.Decimal `json:"balance"`
}

// BalanceTimeline is the running balance of a customer over a date range
type BalanceTimeline struct {
	CustomerID  int64          `json:"customer_id"`
	DisplayName *string        `json:"display_name"`
	Points      []BalancePoint `json:"points"`
	MaxDebt     *MaxDebtResult `json:"max_debt"`
}
