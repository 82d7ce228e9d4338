// Package balance derives a customer's running balance from invoice rows.
//
// An invoice adds its amount on the invoice date and removes it again on the
// payment date. Events are netted per calendar day and accumulated in date
// order; the point with the highest end-of-day balance is the max debt point.
package balance

import (
	"sort"
	"time"

	"github.com/Dan9191/balance-service/internal/models"
	"github.com/shopspring/decimal"
)

// Event is a signed amount attributed to a moment in time
type Event struct {
	Date   time.Time
	Amount decimal.Decimal
}

// DailyChange is the net of all events on one calendar day
type DailyChange struct {
	Date   time.Time
	Amount decimal.Decimal
}

// Point is the end-of-day balance on one calendar day
type Point struct {
	Date    time.Time
	Balance decimal.Decimal
	Change  decimal.Decimal
}

// Day truncates t to its calendar date. The date is taken in t's own location
// and returned as midnight UTC so that days compare with ==, Before and After.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Events converts invoices into ledger events. Invoices without dates
// contribute nothing.
func Events(invoices []models.Invoice) []Event {
	events := make([]Event, 0, len(invoices)*2)
	for _, inv := range invoices {
		amount := inv.AmountOrZero()
		if inv.InvoiceDate != nil {
			events = append(events, Event{Date: *inv.InvoiceDate, Amount: amount})
		}
		if inv.PaymentDate != nil {
			events = append(events, Event{Date: *inv.PaymentDate, Amount: amount.Neg()})
		}
	}
	return events
}

// NetDaily groups events by calendar day and sums each group.
// The result holds one entry per distinct day in ascending order.
func NetDaily(events []Event) []DailyChange {
	byDay := make(map[time.Time]decimal.Decimal, len(events))
	for _, e := range events {
		day := Day(e.Date)
		byDay[day] = byDay[day].Add(e.Amount)
	}

	days := make([]DailyChange, 0, len(byDay))
	for day, amount := range byDay {
		days = append(days, DailyChange{Date: day, Amount: amount})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

// Accumulate walks the ascending daily changes inside r and emits the running
// balance for each day. Changes before r.Start seed the running balance.
func Accumulate(days []DailyChange, r Range) []Point {
	r = r.normalize()

	running := decimal.Zero
	points := make([]Point, 0, len(days))
	for _, d := range days {
		if r.Start != nil && d.Date.Before(*r.Start) {
			running = running.Add(d.Amount)
			continue
		}
		if !r.Contains(d.Date) {
			continue
		}
		running = running.Add(d.Amount)
		points = append(points, Point{Date: d.Date, Balance: running, Change: d.Amount})
	}
	return points
}

// Max returns the point with the highest balance. Ties go to the earliest date.
// ok is false when points is empty.
func Max(points []Point) (best Point, ok bool) {
	for _, p := range points {
		switch {
		case !ok:
			best, ok = p, true
		case p.Balance.GreaterThan(best.Balance):
			best = p
		case p.Balance.Equal(best.Balance) && p.Date.Before(best.Date):
			best = p
		}
	}
	return best, ok
}
