package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dan9191/balance-service/internal/balance"
	"github.com/Dan9191/balance-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Missing range bounds mean "no limit" for the timeline, while the max debt
// summary clamps them to the first and last day with events.
const (
	TimelinePolicy = balance.Unbounded
	SummaryPolicy  = balance.DataBounds
)

// LedgerReader is the read side of the ledger store
type LedgerReader interface {
	GetCustomer(ctx context.Context, customerID int64) (*models.Customer, error)
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetInvoices(ctx context.Context, customerID int64) ([]models.Invoice, error)
	GetInvoicesUntil(ctx context.Context, customerID int64, end time.Time) ([]models.Invoice, error)
}

// Service handles business logic
type Service struct {
	repo LedgerReader
	log  *logrus.Logger
}

// NewService initializes a new service
func NewService(repo LedgerReader, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListCustomers returns every customer ordered by display name
func (s *Service) ListCustomers(ctx context.Context) ([]models.CustomerSummary, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.CustomerSummary, 0, len(customers))
	for _, c := range customers {
		out = append(out, models.CustomerSummary{ID: c.ID, DisplayName: c.DisplayName})
	}
	return out, nil
}

// ComputeTimeline returns the running balance of a customer for every day with
// ledger activity inside [start, end], together with the max debt point.
// It returns nil when the customer does not exist.
func (s *Service) ComputeTimeline(ctx context.Context, customerID int64, start, end *time.Time) (*models.BalanceTimeline, error) {
	customer, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer %d: %w", customerID, err)
	}
	if customer == nil {
		return nil, nil
	}

	timeline := &models.BalanceTimeline{
		CustomerID:  customer.ID,
		DisplayName: customer.DisplayName,
		Points:      []models.BalancePoint{},
	}

	invoices, err := s.repo.GetInvoices(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices of customer %d: %w", customerID, err)
	}
	if len(invoices) == 0 {
		s.log.WithField("customer_id", customerID).Debug("Customer has no invoices")
		return timeline, nil
	}

	res := balance.Compute(invoices, balance.NewRange(start, end), TimelinePolicy)
	for _, p := range res.Points {
		timeline.Points = append(timeline.Points, toBalancePoint(p))
	}
	if res.Max != nil {
		timeline.MaxDebt = toMaxDebt(*customer, *res.Max)
	}

	s.log.WithFields(logrus.Fields{
		"customer_id": customerID,
		"policy":      TimelinePolicy.String(),
		"start":       formatDay(res.Range.Start),
		"end":         formatDay(res.Range.End),
		"invoices":    len(invoices),
		"days":        len(res.Days),
		"points":      len(timeline.Points),
	}).Info("Balance timeline computed")
	return timeline, nil
}

// ComputeMaxDebt returns the day within [start, end] on which the customer's
// running balance peaked. It returns nil when no ledger activity falls in range.
// An unknown customer still gets a result when invoices reference its id.
func (s *Service) ComputeMaxDebt(ctx context.Context, customerID int64, start, end *time.Time) (*models.MaxDebtResult, error) {
	var (
		invoices []models.Invoice
		err      error
	)
	if end != nil {
		invoices, err = s.repo.GetInvoicesUntil(ctx, customerID, *end)
	} else {
		invoices, err = s.repo.GetInvoices(ctx, customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices of customer %d: %w", customerID, err)
	}

	res := balance.Compute(invoices, balance.NewRange(start, end), SummaryPolicy)
	if res.Max == nil {
		s.log.WithFields(logrus.Fields{
			"customer_id": customerID,
			"policy":      SummaryPolicy.String(),
			"start":       formatDay(res.Range.Start),
			"end":         formatDay(res.Range.End),
			"days":        len(res.Days),
		}).Debug("No ledger activity in range")
		return nil, nil
	}

	customer, err := s.repo.GetCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load customer %d: %w", customerID, err)
	}
	if customer == nil {
		customer = &models.Customer{ID: customerID}
	}

	result := toMaxDebt(*customer, *res.Max)
	s.log.WithFields(logrus.Fields{
		"customer_id": customerID,
		"policy":      SummaryPolicy.String(),
		"start":       formatDay(res.Range.Start),
		"end":         formatDay(res.Range.End),
		"date":        result.Date,
		"balance":     result.Balance.String(),
	}).Info("Max debt computed")
	return result, nil
}

// DebtDigest computes the max debt point of every customer over all of its
// history. Customers without ledger activity are left out. The result is
// ordered by balance, highest first.
func (s *Service) DebtDigest(ctx context.Context) ([]models.MaxDebtResult, error) {
	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	var digest []models.MaxDebtResult
	for _, c := range customers {
		invoices, err := s.repo.GetInvoices(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load invoices of customer %d: %w", c.ID, err)
		}
		res := balance.Compute(invoices, balance.Range{}, SummaryPolicy)
		if res.Max == nil {
			continue
		}
		digest = append(digest, *toMaxDebt(c, *res.Max))
	}

	sort.SliceStable(digest, func(i, j int) bool {
		if !digest[i].Balance.Equal(digest[j].Balance) {
			return digest[i].Balance.GreaterThan(digest[j].Balance)
		}
		return digest[i].CustomerID < digest[j].CustomerID
	})

	s.log.WithFields(logrus.Fields{
		"customers": len(customers),
		"entries":   len(digest),
	}).Info("Debt digest computed")
	return digest, nil
}

func toBalancePoint(p balance.Point) models.BalancePoint {
	return models.BalancePoint{
		Date:            p.Date.Format(models.DateLayout),
		EndOfDayBalance: p.Balance,
		DailyChange:     p.Change,
	}
}

func toMaxDebt(c models.Customer, p balance.Point) *models.MaxDebtResult {
	return &models.MaxDebtResult{
		CustomerID:  c.ID,
		DisplayName: c.DisplayName,
		Date:        p.Date.Format(models.DateLayout),
		Balance:     p.Balance,
	}
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return balance.Day(*t).Format(models.DateLayout)
}
