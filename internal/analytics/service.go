package analytics

import (
	"context"
	"time"

	"invoice-backend/internal/invoices"
)

// InvoiceSource lists a user's invoices.
type InvoiceSource interface {
	List(ctx context.Context, userID string, filter invoices.Filter) ([]invoices.Invoice, error)
}

type Service struct {
	Invoices InvoiceSource
	now      func() time.Time
}

func NewService(src InvoiceSource) *Service {
	return &Service{Invoices: src, now: func() time.Time { return time.Now().UTC() }}
}

// Summary aggregates invoices dated within rangeValue, optionally for one
// vendor ("" or "all" means every vendor).
func (s *Service) Summary(ctx context.Context, userID, rangeValue, vendor string) (Summary, error) {
	since, err := ParseRange(rangeValue, s.now())
	if err != nil {
		return Summary{}, err
	}
	if vendor == "all" {
		vendor = ""
	}
	list, err := s.Invoices.List(ctx, userID, invoices.Filter{Since: since, Vendor: vendor})
	if err != nil {
		return Summary{}, err
	}
	return Summarize(list), nil
}

func (s *Service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	list, err := s.Invoices.List(ctx, userID, invoices.Filter{})
	if err != nil {
		return Dashboard{}, err
	}
	return BuildDashboard(list), nil
}
