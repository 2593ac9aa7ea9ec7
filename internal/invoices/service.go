package invoices

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"invoice-backend/internal/analyst"
	"invoice-backend/internal/extraction"
	"invoice-backend/internal/review"
	sharedauth "invoice-backend/internal/shared/auth"
	"invoice-backend/internal/shared/telemetry"
)

// Service owns invoice persistence for the HTTP handlers and the review flow.
type Service struct {
	Repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

var _ review.Saver = (*Service)(nil)

// SaveDraft persists a reviewed draft for the user on ctx. The amount is
// the draft's total_amount coerced to a number, 0 when it cannot be parsed.
func (s *Service) SaveDraft(ctx context.Context, draft extraction.Result) error {
	userID := sharedauth.UserIDFromContext(ctx)
	if strings.TrimSpace(userID) == "" || sharedauth.IsGuest(ctx) {
		return fmt.Errorf("%w: signed-in user required", ErrInvalidInput)
	}

	inv := Invoice{
		ID:        uuid.NewString(),
		UserID:    userID,
		Vendor:    draft.VendorName(),
		InvoiceID: draft.InvoiceID(),
		Amount:    draft.TotalAmount(),
		Date:      draft.InvoiceDate(),
		RawText:   draft.RawText(),
		CreatedAt: s.now(),
	}
	if err := s.Repo.Create(ctx, inv); err != nil {
		telemetry.Warn("invoice.save_failed", map[string]any{
			"user_id":    userID,
			"invoice_id": inv.InvoiceID,
			"error":      err.Error(),
		})
		return err
	}
	telemetry.Info("invoice.saved", map[string]any{
		"user_id":    userID,
		"invoice_id": inv.InvoiceID,
		"amount":     inv.Amount,
	})
	return nil
}

func (s *Service) List(ctx context.Context, userID string, filter Filter) ([]Invoice, error) {
	return s.Repo.ListByUser(ctx, userID, filter)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userID, id)
}

func (s *Service) DeleteAll(ctx context.Context, userID string) (int, error) {
	return s.Repo.DeleteAllByUser(ctx, userID)
}

func (s *Service) Vendors(ctx context.Context, userID string) ([]string, error) {
	return s.Repo.ListVendors(ctx, userID)
}

func (s *Service) UpdateNotificationEmail(ctx context.Context, userID, email string) (int, error) {
	return s.Repo.UpdateNotificationEmail(ctx, userID, email)
}

// NotificationEmail returns the address stored on the most recent invoice.
func (s *Service) NotificationEmail(ctx context.Context, userID string) (string, error) {
	return s.Repo.LatestNotificationEmail(ctx, userID)
}

// Records projects every invoice of the user into analyst query context.
func (s *Service) Records(ctx context.Context, userID string) ([]analyst.Record, error) {
	list, err := s.Repo.ListByUser(ctx, userID, Filter{})
	if err != nil {
		return nil, err
	}
	return Project(list), nil
}

// Project keeps only vendor, date and amount.
func Project(list []Invoice) []analyst.Record {
	out := make([]analyst.Record, 0, len(list))
	for _, inv := range list {
		out = append(out, analyst.Record{Vendor: inv.Vendor, Date: inv.Date, Amount: inv.Amount})
	}
	return out
}
