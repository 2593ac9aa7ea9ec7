package account

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"invoice-backend/internal/documents"
	"invoice-backend/internal/review"
	"invoice-backend/internal/shared/telemetry"
)

var ErrInvalidEmail = errors.New("invalid notification email")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// InvoiceStore is the slice of the invoices service the settings page needs.
type InvoiceStore interface {
	DeleteAll(ctx context.Context, userID string) (int, error)
	UpdateNotificationEmail(ctx context.Context, userID, email string) (int, error)
	NotificationEmail(ctx context.Context, userID string) (string, error)
}

type guestDocClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

type Service struct {
	Invoices  InvoiceStore
	Documents *documents.Service
	Reviews   *review.Store
}

type ClaimResult struct {
	MigratedDocuments int  `json:"migratedDocuments"`
	MigratedReview    bool `json:"migratedReview"`
}

type DeleteResult struct {
	DeletedInvoices  int `json:"deletedInvoices"`
	DeletedDocuments int `json:"deletedDocuments"`
}

func NewService(invoices InvoiceStore, docs *documents.Service, reviews *review.Store) *Service {
	return &Service{Invoices: invoices, Documents: docs, Reviews: reviews}
}

// DeleteAllData removes every saved invoice and archived upload of the user.
func (s *Service) DeleteAllData(ctx context.Context, userID string) (DeleteResult, error) {
	n, err := s.Invoices.DeleteAll(ctx, userID)
	if err != nil {
		return DeleteResult{}, err
	}
	result := DeleteResult{DeletedInvoices: n}
	if s.Documents != nil {
		docs, err := s.Documents.DeleteAll(ctx, userID)
		if err != nil {
			return result, err
		}
		result.DeletedDocuments = docs
	}
	telemetry.Info("account.data_deleted", map[string]any{
		"user_id":           userID,
		"deleted_invoices":  result.DeletedInvoices,
		"deleted_documents": result.DeletedDocuments,
	})
	return result, nil
}

// UpdateNotificationEmail stores email on every invoice of the user.
func (s *Service) UpdateNotificationEmail(ctx context.Context, userID, email string) (int, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return 0, ErrInvalidEmail
	}
	return s.Invoices.UpdateNotificationEmail(ctx, userID, email)
}

func (s *Service) NotificationEmail(ctx context.Context, userID string) (string, error) {
	return s.Invoices.NotificationEmail(ctx, userID)
}

// ClaimGuest moves uploads and the open review made as a guest to the
// signed-in user. Running it twice is harmless.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	var result ClaimResult
	if s.Documents != nil {
		claimer, ok := s.Documents.Repo.(guestDocClaimer)
		if !ok {
			return ClaimResult{}, errors.New("documents repo does not support claim")
		}
		n, err := claimer.ClaimGuest(ctx, guestUserID, authedUserID)
		if err != nil {
			return ClaimResult{}, err
		}
		result.MigratedDocuments = n
	}
	if s.Reviews != nil {
		result.MigratedReview = s.Reviews.Transfer(guestUserID, authedUserID)
	}
	return result, nil
}
