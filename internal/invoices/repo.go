package invoices

import "context"

// Repo defines persistence operations for invoices. Create distinguishes
// ErrConflict from ErrStorage; every other failure wraps ErrStorage.
type Repo interface {
	Create(ctx context.Context, inv Invoice) error
	ListByUser(ctx context.Context, userID string, filter Filter) ([]Invoice, error)
	ListVendors(ctx context.Context, userID string) ([]string, error)
	Delete(ctx context.Context, userID, id string) error
	DeleteAllByUser(ctx context.Context, userID string) (int, error)
	UpdateNotificationEmail(ctx context.Context, userID, email string) (int, error)
	LatestNotificationEmail(ctx context.Context, userID string) (string, error)
}
