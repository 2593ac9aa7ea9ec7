package documents

import "context"

// DocumentsRepo defines persistence operations for archived documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error)
	DeleteAllByUser(ctx context.Context, userID string) ([]Document, error)
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
