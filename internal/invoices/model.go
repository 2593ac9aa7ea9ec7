package invoices

import "time"

// Invoice is a saved, user-reviewed extraction.
type Invoice struct {
	ID                string
	UserID            string
	Vendor            string
	InvoiceID         string
	Amount            float64
	Date              string
	RawText           string
	NotificationEmail string
	CreatedAt         time.Time
}

// Filter narrows ListByUser. Since is compared against the stored date
// string, so it must use the same ISO layout (YYYY-MM-DD...).
type Filter struct {
	Since  string
	Vendor string
	Limit  int
}
