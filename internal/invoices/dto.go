package invoices

import (
	"strconv"
	"time"
)

type InvoiceResponse struct {
	ID                string    `json:"id"`
	Vendor            string    `json:"vendor"`
	InvoiceID         string    `json:"invoiceId"`
	Amount            float64   `json:"amount"`
	Date              string    `json:"date"`
	RawText           string    `json:"rawText"`
	NotificationEmail string    `json:"notificationEmail,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

func ToResponse(inv Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:                inv.ID,
		Vendor:            inv.Vendor,
		InvoiceID:         inv.InvoiceID,
		Amount:            inv.Amount,
		Date:              inv.Date,
		RawText:           inv.RawText,
		NotificationEmail: inv.NotificationEmail,
		CreatedAt:         inv.CreatedAt,
	}
}

func ToResponses(list []Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, ToResponse(inv))
	}
	return out
}

// csvHeaders matches the column order of csvRow.
var csvHeaders = []string{"invoice_id", "vendor", "date", "amount", "created_at"}

func csvRow(inv Invoice) []string {
	return []string{
		inv.InvoiceID,
		inv.Vendor,
		inv.Date,
		strconv.FormatFloat(inv.Amount, 'f', 2, 64),
		inv.CreatedAt.UTC().Format(time.RFC3339),
	}
}
