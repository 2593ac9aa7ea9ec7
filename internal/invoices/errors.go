package invoices

import "errors"

var (
	// ErrConflict is returned when the user already saved an invoice with
	// the same invoice identifier.
	ErrConflict     = errors.New("invoice already saved")
	ErrStorage      = errors.New("invoice storage failure")
	ErrNotFound     = errors.New("invoice not found")
	ErrInvalidInput = errors.New("invalid invoice input")
)
