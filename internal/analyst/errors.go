package analyst

import "errors"

var (
	ErrNoData           = errors.New("no invoice data to analyze")
	ErrEmptyQuestion    = errors.New("question is required")
	ErrEmptyAnswer      = errors.New("model returned an empty answer")
	ErrModelUnavailable = errors.New("analyst model unavailable")
)
