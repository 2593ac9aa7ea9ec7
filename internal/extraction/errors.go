package extraction

import "errors"

var (
	ErrMissingInput      = errors.New("either a file or text is required")
	ErrEmptyResponse     = errors.New("model returned an empty response")
	ErrMalformedResponse = errors.New("model response is not a JSON object")
	ErrModelUnavailable  = errors.New("model unavailable")
)
