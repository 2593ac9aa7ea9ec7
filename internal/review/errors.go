package review

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid review transition")
	ErrNoSession         = errors.New("no review session")
)
