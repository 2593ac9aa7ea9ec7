package ingest

import "errors"

var (
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrUnreadableDocument = errors.New("document could not be read")
	ErrTooLarge           = errors.New("file exceeds upload limit")
)
