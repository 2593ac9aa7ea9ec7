package documents

import "time"

// Document is the archived original of an upload sent for extraction.
type Document struct {
	ID              string
	UserID          string
	FileName        string
	MimeType        string
	SizeBytes       int64
	StorageProvider string
	StorageKey      string
	ContentKind     string
	CreatedAt       time.Time
}
