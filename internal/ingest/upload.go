package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// MaxUploadBytes is the largest accepted upload (5 MiB).
const MaxUploadBytes = 5 * 1024 * 1024

// UploadedDocument is an accepted upload. Values are only produced by
// NewUploadedDocument and ReadUpload, so SizeBytes never exceeds MaxUploadBytes.
type UploadedDocument struct {
	Name      string
	MimeType  string
	SizeBytes int64
	Data      []byte
}

// NewUploadedDocument validates the size of data and wraps it.
func NewUploadedDocument(name, mimeType string, data []byte) (UploadedDocument, error) {
	if len(data) > MaxUploadBytes {
		return UploadedDocument{}, fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, len(data), MaxUploadBytes)
	}
	return UploadedDocument{
		Name:      name,
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
		Data:      data,
	}, nil
}

// ReadUpload reads at most MaxUploadBytes+1 bytes from r so an oversized body
// is rejected without being buffered whole.
func ReadUpload(name, mimeType string, r io.Reader) (UploadedDocument, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return UploadedDocument{}, fmt.Errorf("read upload: %w", err)
	}
	return NewUploadedDocument(name, mimeType, data)
}

// Ext returns the lowercased file extension including the dot.
func (d UploadedDocument) Ext() string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(d.Name)))
}

// NormalizedMimeType lowercases the MIME type and strips parameters.
func (d UploadedDocument) NormalizedMimeType() string {
	return normalizeMimeType(d.MimeType)
}

func normalizeMimeType(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
