package object

import (
	"context"
	"errors"
	"io"
)

// ErrInvalidKey is returned for keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Object describes a stored blob.
type Object struct {
	Key       string
	SizeBytes int64
	MimeType  string
}

// ObjectStore archives uploaded originals under a per-user namespace.
type ObjectStore interface {
	Provider() string
	Put(ctx context.Context, userID, fileName, mimeType string, data []byte) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
