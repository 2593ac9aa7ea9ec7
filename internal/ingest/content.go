package ingest

// Content is the normalized payload handed to extraction. It is either
// TextContent or BinaryContent; no other implementations exist.
type Content interface {
	Kind() string
	content()
}

// TextContent carries plain text derived from the upload.
type TextContent struct {
	Value string
}

// BinaryContent carries the original bytes for providers that accept attachments.
type BinaryContent struct {
	Data []byte
	// MimeType is the canonical form of the declared type: lowercased, with
	// parameters stripped ("Image/PNG; q=1" becomes "image/png"). AsText and
	// the model providers compare against it. The declared string stays on
	// UploadedDocument.MimeType.
	MimeType string
}

const (
	KindText   = "text"
	KindBinary = "binary"
)

func (TextContent) Kind() string   { return KindText }
func (BinaryContent) Kind() string { return KindBinary }

func (TextContent) content()   {}
func (BinaryContent) content() {}
