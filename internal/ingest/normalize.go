package ingest

import (
	"context"
	"fmt"
	"strings"
)

const MimePDF = "application/pdf"

// Normalize converts an upload into TextContent or BinaryContent.
// Precedence: image/* or PDF by MIME, then .docx, .xlsx/.xls and .csv by
// extension. Anything else is ErrUnsupportedFormat. Binary content carries
// the normalized MIME type, not the declared one.
func Normalize(ctx context.Context, doc UploadedDocument) (Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mime := doc.NormalizedMimeType()
	if strings.HasPrefix(mime, "image/") || mime == MimePDF {
		return BinaryContent{Data: doc.Data, MimeType: mime}, nil
	}

	switch doc.Ext() {
	case ".docx":
		text, err := docxText(doc.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: docx %q: %v", ErrUnreadableDocument, doc.Name, err)
		}
		return TextContent{Value: text}, nil
	case ".xlsx", ".xls":
		text, err := workbookText(doc.Data)
		if err != nil {
			return nil, fmt.Errorf("workbook %q: %w", doc.Name, err)
		}
		return TextContent{Value: text}, nil
	case ".csv":
		return TextContent{Value: string(doc.Data)}, nil
	}

	return nil, fmt.Errorf("%w: %q (%s)", ErrUnsupportedFormat, doc.Name, displayMime(mime))
}

// SupportedExtensions lists the accepted upload extensions for client hints.
func SupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".webp", ".gif", ".pdf", ".docx", ".xlsx", ".xls", ".csv"}
}

func displayMime(mime string) string {
	if mime == "" {
		return "no mime type"
	}
	return mime
}
