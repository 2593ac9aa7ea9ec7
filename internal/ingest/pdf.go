package ingest

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFText extracts the plain text layer of a PDF. Scanned PDFs without a text
// layer yield ErrUnreadableDocument.
func PDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrUnreadableDocument, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrUnreadableDocument, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrUnreadableDocument, err)
	}
	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("%w: pdf has no text layer", ErrUnreadableDocument)
	}
	return text, nil
}

// AsText converts binary PDF content into TextContent for providers that
// cannot take attachments. Images have no text fallback.
func AsText(c Content) (TextContent, error) {
	switch v := c.(type) {
	case TextContent:
		return v, nil
	case BinaryContent:
		if v.MimeType != MimePDF {
			return TextContent{}, fmt.Errorf("%w: %s requires a model that accepts attachments", ErrUnsupportedFormat, v.MimeType)
		}
		text, err := PDFText(v.Data)
		if err != nil {
			return TextContent{}, err
		}
		return TextContent{Value: text}, nil
	default:
		return TextContent{}, fmt.Errorf("%w: unknown content %T", ErrUnsupportedFormat, c)
	}
}
