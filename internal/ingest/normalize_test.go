package ingest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func mustDoc(t *testing.T, name, mime string, data []byte) UploadedDocument {
	t.Helper()
	doc, err := NewUploadedDocument(name, mime, data)
	if err != nil {
		t.Fatalf("NewUploadedDocument: %v", err)
	}
	return doc
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func buildXLSX(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	set := func(sheet, cell, v string) {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("set %s!%s: %v", sheet, cell, err)
		}
	}
	set("Sheet1", "A1", "Item")
	set("Sheet1", "B1", "Qty")
	set("Sheet1", "C1", "Price")
	set("Sheet1", "A2", "Widget")
	set("Sheet1", "B2", "2")
	if _, err := f.NewSheet("Totals"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	set("Totals", "A1", "Vendor")
	set("Totals", "B1", "Acme, Inc.")

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeBinaryPassthrough(t *testing.T) {
	cases := []struct {
		name     string
		file     string
		mime     string
		wantMime string
	}{
		{name: "png", file: "scan.png", mime: "image/png", wantMime: "image/png"},
		{name: "mime params and case", file: "scan.bin", mime: "Image/PNG; q=1", wantMime: "image/png"},
		{name: "pdf", file: "invoice.pdf", mime: "application/pdf", wantMime: "application/pdf"},
		{name: "mime beats extension", file: "invoice.docx", mime: "application/pdf", wantMime: "application/pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := append([]byte(nil), pngHeader...)
			doc := mustDoc(t, tc.file, tc.mime, data)
			got, err := Normalize(context.Background(), doc)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			bin, ok := got.(BinaryContent)
			if !ok {
				t.Fatalf("expected BinaryContent, got %T", got)
			}
			if bin.MimeType != tc.wantMime {
				t.Fatalf("mime = %q, want %q", bin.MimeType, tc.wantMime)
			}
			if doc.MimeType != tc.mime {
				t.Fatalf("declared mime should be kept on the upload, got %q", doc.MimeType)
			}
			if !bytes.Equal(bin.Data, data) || &bin.Data[0] != &data[0] {
				t.Fatalf("expected the original bytes to pass through unchanged")
			}
		})
	}
}

func TestNormalizeDocx(t *testing.T) {
	body := `<w:p><w:r><w:t>ACME Corp</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t xml:space="preserve">Invoice </w:t></w:r><w:r><w:t>INV-7</w:t></w:r><w:r><w:br/><w:t>Total:</w:t><w:tab/><w:t>99.50</w:t></w:r></w:p>`
	got, err := Normalize(context.Background(), mustDoc(t, "Bill.DOCX", "application/octet-stream", buildDocx(t, body)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	text, ok := got.(TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", got)
	}
	want := "ACME Corp\n\nInvoice INV-7\nTotal:\t99.50"
	if text.Value != want {
		t.Fatalf("docx text = %q, want %q", text.Value, want)
	}
}

func TestNormalizeCorruptDocx(t *testing.T) {
	_, err := Normalize(context.Background(), mustDoc(t, "broken.docx", "", []byte("not a zip")))
	if !errors.Is(err, ErrUnreadableDocument) {
		t.Fatalf("expected ErrUnreadableDocument, got %v", err)
	}
}

func TestNormalizeWorkbook(t *testing.T) {
	got, err := Normalize(context.Background(), mustDoc(t, "ledger.xlsx", "", buildXLSX(t)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := "Sheet: Sheet1\nItem,Qty,Price\nWidget,2,\n\nSheet: Totals\nVendor,\"Acme, Inc.\""
	if text := got.(TextContent).Value; text != want {
		t.Fatalf("workbook text = %q, want %q", text, want)
	}
}

func TestNormalizeRenamedXLSAndLegacyXLS(t *testing.T) {
	got, err := Normalize(context.Background(), mustDoc(t, "ledger.XLS", "", buildXLSX(t)))
	if err != nil {
		t.Fatalf("OOXML workbook named .xls should be read: %v", err)
	}
	if !strings.HasPrefix(got.(TextContent).Value, "Sheet: Sheet1\n") {
		t.Fatalf("unexpected text %q", got.(TextContent).Value)
	}

	legacy := append(append([]byte(nil), oleSignature...), make([]byte, 64)...)
	_, err = Normalize(context.Background(), mustDoc(t, "old.xls", "application/vnd.ms-excel", legacy))
	if !errors.Is(err, ErrUnsupportedFormat) || !strings.Contains(err.Error(), "legacy .xls") {
		t.Fatalf("expected legacy xls ErrUnsupportedFormat, got %v", err)
	}
}

func TestNormalizeCSVVerbatim(t *testing.T) {
	raw := "vendor,amount\r\n\"Acme, Inc.\",99.5\n"
	got, err := Normalize(context.Background(), mustDoc(t, "export.CSV", "text/csv", []byte(raw)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got.(TextContent).Value != raw {
		t.Fatalf("csv should be returned verbatim, got %q", got.(TextContent).Value)
	}
}

func TestNormalizeUnsupported(t *testing.T) {
	for _, name := range []string{"notes.txt", "archive.zip", "noext"} {
		_, err := Normalize(context.Background(), mustDoc(t, name, "text/plain", []byte("hello")))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("%s: expected ErrUnsupportedFormat, got %v", name, err)
		}
	}
}

func TestUploadSizeLimit(t *testing.T) {
	if _, err := NewUploadedDocument("ok.csv", "text/csv", make([]byte, MaxUploadBytes)); err != nil {
		t.Fatalf("exactly the limit should be accepted: %v", err)
	}
	if _, err := NewUploadedDocument("big.csv", "text/csv", make([]byte, MaxUploadBytes+1)); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	big := bytes.NewReader(make([]byte, 6*1024*1024))
	if _, err := ReadUpload("big.pdf", "application/pdf", big); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge from ReadUpload, got %v", err)
	}
	if big.Len() == 0 {
		t.Fatalf("ReadUpload should stop reading after the limit")
	}
}

func TestAsText(t *testing.T) {
	text, err := AsText(TextContent{Value: "hi"})
	if err != nil || text.Value != "hi" {
		t.Fatalf("text passthrough failed: %q %v", text.Value, err)
	}
	if _, err := AsText(BinaryContent{Data: pngHeader, MimeType: "image/png"}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected images to be unsupported for text-only models, got %v", err)
	}
	if _, err := AsText(BinaryContent{Data: []byte("junk"), MimeType: MimePDF}); !errors.Is(err, ErrUnreadableDocument) {
		t.Fatalf("expected unreadable pdf, got %v", err)
	}
}

func TestNormalizeHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Normalize(ctx, mustDoc(t, "a.csv", "", []byte("x"))); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
