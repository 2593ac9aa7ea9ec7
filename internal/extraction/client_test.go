package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"invoice-backend/internal/ingest"
	"invoice-backend/internal/llm"
)

type stubGenerator struct {
	calls       int
	prompt      string
	attachments []llm.Attachment
	format      string
	out         string
	err         error
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string, attachments ...llm.Attachment) (string, error) {
	s.calls++
	s.prompt = prompt
	s.attachments = attachments
	s.format, _ = llm.ResponseFormatFromContext(ctx)
	return s.out, s.err
}

func TestBuildRequest(t *testing.T) {
	bin := &ingest.BinaryContent{Data: []byte{1, 2, 3}, MimeType: "image/png"}
	req, err := BuildRequest(Input{Binary: bin})
	if err != nil {
		t.Fatalf("BuildRequest binary: %v", err)
	}
	if req.Prompt != Instruction || len(req.Attachments) != 1 {
		t.Fatalf("unexpected binary request: %+v", req)
	}
	if &req.Attachments[0].Data[0] != &bin.Data[0] || req.Attachments[0].MimeType != "image/png" {
		t.Fatalf("attachment should carry the original bytes and mime")
	}

	req, err = BuildRequest(Input{Text: "Total: 5"})
	if err != nil {
		t.Fatalf("BuildRequest text: %v", err)
	}
	if req.Prompt != Instruction+"\n\nInvoice Text:\nTotal: 5" || len(req.Attachments) != 0 {
		t.Fatalf("unexpected text request: %q", req.Prompt)
	}

	if _, err := BuildRequest(Input{}); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if _, err := BuildRequest(Input{Binary: bin, Text: "x"}); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput for ambiguous input, got %v", err)
	}
}

func TestInstructionNamesCanonicalKeys(t *testing.T) {
	for _, key := range CanonicalKeys {
		if !strings.Contains(Instruction, key) {
			t.Fatalf("instruction is missing key %s", key)
		}
	}
	if !strings.Contains(Instruction, `"N/A"`) {
		t.Fatalf("instruction must name the N/A default")
	}
}

func TestExtractWrapsTransportFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("dial tcp: refused")}
	_, err := NewClient(gen).Extract(context.Background(), Input{Text: "x"})
	if !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", gen.calls)
	}
}

func TestExtractMissingInputSkipsModel(t *testing.T) {
	gen := &stubGenerator{}
	if _, err := NewClient(gen).Extract(context.Background(), Input{}); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("model should not be called")
	}
}

func TestExtractBinaryDoesNotBackfill(t *testing.T) {
	gen := &stubGenerator{out: `{"vendor_name":"ACME","total_amount":"12"}`}
	in, err := InputFromContent(ingest.BinaryContent{Data: []byte("%PDF-1.4"), MimeType: ingest.MimePDF})
	if err != nil {
		t.Fatalf("InputFromContent: %v", err)
	}
	res, err := NewClient(gen).Extract(context.Background(), in)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if _, ok := res[KeyRawText]; ok {
		t.Fatalf("raw_text should not be backfilled for binary input")
	}
	if res[KeyTotalAmount] != float64(0) {
		t.Fatalf("expected coerced amount 0, got %#v", res[KeyTotalAmount])
	}
	if len(gen.attachments) != 1 || gen.format != "json" {
		t.Fatalf("expected one attachment and json hint, got %d %q", len(gen.attachments), gen.format)
	}
}

func TestEndToEndCSVUpload(t *testing.T) {
	var csv bytes.Buffer
	csv.WriteString("vendor,invoice,date,description,amount\n")
	for i := 0; csv.Len() < 4000; i++ {
		fmt.Fprintf(&csv, "ACME Supplies,INV-9,2025-03-01,line item %03d,1.00\n", i)
	}
	csv.WriteString("ACME Supplies,INV-9,2025-03-01,TOTAL,99.50\n")

	doc, err := ingest.NewUploadedDocument("march.csv", "text/csv", csv.Bytes())
	if err != nil {
		t.Fatalf("NewUploadedDocument: %v", err)
	}
	content, err := ingest.Normalize(context.Background(), doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	in, err := InputFromContent(content)
	if err != nil {
		t.Fatalf("InputFromContent: %v", err)
	}

	gen := &stubGenerator{out: "```json\n{\"vendor_name\":\"ACME Supplies\",\"invoice_id\":\"INV-9\",\"invoice_date\":\"2025-03-01\",\"total_amount\":99.5,\"currency\":\"USD\",\"raw_text\":\"\"}\n```"}
	res, err := NewClient(gen).Extract(context.Background(), in)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.RawText() != csv.String() {
		t.Fatalf("raw_text should be backfilled with the CSV text")
	}
	if res.TotalAmount() != 99.5 {
		t.Fatalf("expected amount 99.5, got %v", res.TotalAmount())
	}
	if !strings.HasPrefix(gen.prompt, Instruction+"\n\nInvoice Text:\n") || !strings.HasSuffix(gen.prompt, csv.String()) {
		t.Fatalf("prompt should carry the instruction and CSV text")
	}
}

// extractUpload runs an upload through the same steps the intake service
// takes, stopping at the first error.
func extractUpload(ctx context.Context, c *Client, name, mimeType string, r io.Reader) (Result, error) {
	doc, err := ingest.ReadUpload(name, mimeType, r)
	if err != nil {
		return nil, err
	}
	content, err := ingest.Normalize(ctx, doc)
	if err != nil {
		return nil, err
	}
	in, err := InputFromContent(content)
	if err != nil {
		return nil, err
	}
	return c.Extract(ctx, in)
}

func TestEndToEndOversizedUploadRejectedBeforeModel(t *testing.T) {
	gen := &stubGenerator{out: `{"vendor_name":"ACME"}`}
	client := NewClient(gen)

	if _, err := extractUpload(context.Background(), client, "scan.png", "image/png", bytes.NewReader(make([]byte, 1024))); err != nil {
		t.Fatalf("small upload: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("small upload should reach the model once, got %d", gen.calls)
	}

	_, err := extractUpload(context.Background(), client, "scan.pdf", "application/pdf", bytes.NewReader(make([]byte, 6*1024*1024)))
	if !errors.Is(err, ingest.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("oversized upload must not reach the model, calls=%d", gen.calls)
	}
}
