package util

import (
	"strings"
	"testing"
)

func TestHashUserKey(t *testing.T) {
	id := "google:12345"
	got := HashUserKey(id)
	if got != HashUserKey(id) {
		t.Fatalf("expected stable hash, got %s", got)
	}
	for _, ch := range got {
		if !((ch >= 'a' && ch <= 'f') || (ch >= '0' && ch <= '9')) {
			t.Fatalf("hash contains non-hex character: %c", ch)
		}
	}
	if len(got) != userKeyLen {
		t.Fatalf("expected %d hex characters, got %d", userKeyLen, len(got))
	}
}

func TestObjectKey(t *testing.T) {
	key, err := ObjectKey("google:12345", "../etc/passwd")
	if err == nil {
		t.Fatalf("expected traversal to be rejected, got %q", key)
	}

	key, err = ObjectKey("google:12345", "scan/invoice.pdf")
	if err != nil {
		t.Fatalf("object key: %v", err)
	}
	prefix := HashUserKey("google:12345") + "/"
	if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "_scan_invoice.pdf") {
		t.Fatalf("unexpected key %q", key)
	}
	if strings.Contains(key, "google:12345") {
		t.Fatalf("raw user id leaked into key %q", key)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "invoice.pdf", want: "invoice.pdf"},
		{in: " a/b\\c.csv ", want: "a_b_c.csv"},
		{in: "tab\there.xlsx", want: "tabhere.xlsx"},
		{in: "../secret", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestQuotedCSV(t *testing.T) {
	got := QuotedCSV([]string{"metric", "value"}, [][]string{
		{"Top Vendor", `ACME "West"`},
		{"Total Invoices Saved"},
	})
	want := "metric,value\n\"Top Vendor\",\"ACME \"\"West\"\"\"\n\"Total Invoices Saved\",\"\""
	if got != want {
		t.Fatalf("QuotedCSV =\n%s\nwant\n%s", got, want)
	}
}
