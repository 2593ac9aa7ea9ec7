package analytics

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"invoice-backend/internal/invoices"
)

func sampleInvoices() []invoices.Invoice {
	return []invoices.Invoice{
		{Vendor: "ACME", Date: "2026-01-05", Amount: 100},
		{Vendor: "Globex", Date: "2026-03-01", Amount: 40},
		{Vendor: "ACME", Date: "2025-12-31", Amount: 25.5},
		{Vendor: "", Date: "not a date", Amount: 10},
		{Vendor: "Initech", Date: "2026-02-14", Amount: 60},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleInvoices())
	if s.TotalAmount != 235.5 || s.TotalInvoices != 5 {
		t.Fatalf("unexpected totals %v / %d", s.TotalAmount, s.TotalInvoices)
	}
	if s.TopVendor.Name != "ACME" || s.TopVendor.Spending != 125.5 {
		t.Fatalf("unexpected top vendor %+v", s.TopVendor)
	}
	if len(s.VendorSpending) != 3 || s.VendorSpending[0].Name != "ACME" {
		t.Fatalf("vendor spending should keep first-seen order: %+v", s.VendorSpending)
	}
	if len(s.Scatter) != 5 {
		t.Fatalf("expected one scatter point per invoice, got %d", len(s.Scatter))
	}

	var dates []string
	for _, inv := range s.Recent {
		dates = append(dates, inv.Date)
	}
	if strings.Join(dates, ",") != "2026-03-01,2026-02-14,2026-01-05,2025-12-31" {
		t.Fatalf("unexpected recent order %v", dates)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TopVendor.Name != TopVendorNone || s.TopVendor.Spending != 0 || s.TotalInvoices != 0 {
		t.Fatalf("unexpected empty summary %+v", s)
	}
}

func TestTopVendorTieGoesToLaterVendor(t *testing.T) {
	s := Summarize([]invoices.Invoice{{Vendor: "A", Amount: 5}, {Vendor: "B", Amount: 5}})
	if s.TopVendor.Name != "B" {
		t.Fatalf("expected B on tie, got %s", s.TopVendor.Name)
	}
}

func TestParseRange(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "all", want: ""},
		{in: "", want: ""},
		{in: "30", want: "2026-03-01"},
		{in: "365", want: "2025-03-31"},
		{in: "7", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseRange(tc.in, now)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("%q: expected ErrInvalidRange, got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: got %q, %v want %q", tc.in, got, err, tc.want)
		}
	}
}

func TestCSVExport(t *testing.T) {
	got := string(CSV(Summarize(sampleInvoices())))
	want := strings.Join([]string{
		"metric,value",
		`"Total Amount Processed (USD)","235.50"`,
		`"Total Invoices Saved","5"`,
		`"Top Vendor","ACME"`,
		`"Top Vendor Spending (USD)","125.50"`,
	}, "\n")
	if got != want {
		t.Fatalf("CSV =\n%s\nwant\n%s", got, want)
	}
}

func TestXLSXExport(t *testing.T) {
	data, err := XLSX(Summarize(sampleInvoices()))
	if err != nil {
		t.Fatalf("XLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	v, err := f.GetCellValue(sheetName, "B4")
	if err != nil || v != "ACME" {
		t.Fatalf("B4 = %q, %v", v, err)
	}
	v, _ = f.GetCellValue(sheetName, "A1")
	if v != "metric" {
		t.Fatalf("A1 = %q", v)
	}
}

func TestDashboardKeepsTenMostRecent(t *testing.T) {
	list := make([]invoices.Invoice, 12)
	for i := range list {
		list[i] = invoices.Invoice{Amount: 1}
	}
	d := BuildDashboard(list)
	if d.TotalAmount != 12 || d.TotalInvoices != 12 || len(d.Recent) != 10 {
		t.Fatalf("unexpected dashboard %+v", d)
	}
}

func TestHandlerSummaryAndExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := invoices.NewMemoryRepo()
	for i, inv := range sampleInvoices() {
		inv.ID = string(rune('a' + i))
		inv.InvoiceID = inv.ID
		inv.UserID = "google:1"
		if err := repo.Create(context.Background(), inv); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "google:1")
		c.Set("isGuest", false)
		c.Next()
	})
	NewHandler(NewService(invoices.NewService(repo))).RegisterRoutes(router.Group("/api/v1"))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analytics?range=all&vendor=ACME", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"totalInvoices":2`) {
		t.Fatalf("unexpected summary %d %s", resp.Code, resp.Body.String())
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analytics?range=12", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad range, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/export.csv?vendor=Nobody", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 no_data, got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/export.xlsx", nil))
	if resp.Code != http.StatusOK || resp.Header().Get("Content-Type") != xlsxMime {
		t.Fatalf("unexpected xlsx response %d %s", resp.Code, resp.Header().Get("Content-Type"))
	}
}
