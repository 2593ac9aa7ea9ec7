package analytics

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"invoice-backend/internal/invoices"
)

var (
	ErrInvalidRange = errors.New("invalid range")
	ErrNoData       = errors.New("no invoices for export")
)

// Range values accepted by ParseRange.
const (
	Range30  = "30"
	Range90  = "90"
	Range365 = "365"
	RangeAll = "all"
)

// TopVendorNone is reported when no invoice carries a vendor.
const TopVendorNone = "N/A"

const recentLimit = 4

// VendorTotal is the spend attributed to one vendor.
type VendorTotal struct {
	Name     string  `json:"name"`
	Spending float64 `json:"spending"`
}

// Point is one invoice on the date/amount scatter chart.
type Point struct {
	X      string  `json:"x"`
	Y      float64 `json:"y"`
	Vendor string  `json:"vendor"`
}

type Summary struct {
	TotalAmount    float64            `json:"totalAmountProcessed"`
	TotalInvoices  int                `json:"totalInvoices"`
	TopVendor      VendorTotal        `json:"topSpendingVendor"`
	VendorSpending []VendorTotal      `json:"vendorSpending"`
	Scatter        []Point            `json:"scatterPlotData"`
	Recent         []invoices.Invoice `json:"-"`
}

// ParseRange turns a range query value into a Since filter. "all" and the
// empty string yield no lower bound.
func ParseRange(raw string, now time.Time) (string, error) {
	switch strings.TrimSpace(raw) {
	case "", RangeAll:
		return "", nil
	case Range30, Range90, Range365:
		days, _ := strconv.Atoi(raw)
		return now.AddDate(0, 0, -days).Format("2006-01-02"), nil
	default:
		return "", ErrInvalidRange
	}
}

// Summarize aggregates the invoices already filtered by range and vendor.
func Summarize(list []invoices.Invoice) Summary {
	s := Summary{
		TopVendor:      VendorTotal{Name: TopVendorNone},
		VendorSpending: []VendorTotal{},
		Scatter:        make([]Point, 0, len(list)),
		Recent:         []invoices.Invoice{},
	}
	if len(list) == 0 {
		return s
	}

	index := map[string]int{}
	for _, inv := range list {
		s.TotalAmount += inv.Amount
		s.TotalInvoices++
		s.Scatter = append(s.Scatter, Point{X: inv.Date, Y: inv.Amount, Vendor: inv.Vendor})
		if inv.Vendor == "" {
			continue
		}
		i, ok := index[inv.Vendor]
		if !ok {
			i = len(s.VendorSpending)
			index[inv.Vendor] = i
			s.VendorSpending = append(s.VendorSpending, VendorTotal{Name: inv.Vendor})
		}
		s.VendorSpending[i].Spending += inv.Amount
	}

	// Ties go to the vendor seen later.
	for i, v := range s.VendorSpending {
		if i == 0 || v.Spending >= s.TopVendor.Spending {
			s.TopVendor = v
		}
	}

	s.Recent = MostRecentByDate(list, recentLimit)
	return s
}

// MostRecentByDate sorts a copy by invoice date, newest first, and keeps n.
// Dates that do not parse sort after every parsable one.
func MostRecentByDate(list []invoices.Invoice, n int) []invoices.Invoice {
	out := append([]invoices.Invoice(nil), list...)
	sort.SliceStable(out, func(i, j int) bool {
		ti, okI := parseDate(out[i].Date)
		tj, okJ := parseDate(out[j].Date)
		if okI != okJ {
			return okI
		}
		return ti.After(tj)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "01/02/2006", "Jan 2, 2006"}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Dashboard is the landing-page overview across every invoice of the user.
type Dashboard struct {
	TotalAmount   float64
	TotalInvoices int
	Recent        []invoices.Invoice
}

const dashboardRecent = 10

// BuildDashboard expects list ordered newest-created first.
func BuildDashboard(list []invoices.Invoice) Dashboard {
	d := Dashboard{TotalInvoices: len(list), Recent: list}
	for _, inv := range list {
		d.TotalAmount += inv.Amount
	}
	if len(d.Recent) > dashboardRecent {
		d.Recent = d.Recent[:dashboardRecent]
	}
	return d
}
