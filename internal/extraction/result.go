package extraction

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
)

// Canonical result keys.
const (
	KeyVendorName  = "vendor_name"
	KeyInvoiceID   = "invoice_id"
	KeyInvoiceDate = "invoice_date"
	KeyTotalAmount = "total_amount"
	KeyCurrency    = "currency"
	KeyRawText     = "raw_text"
)

// CanonicalKeys lists the six keys the model is asked to return.
var CanonicalKeys = []string{KeyVendorName, KeyInvoiceID, KeyInvoiceDate, KeyTotalAmount, KeyCurrency, KeyRawText}

// Result is the repaired model output. Extra or missing keys pass through
// untouched; only raw_text and total_amount are ever rewritten.
type Result map[string]any

func (r Result) VendorName() string  { return r.str(KeyVendorName) }
func (r Result) InvoiceID() string   { return r.str(KeyInvoiceID) }
func (r Result) InvoiceDate() string { return r.str(KeyInvoiceDate) }
func (r Result) Currency() string    { return r.str(KeyCurrency) }
func (r Result) RawText() string     { return r.str(KeyRawText) }

// TotalAmount returns total_amount as a float. Numeric strings are parsed;
// anything else is 0.
func (r Result) TotalAmount() float64 {
	switch v := r[KeyTotalAmount].(type) {
	case float64:
		return v
	case json.Number:
		f, _ := v.Float64()
		return f
	case int:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func (r Result) str(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Clone returns a deep copy so drafts never alias the original.
func (r Result) Clone() Result {
	if r == nil {
		return nil
	}
	out := make(Result, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := maps.Clone(t)
		for k, inner := range m {
			m[k] = cloneValue(inner)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}
