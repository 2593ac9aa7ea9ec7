package analytics

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"invoice-backend/internal/shared/util"
)

const sheetName = "Analytics"

var exportHeaders = []string{"metric", "value"}

// ExportRows is the four-line summary offered for download.
func ExportRows(s Summary) [][]string {
	return [][]string{
		{"Total Amount Processed (USD)", strconv.FormatFloat(s.TotalAmount, 'f', 2, 64)},
		{"Total Invoices Saved", strconv.Itoa(s.TotalInvoices)},
		{"Top Vendor", s.TopVendor.Name},
		{"Top Vendor Spending (USD)", strconv.FormatFloat(s.TopVendor.Spending, 'f', 2, 64)},
	}
}

// CSV renders the summary rows with every data cell quoted.
func CSV(s Summary) []byte {
	return []byte(util.QuotedCSV(exportHeaders, ExportRows(s)))
}

// XLSX renders the summary rows into a single-sheet workbook.
func XLSX(s Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &[]any{exportHeaders[0], exportHeaders[1]}); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	values := []any{s.TotalAmount, s.TotalInvoices, s.TopVendor.Name, s.TopVendor.Spending}
	for i, row := range ExportRows(s) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]any{row[0], values[i]}); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "A", 32); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err == nil {
		_ = f.SetCellStyle(sheetName, "B2", "B2", style)
		_ = f.SetCellStyle(sheetName, "B5", "B5", style)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
