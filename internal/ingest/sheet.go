package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// oleSignature prefixes legacy BIFF (.xls) workbooks.
var oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// workbookText renders every sheet in workbook order as
// "Sheet: <name>\n<csv>\n\n" and trims the trailing whitespace of the result.
func workbookText(data []byte) (string, error) {
	if bytes.HasPrefix(data, oleSignature) {
		return "", fmt.Errorf("%w: legacy .xls workbook", ErrUnsupportedFormat)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}
	defer f.Close()

	var out strings.Builder
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return "", fmt.Errorf("%w: sheet %q: %v", ErrUnreadableDocument, name, err)
		}
		grid, err := gridCSV(rows)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&out, "Sheet: %s\n%s\n\n", name, grid)
	}
	return strings.TrimSpace(out.String()), nil
}

// gridCSV writes rows padded to the widest row, comma separated with minimal
// quoting and "\n" between rows.
func gridCSV(rows [][]string) (string, error) {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		if err := w.Write(padded); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
