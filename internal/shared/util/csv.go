package util

import "strings"

// QuotedCSV renders a header line followed by one line per row. Header names
// are written bare; every data cell is wrapped in double quotes with embedded
// quotes doubled. Lines are joined with "\n" and there is no trailing newline.
// Rows shorter than the header get "" for the missing cells.
func QuotedCSV(headers []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(headers, ","))
	for _, row := range rows {
		b.WriteByte('\n')
		for i := range headers {
			if i > 0 {
				b.WriteByte(',')
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		}
	}
	return b.String()
}
