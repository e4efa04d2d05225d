package document

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractPDF pulls plain text out of a PDF. Pages that fail to decode are
// skipped so one broken page does not lose the rest of the document.
func ExtractPDF(data io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	var buf strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		buf.WriteString("\n")
	}
	return strings.TrimSpace(buf.String()), nil
}

// RenderCSV reads tabular rows and renders them as prompt-friendly text: a
// header line followed by one "col=value" row per record, capped at maxRows
// to keep the completion request bounded.
func RenderCSV(r io.Reader, maxRows int) (string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return "", fmt.Errorf("empty CSV file")
	}
	if err != nil {
		return "", fmt.Errorf("read CSV header: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("Columns: ")
	buf.WriteString(strings.Join(header, ", "))
	buf.WriteString("\n")

	rows := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read CSV row %d: %w", rows+1, err)
		}

		if maxRows > 0 && rows >= maxRows {
			buf.WriteString("... (truncated)\n")
			break
		}

		fields := make([]string, 0, len(record))
		for i, v := range record {
			name := fmt.Sprintf("col%d", i+1)
			if i < len(header) {
				name = header[i]
			}
			fields = append(fields, fmt.Sprintf("%s=%s", name, v))
		}
		buf.WriteString(strings.Join(fields, ", "))
		buf.WriteString("\n")
		rows++
	}

	if rows == 0 {
		return "", fmt.Errorf("CSV file has no data rows")
	}
	return buf.String(), nil
}
