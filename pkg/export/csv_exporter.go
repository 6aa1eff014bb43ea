package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// ByteOrderMark prefixes CSV output so spreadsheet tools detect UTF-8.
const ByteOrderMark = "\uFEFF"

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// CSVExporter renders Dataset records into BOM-prefixed CSV bytes with "\n"
// line endings. A field is quoted only when it holds a quote, comma or newline.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	buf.WriteString(ByteOrderMark)
	writeRecord(buf, data.Headers)
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		buf.WriteByte('\n')
		writeRecord(buf, record)
	}
	return buf.Bytes(), nil
}

func writeRecord(buf *bytes.Buffer, record []string) {
	for i, field := range record {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(Escape(field))
	}
}

// Escape quotes a field containing a quote, comma or newline and doubles embedded quotes.
func Escape(field string) string {
	if !strings.ContainsAny(field, "\",\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ParseCSV reads CSV content into a header and body records. A leading
// byte-order mark is dropped and short rows are allowed.
func ParseCSV(content string) ([]string, [][]string, error) {
	content = strings.TrimPrefix(content, ByteOrderMark)
	if strings.TrimSpace(content) == "" {
		return nil, nil, nil
	}
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}
	return records[0], records[1:], nil
}
