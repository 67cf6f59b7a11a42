package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/pdfchunk/internal/document"
)

// csvBatchSize is the number of data rows rendered per paragraph.
const csvBatchSize = 20

// CSVParser handles CSV files. Each row is rendered as "header: value"
// pairs so chunks stay readable without the header row.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &document.Document{
		Title:     titleFromFilename(filename),
		Extractor: "csv",
	}
	if len(records) == 0 {
		return doc, nil
	}

	headers := records[0]
	rows := records[1:]

	var b document.Builder
	for i := 0; i < len(rows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(rows))
		var text strings.Builder
		for _, row := range rows[i:end] {
			text.WriteString(renderRow(headers, row))
			text.WriteString("\n")
		}
		b.AddBlock(text.String())
	}
	doc.Text = b.Text()
	return doc, nil
}

func renderRow(headers, row []string) string {
	parts := make([]string, 0, len(row))
	for j, cell := range row {
		if j < len(headers) && headers[j] != "" {
			parts = append(parts, headers[j]+": "+cell)
		} else {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, ", ")
}
