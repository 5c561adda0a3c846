package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// rowsPerSection bounds how many rows go under one heading.
const rowsPerSection = 20

// CSVImporter renders a CSV file as a header summary followed by sections of
// rows. The first record holds the column names.
type CSVImporter struct{}

func (p *CSVImporter) Import(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return newDocument(filename, "", nil), nil
	}

	headers := records[0]
	cols := make([]string, len(headers))
	for i, h := range headers {
		cols[i] = "`" + cellText(h) + "`"
	}
	blocks := []string{"Columns: " + strings.Join(cols, ", ")}

	rows := records[1:]
	for i := 0; i < len(rows); i += rowsPerSection {
		end := min(i+rowsPerSection, len(rows))

		blocks = append(blocks, headingLine(2, fmt.Sprintf("Rows %d-%d", i+1, end)))
		var items []string
		for _, row := range rows[i:end] {
			if line := rowLine(headers, row); line != "" {
				items = append(items, "- "+line)
			}
		}
		if len(items) > 0 {
			blocks = append(blocks, strings.Join(items, "\n"))
		}
	}

	return newDocument(filename, "", blocks), nil
}

func rowLine(headers, row []string) string {
	var parts []string
	for j, cell := range row {
		cell = literal(cellText(cell))
		if cell == "" {
			continue
		}
		if label := columnLabel(headers, j); label != "" {
			parts = append(parts, "**"+label+"**: "+cell)
		} else {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, ", ")
}

func columnLabel(headers []string, j int) string {
	if j >= len(headers) {
		return ""
	}
	return stripMarkup(headers[j])
}

// cellText flattens a cell onto one line.
func cellText(s string) string {
	return collapse(strings.ReplaceAll(s, "`", "'"))
}
