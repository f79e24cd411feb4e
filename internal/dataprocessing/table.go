package dataprocessing

import (
	"strings"
)

// Table is a header and its data rows as read from a source file.
// Rows may be shorter than Columns; missing cells read as empty.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of col, or -1.
func (t Table) Index(col string) int {
	for i, c := range t.Columns {
		if c == col {
			return i
		}
	}
	return -1
}

// Has reports whether col is present.
func (t Table) Has(col string) bool {
	return t.Index(col) >= 0
}

// Cell returns the trimmed value at column idx of row.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// newTable builds a Table from raw records, the first being the header.
// Fully blank records are skipped.
func newTable(records [][]string) Table {
	if len(records) == 0 {
		return Table{}
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return Table{Columns: header, Rows: rows}
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
