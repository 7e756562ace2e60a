// Package tabular holds raw, column-labelled tables as they arrive from a
// ledger export, before any schema resolution or type coercion.
package tabular

import "strings"

// Table is a raw export table. Every cell is kept as text.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Set maps canonical table names to the raw tables supplied for them.
type Set map[string]*Table

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of column, or -1 when the table does not carry it.
func (t *Table) Index(column string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Cell returns the text at row/col. Short rows yield an empty cell.
func (t *Table) Cell(row, col int) string {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 {
		return ""
	}
	r := t.Rows[row]
	if col >= len(r) {
		return ""
	}
	return r[col]
}

// CleanHeader strips whitespace and stray byte-order marks from a header cell.
func CleanHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}

func newTable(name string, records [][]string) *Table {
	header := records[0]
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = CleanHeader(h)
	}
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if blankRecord(rec) {
			continue
		}
		rows = append(rows, rec)
	}
	return &Table{Name: name, Columns: columns, Rows: rows}
}

func blankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
