// Package export renders report tables as delimited text.
package export

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Total is a named summary figure shown alongside a table.
type Total struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Table is a report flattened to canonical column names and text cells.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Totals  []Total
}

// Records returns the rows keyed by column name.
func (t Table) Records() []map[string]string {
	out := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				rec[h] = row[j]
			} else {
				rec[h] = ""
			}
		}
		out[i] = rec
	}
	return out
}

// FormatDecimal renders an amount with exactly two decimals.
func FormatDecimal(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatInt renders a nullable integer; null is an empty cell.
func FormatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// FormatString renders a nullable string; null is an empty cell.
func FormatString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// FormatDate renders a nullable date as YYYY-MM-DD.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
