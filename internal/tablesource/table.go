// Package tablesource reads and writes the tabular files that feed
// bulk reconciliation runs: CSV with delimiter and encoding detection,
// and XLSX workbooks.
package tablesource

import "strings"

// Record is one data row keyed by source column name.
type Record map[string]string

// Table is an ordered header row plus data records. Columns preserves
// the source column order so exports can reproduce the original shape.
type Table struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return len(t.Records) == 0
}

// Row returns the cells of one record in column order.
func (t *Table) Row(rec Record) []string {
	cells := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cells[i] = rec[col]
	}
	return cells
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
