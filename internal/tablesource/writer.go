package tablesource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const errorColumn = "error"

// FailedPath derives the retry-file path from the source path:
// <stem>_failed.csv next to the original. The export is always CSV,
// even when the source was a workbook.
func FailedPath(sourcePath string) string {
	dir := filepath.Dir(sourcePath)
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if strings.EqualFold(ext, ".xlsx") || ext == "" {
		ext = ".csv"
	}
	return filepath.Join(dir, stem+"_failed"+ext)
}

// FailedTable builds the retry table: same columns as the source plus
// a trailing error column, restricted to the given records. reasons
// runs parallel to records.
func FailedTable(src *Table, records []Record, reasons []string) *Table {
	columns := make([]string, 0, len(src.Columns)+1)
	columns = append(columns, src.Columns...)
	columns = append(columns, errorColumn)

	out := make([]Record, len(records))
	for i, rec := range records {
		failed := make(Record, len(rec)+1)
		for k, v := range rec {
			failed[k] = v
		}
		failed[errorColumn] = reasons[i]
		out[i] = failed
	}

	return &Table{Name: src.Name, Columns: columns, Records: out}
}

// WriteCSV writes a table as UTF-8 comma-delimited CSV, quoting cells
// that contain delimiters, quotes or newlines.
func WriteCSV(t *Table, path string) error {
	var b strings.Builder

	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteCell(cell))
		}
		b.WriteByte('\n')
	}

	writeRow(t.Columns)
	for _, rec := range t.Records {
		writeRow(t.Row(rec))
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func quoteCell(cell string) string {
	if !strings.ContainsAny(cell, ",\"\n\r") {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}
