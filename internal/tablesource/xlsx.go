package tablesource

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX parses workbook content into a Table. The first sheet is
// used, its first non-empty row is the header, and empty rows are
// dropped.
func ParseXLSX(content []byte, name string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", name)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	var columns []string
	records := make([]Record, 0, len(rows))

	for _, cells := range rows {
		if isEmptyRow(cells) {
			continue
		}
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}

		if columns == nil {
			columns = cells
			continue
		}

		rec := make(Record, len(columns))
		for i, col := range columns {
			if i < len(cells) {
				rec[col] = cells[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}

	if columns == nil {
		return nil, fmt.Errorf("no header row found in %s", name)
	}

	return &Table{Name: name, Columns: columns, Records: records}, nil
}

// ReadXLSX loads a workbook from disk.
func ReadXLSX(path string) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseXLSX(content, filepath.Base(path))
}
