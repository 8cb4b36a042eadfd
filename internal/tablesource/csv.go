package tablesource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/winback/message-service/internal/tablesource/charset"
)

// ParseCSV parses raw CSV content into a Table. Encoding and delimiter
// are detected from the content; the first non-empty line is the
// header and empty data rows are dropped. Short rows are padded so
// every record carries every column.
func ParseCSV(content []byte, name string) (*Table, error) {
	enc := charset.DetectEncoding(content)
	decoded, err := charset.Decode(content, enc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode content: %w", err)
	}

	delim := DetectDelimiter(decoded)
	delimRune := rune(delim[0])

	decoded = strings.ReplaceAll(decoded, "\r\n", "\n")
	lines := splitRecords(decoded)

	var columns []string
	records := make([]Record, 0, len(lines))

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := SplitLine(line, delimRune, '"')
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}

		if columns == nil {
			columns = cells
			continue
		}
		if isEmptyRow(cells) {
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

// splitRecords splits content into logical records, tracking quote
// parity so a newline inside an open quoted cell stays part of its
// record. WriteCSV quotes cells containing newlines, and the
// failed-rows export has to re-import cleanly.
func splitRecords(content string) []string {
	lines := strings.Split(content, "\n")
	records := make([]string, 0, len(lines))
	open := false
	for _, line := range lines {
		if open {
			records[len(records)-1] += "\n" + line
		} else {
			records = append(records, line)
		}
		// Doubled escape quotes cancel out, so an odd count means the
		// line opens or closes a quoted cell.
		if strings.Count(line, `"`)%2 == 1 {
			open = !open
		}
	}
	return records
}

// Parse parses in-memory content, dispatching on the extension of name
// the same way ReadFile dispatches on path.
func Parse(content []byte, name string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return ParseXLSX(content, name)
	}
	return ParseCSV(content, name)
}

// ReadFile loads a table from disk, dispatching on extension: .xlsx is
// read as a workbook, everything else as delimited text.
func ReadFile(path string) (*Table, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return ReadXLSX(path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseCSV(content, filepath.Base(path))
}
