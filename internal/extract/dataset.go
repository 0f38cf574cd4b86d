package extract

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"doccompare/internal/domain"
)

// ReadDataset reads one worksheet into a Dataset. An empty sheet name selects
// the first sheet. The first non-empty row is the header; blank header cells
// are named "Unnamed: N" after their zero-based position and repeated names
// get ".1", ".2" suffixes. Fully empty rows are dropped.
func ReadDataset(r io.Reader, sheet string) (domain.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: open workbook: %v", domain.ErrExtractionFailed, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return domain.Dataset{Columns: []string{}, Records: []domain.Record{}}, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: read sheet %q: %v", domain.ErrExtractionFailed, sheet, err)
	}

	headerIdx := -1
	for i, row := range rows {
		if !blankRow(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return domain.Dataset{Columns: []string{}, Records: []domain.Record{}}, nil
	}

	width := 0
	for _, row := range rows[headerIdx:] {
		width = max(width, len(row))
	}
	columns := headerNames(rows[headerIdx], width)

	records := []domain.Record{}
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if blankRow(row) {
			continue
		}
		rec := make(domain.Record, len(columns))
		for c, col := range columns {
			if c >= len(row) {
				rec[col] = domain.NullValue()
				continue
			}
			rec[col] = cellValue(f, sheet, c+1, i+1, row[c])
		}
		records = append(records, rec)
	}

	return domain.Dataset{Columns: columns, Records: records}, nil
}

// SheetNames lists the worksheets of a workbook in tab order.
func SheetNames(r io.Reader) ([]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", domain.ErrExtractionFailed, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func headerNames(header []string, width int) []string {
	columns := make([]string, width)
	seen := make(map[string]bool, width)
	for i := range columns {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for n := 1; seen[name]; n++ {
			name = base + "." + strconv.Itoa(n)
		}
		seen[name] = true
		columns[i] = name
	}
	return columns
}

// cellValue types a raw cell string. Cells stored as text stay strings even
// when they look numeric; untyped cells are parsed.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) domain.Value {
	if raw == "" {
		return domain.NullValue()
	}
	if cell, err := excelize.CoordinatesToCellName(col, row); err == nil {
		if t, err := f.GetCellType(sheet, cell); err == nil {
			switch t {
			case excelize.CellTypeBool:
				return domain.BoolValue(raw == "1" || raw == "TRUE")
			case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
				return domain.StringValue(raw)
			}
		}
	}
	return ParseCell(raw)
}

// ParseCell converts a cell's text into a typed value: numbers become
// Number, TRUE and FALSE become Bool, everything else stays a String.
func ParseCell(s string) domain.Value {
	if s == "" {
		return domain.NullValue()
	}
	switch s {
	case "TRUE":
		return domain.BoolValue(true)
	case "FALSE":
		return domain.BoolValue(false)
	}
	if looksNumeric(s) {
		if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(n, 0) && !math.IsNaN(n) {
			return domain.NumberValue(n)
		}
	}
	return domain.StringValue(s)
}

// looksNumeric rules out the spellings ParseFloat accepts that a
// spreadsheet would not treat as numbers, such as "Inf" or "0x1p4".
func looksNumeric(s string) bool {
	if strings.ContainsAny(s, "xX_") {
		return false
	}
	c := s[0]
	if c == '+' || c == '-' {
		if len(s) == 1 {
			return false
		}
		c = s[1]
	}
	return c == '.' || (c >= '0' && c <= '9')
}
