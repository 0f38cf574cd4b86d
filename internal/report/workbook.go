package report

import (
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"doccompare/internal/domain"
)

// Sheet names of the table report workbook.
const (
	SheetMatched     = "Matched Rows"
	SheetUnmatched   = "Unmatched Rows"
	SheetDifferences = "Column Differences"
)

const (
	suffixLeft  = "_File1"
	suffixRight = "_File2"
	mergeColumn = "_merge"
)

// WriteTableWorkbook writes the three-sheet XLSX report of a table
// comparison. Row sheets lay columns out like an outer merge: key columns
// once, overlapping columns suffixed with _File1 and _File2, and a trailing
// _merge indicator.
func WriteTableWorkbook(w io.Writer, tc domain.TableComparison) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetMatched); err != nil {
		return fmt.Errorf("report.WriteTableWorkbook: %w", err)
	}
	for _, name := range []string{SheetUnmatched, SheetDifferences} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("report.WriteTableWorkbook: %w", err)
		}
	}

	layout := newMergeLayout(tc)
	if err := writeSheet(f, SheetMatched, layout.header, layout.rows(tc.Matched)); err != nil {
		return err
	}
	if err := writeSheet(f, SheetUnmatched, layout.header, layout.rows(tc.Unmatched)); err != nil {
		return err
	}
	if err := writeSheet(f, SheetDifferences, differencesHeader(tc.KeyColumns), differenceRows(tc)); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("report.WriteTableWorkbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("report.writeSheet %s: %w", sheet, err)
	}
	head := make([]interface{}, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := sw.SetRow("A1", head); err != nil {
		return fmt.Errorf("report.writeSheet %s: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("report.writeSheet %s: %w", sheet, err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("report.writeSheet %s: %w", sheet, err)
		}
	}
	return sw.Flush()
}

type columnSource int

const (
	fromKey columnSource = iota
	fromLeft
	fromRight
)

type mergeColumnDef struct {
	source columnSource
	name   string
	index  int // key position for fromKey
}

// mergeLayout is the column order of a joined row in the report.
type mergeLayout struct {
	header []string
	cols   []mergeColumnDef
}

func newMergeLayout(tc domain.TableComparison) mergeLayout {
	var l mergeLayout
	for _, c := range tc.LeftColumns {
		if i := slices.Index(tc.KeyColumns, c); i >= 0 {
			l.add(c, mergeColumnDef{source: fromKey, name: c, index: i})
			continue
		}
		header := c
		if slices.Contains(tc.RightColumns, c) {
			header = c + suffixLeft
		}
		l.add(header, mergeColumnDef{source: fromLeft, name: c})
	}
	for _, c := range tc.RightColumns {
		if slices.Contains(tc.KeyColumns, c) {
			continue
		}
		header := c
		if slices.Contains(tc.LeftColumns, c) {
			header = c + suffixRight
		}
		l.add(header, mergeColumnDef{source: fromRight, name: c})
	}
	l.header = append(l.header, mergeColumn)
	return l
}

func (l *mergeLayout) add(header string, def mergeColumnDef) {
	l.header = append(l.header, header)
	l.cols = append(l.cols, def)
}

func (l mergeLayout) rows(joined []domain.JoinedRow) [][]interface{} {
	out := make([][]interface{}, len(joined))
	for i, r := range joined {
		row := make([]interface{}, 0, len(l.cols)+1)
		for _, c := range l.cols {
			var v domain.Value
			switch c.source {
			case fromKey:
				if c.index < len(r.Key) {
					v = r.Key[c.index]
				}
			case fromLeft:
				v = r.Left.Get(c.name)
			case fromRight:
				v = r.Right.Get(c.name)
			}
			row = append(row, cellOf(v))
		}
		row = append(row, string(r.Status))
		out[i] = row
	}
	return out
}

func differencesHeader(keys []string) []string {
	return append([]string{"Difference"}, keys...)
}

func differenceRows(tc domain.TableComparison) [][]interface{} {
	out := make([][]interface{}, len(tc.Differences))
	for i, d := range tc.Differences {
		row := make([]interface{}, 0, len(d.Key)+1)
		row = append(row, DifferenceText(d))
		for _, k := range d.Key {
			row = append(row, cellOf(k))
		}
		out[i] = row
	}
	return out
}

// cellOf converts a value into the type excelize writes natively. Null
// becomes an empty string.
func cellOf(v domain.Value) interface{} {
	switch v.Kind() {
	case domain.KindNumber:
		return v.Number()
	case domain.KindBool:
		return v.Bool()
	case domain.KindString:
		return v.Text()
	case domain.KindTime:
		return v.String()
	default:
		return ""
	}
}
