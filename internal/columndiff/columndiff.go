// Package columndiff reports cell-level differences between joined rows.
package columndiff

import (
	"slices"

	"doccompare/internal/domain"
	"doccompare/internal/similarity"
	"doccompare/internal/tablealign"
)

// Options configures Diff.
type Options struct {
	// CompareColumns are checked in order. Columns missing from either side,
	// and key columns, are skipped without error.
	CompareColumns []string
	// Fuzzy attaches a similarity percentage to every emitted diff.
	Fuzzy bool
}

// Diff emits one CellDiff for every matched row and compare column whose
// left and right values are not Equal. Output is column-major: all diffs of
// the first compare column in join order, then the next column. The
// similarity in fuzzy mode annotates a diff and never suppresses one.
func Diff(a *tablealign.Alignment, opts Options) []domain.CellDiff {
	diffs := []domain.CellDiff{}
	if a == nil {
		return diffs
	}
	for _, col := range Columns(a, opts.CompareColumns) {
		for _, row := range a.Matched {
			l, r := row.Left.Get(col), row.Right.Get(col)
			if l.Equal(r) {
				continue
			}
			d := domain.CellDiff{Key: row.Key, Column: col, Left: l, Right: r}
			if opts.Fuzzy {
				pct := similarity.Percent(l.String(), r.String())
				d.Similarity = &pct
			}
			diffs = append(diffs, d)
		}
	}
	return diffs
}

// Columns filters requested down to the columns Diff will actually compare.
func Columns(a *tablealign.Alignment, requested []string) []string {
	out := []string{}
	for _, col := range requested {
		if slices.Contains(a.KeyColumns, col) {
			continue
		}
		if !slices.Contains(a.LeftColumns, col) || !slices.Contains(a.RightColumns, col) {
			continue
		}
		if slices.Contains(out, col) {
			continue
		}
		out = append(out, col)
	}
	return out
}
