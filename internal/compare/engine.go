// Package compare runs the comparison components with a shared set of
// options. It holds no state between calls.
package compare

import (
	"doccompare/internal/columndiff"
	"doccompare/internal/domain"
	"doccompare/internal/formatcmp"
	"doccompare/internal/linematch"
	"doccompare/internal/tablealign"
)

// Engine configures how expensive comparisons are carried out.
type Engine struct {
	// Workers bounds line-matching concurrency; zero means GOMAXPROCS.
	Workers int
	// Strategy selects the line pairing; nil means linematch.Greedy.
	Strategy linematch.Strategy
}

// Lines matches every line of left against right.
func (e Engine) Lines(left, right []string, opts domain.CompareOptions) (domain.LineComparison, error) {
	return linematch.Compare(left, right, linematch.Options{
		Threshold:  opts.Threshold,
		Workers:    e.Workers,
		Strategy:   e.Strategy,
		IgnoreCase: !opts.CaseSensitive,
	})
}

// Tables aligns left and right on the key columns and diffs the compare
// columns of the matched rows. When no key columns are given the first
// common column is used.
func (e Engine) Tables(left, right domain.Dataset, opts domain.CompareOptions) (domain.TableComparison, error) {
	keys := opts.KeyColumns
	if len(keys) == 0 && isBlank(left) && isBlank(right) {
		return domain.TableComparison{
			Matched:      []domain.JoinedRow{},
			Unmatched:    []domain.JoinedRow{},
			Differences:  []domain.CellDiff{},
			KeyColumns:   []string{},
			LeftColumns:  []string{},
			RightColumns: []string{},
		}, nil
	}
	if len(keys) == 0 {
		var err error
		if keys, err = DefaultKeyColumns(left, right); err != nil {
			return domain.TableComparison{}, err
		}
	}

	a, err := tablealign.Align(left, right, tablealign.Options{
		KeyColumns:    keys,
		CaseSensitive: opts.CaseSensitive,
		Strict:        opts.StrictKeys,
	})
	if err != nil {
		return domain.TableComparison{}, err
	}

	return domain.TableComparison{
		Matched:   a.Matched,
		Unmatched: a.Unmatched,
		Differences: columndiff.Diff(a, columndiff.Options{
			CompareColumns: opts.CompareColumns,
			Fuzzy:          opts.FuzzyMode,
		}),
		KeyColumns:   a.KeyColumns,
		LeftColumns:  a.LeftColumns,
		RightColumns: a.RightColumns,
	}, nil
}

// Formats compares paragraph styles by position.
func (e Engine) Formats(left, right []domain.Paragraph) domain.FormatComparison {
	return formatcmp.Compare(left, right)
}

func isBlank(d domain.Dataset) bool {
	return len(d.Columns) == 0 && len(d.Records) == 0
}

// DefaultKeyColumns returns the first column shared by both datasets. A
// blank dataset takes the shape of the other side.
func DefaultKeyColumns(left, right domain.Dataset) ([]string, error) {
	if isBlank(left) {
		left = right
	} else if isBlank(right) {
		right = left
	}
	common := tablealign.CommonColumns(left, right)
	if len(common) == 0 {
		return nil, domain.ErrNoCommonColumns
	}
	return common[:1], nil
}
