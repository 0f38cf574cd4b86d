// Package tablealign full-outer-joins two datasets on key columns.
//
// Rows come out in join order: left records in their original order, each
// followed by every right record sharing its key (in right order), or as a
// left-only row when none does; then the right records nobody matched, in
// right order. Duplicate keys produce the cross product of both sides.
package tablealign

import (
	"fmt"

	"doccompare/internal/domain"
)

// Options configures Align.
type Options struct {
	// KeyColumns identify a record; all must exist on both sides.
	KeyColumns []string
	// CaseSensitive compares string key values as-is. When false, string
	// keys are lower-cased for comparison only; reported values keep their
	// original casing.
	CaseSensitive bool
	// Strict rejects duplicate keys on either side instead of expanding them.
	Strict bool
}

// Alignment is the outcome of Align.
type Alignment struct {
	// Rows holds every joined row in join order.
	Rows []domain.JoinedRow
	// Matched holds the rows present on both sides, in join order.
	Matched []domain.JoinedRow
	// Unmatched holds the left-only and right-only rows, in join order.
	Unmatched []domain.JoinedRow
	// KeyColumns echoes the columns the rows were joined on.
	KeyColumns []string
	// LeftColumns and RightColumns are the column sets of the inputs.
	LeftColumns  []string
	RightColumns []string
}

// CommonColumns returns the columns present in both datasets, in the left
// dataset's order.
func CommonColumns(left, right domain.Dataset) []string {
	common := []string{}
	for _, c := range left.Columns {
		if right.HasColumn(c) {
			common = append(common, c)
		}
	}
	return common
}

// Align joins left and right on opts.KeyColumns. All validation happens
// before any row is joined; on error no partial result is returned.
//
// A dataset with neither columns nor records is treated as an empty input
// shaped like the other side, so comparing against it is not an error.
func Align(left, right domain.Dataset, opts Options) (*Alignment, error) {
	if len(opts.KeyColumns) == 0 {
		return nil, domain.ErrNoKeyColumns
	}
	left, right = adoptShape(left, right), adoptShape(right, left)

	if len(left.Columns) > 0 || len(right.Columns) > 0 {
		if len(CommonColumns(left, right)) == 0 {
			return nil, domain.ErrNoCommonColumns
		}
		for _, k := range opts.KeyColumns {
			if !left.HasColumn(k) {
				return nil, fmt.Errorf("%w: %q not in left dataset", domain.ErrKeyColumnMissing, k)
			}
			if !right.HasColumn(k) {
				return nil, fmt.Errorf("%w: %q not in right dataset", domain.ErrKeyColumnMissing, k)
			}
		}
	}

	j := joiner{keys: opts.KeyColumns, caseSensitive: opts.CaseSensitive}
	leftKeys, leftHashes := j.keysOf(left.Records)
	rightKeys, rightHashes := j.keysOf(right.Records)

	if opts.Strict {
		if err := checkUnique(leftKeys, leftHashes, "left"); err != nil {
			return nil, err
		}
		if err := checkUnique(rightKeys, rightHashes, "right"); err != nil {
			return nil, err
		}
	}

	byHash := make(map[string][]int, len(rightHashes))
	for i, h := range rightHashes {
		byHash[h] = append(byHash[h], i)
	}

	a := &Alignment{
		Rows:         make([]domain.JoinedRow, 0, len(left.Records)+len(right.Records)),
		Matched:      []domain.JoinedRow{},
		Unmatched:    []domain.JoinedRow{},
		KeyColumns:   opts.KeyColumns,
		LeftColumns:  left.Columns,
		RightColumns: right.Columns,
	}
	rightSeen := make([]bool, len(right.Records))
	for i, rec := range left.Records {
		partners := byHash[leftHashes[i]]
		if len(partners) == 0 {
			a.add(domain.JoinedRow{Key: leftKeys[i], Left: rec, Status: domain.MatchLeftOnly})
			continue
		}
		for _, p := range partners {
			rightSeen[p] = true
			a.add(domain.JoinedRow{Key: leftKeys[i], Left: rec, Right: right.Records[p], Status: domain.MatchBoth})
		}
	}
	for i, rec := range right.Records {
		if !rightSeen[i] {
			a.add(domain.JoinedRow{Key: rightKeys[i], Right: rec, Status: domain.MatchRightOnly})
		}
	}
	return a, nil
}

func (a *Alignment) add(row domain.JoinedRow) {
	a.Rows = append(a.Rows, row)
	if row.Status == domain.MatchBoth {
		a.Matched = append(a.Matched, row)
	} else {
		a.Unmatched = append(a.Unmatched, row)
	}
}

type joiner struct {
	keys          []string
	caseSensitive bool
}

// keysOf returns the reported key and the comparison hash of every record.
func (j joiner) keysOf(records []domain.Record) ([]domain.JoinKey, []string) {
	keys := make([]domain.JoinKey, len(records))
	hashes := make([]string, len(records))
	for i, rec := range records {
		key := make(domain.JoinKey, len(j.keys))
		norm := make(domain.JoinKey, len(j.keys))
		for c, col := range j.keys {
			v := rec.Get(col)
			key[c] = v
			if j.caseSensitive {
				norm[c] = v
			} else {
				norm[c] = v.Lower()
			}
		}
		keys[i] = key
		hashes[i] = norm.Hash()
	}
	return keys, hashes
}

func checkUnique(keys []domain.JoinKey, hashes []string, side string) error {
	seen := make(map[string]bool, len(hashes))
	for i, h := range hashes {
		if seen[h] {
			return fmt.Errorf("%w: %q appears more than once in %s dataset", domain.ErrDuplicateKey, keys[i].String(), side)
		}
		seen[h] = true
	}
	return nil
}

func adoptShape(d, other domain.Dataset) domain.Dataset {
	if len(d.Columns) == 0 && len(d.Records) == 0 {
		d.Columns = other.Columns
	}
	return d
}
