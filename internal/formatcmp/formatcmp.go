// Package formatcmp compares paragraph styles of two documents by position.
package formatcmp

import "doccompare/internal/domain"

// Compare pairs paragraphs by index and reports every pair whose style
// differs. Only the first min(len(left), len(right)) paragraphs are paired;
// the rest of the longer document is counted in Unpaired, not compared.
func Compare(left, right []domain.Paragraph) domain.FormatComparison {
	n := min(len(left), len(right))
	out := domain.FormatComparison{
		Mismatches: []domain.FormatMismatch{},
		Unpaired:   max(len(left), len(right)) - n,
	}
	for i := 0; i < n; i++ {
		l, r := left[i], right[i]
		if l.Style == r.Style {
			continue
		}
		out.Mismatches = append(out.Mismatches, domain.FormatMismatch{
			Index:      i,
			LeftStyle:  l.Style,
			RightStyle: r.Style,
			LeftText:   l.Text,
			RightText:  r.Text,
		})
	}
	return out
}
