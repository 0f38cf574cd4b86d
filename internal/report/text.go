// Package report renders comparison results as downloadable files and
// chart-ready summaries.
package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"znkr.io/diff/textdiff"

	"doccompare/internal/domain"
)

// WriteLineReport writes one line per LineMatch: every matched pair as
// "Matched: ('src', 'tgt', score)" followed by every unmatched line as
// "Unmatched: ('src', None, score)". Lines are separated, not terminated,
// by newlines.
func WriteLineReport(w io.Writer, lc domain.LineComparison) error {
	bw := bufio.NewWriter(w)
	first := true
	emit := func(label string, m domain.LineMatch) {
		if !first {
			bw.WriteByte('\n')
		}
		first = false
		target := "None"
		if m.Target != nil {
			target = quote(*m.Target)
		}
		fmt.Fprintf(bw, "%s: (%s, %s, %d)", label, quote(m.Source), target, m.Score)
	}
	for _, m := range lc.Matched {
		emit("Matched", m)
	}
	for _, m := range lc.Unmatched {
		emit("Unmatched", m)
	}
	return bw.Flush()
}

// quote renders s in single quotes, switching to double quotes when s
// contains a single quote and no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteByte(q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// MatchLine formats a matched pair the way it is shown to users.
func MatchLine(m domain.LineMatch) string {
	target := ""
	if m.Target != nil {
		target = *m.Target
	}
	return fmt.Sprintf("File1: %s | File2: %s | Similarity: %d%%", m.Source, target, m.Score)
}

// UnmatchedLine formats an unmatched line the way it is shown to users.
func UnmatchedLine(m domain.LineMatch) string {
	return fmt.Sprintf("File1: %s | Similarity Score: %d%%", m.Source, m.Score)
}

// DifferenceText renders a cell difference as
// "File1: x | File2: y", with " | Similarity: s%" appended in fuzzy mode.
func DifferenceText(d domain.CellDiff) string {
	s := fmt.Sprintf("File1: %s | File2: %s", d.Left.String(), d.Right.String())
	if d.Similarity != nil {
		s += " | Similarity: " + formatPercent(*d.Similarity) + "%"
	}
	return s
}

// FormatMismatchLine describes a style mismatch between two paragraphs.
func FormatMismatchLine(m domain.FormatMismatch) string {
	return fmt.Sprintf("Mismatch in styles: '%s' vs '%s'", m.LeftText, m.RightText)
}

// Summarize returns the chart data for a comparison: counts and the share
// of matched versus unmatched items as percentages with one decimal.
func Summarize(matched, unmatched, differences int) domain.Summary {
	s := domain.Summary{Matched: matched, Unmatched: unmatched, Differences: differences}
	if total := matched + unmatched; total > 0 {
		s.MatchedPercent = round1(100 * float64(matched) / float64(total))
		s.UnmatchedPercent = round1(100 * float64(unmatched) / float64(total))
	}
	return s
}

// UnifiedDiff renders a positional unified diff of two documents' lines.
// It returns "" when both sides are identical.
func UnifiedDiff(left, right []string) string {
	return textdiff.Unified(joinLines(left), joinLines(right))
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
