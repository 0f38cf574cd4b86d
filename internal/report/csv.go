package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"doccompare/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// diffColumns trail the key columns in the differences header row.
var diffColumns = []string{
	"Column",
	"File1",
	"File2",
	"Similarity",
	"Difference",
}

// Writer wraps csv.Writer for exporting cell differences as CSV.
type Writer struct {
	csv  *csv.Writer
	keys []string
}

// NewWriter creates a Writer that writes CSV to w. Key columns lead every
// row, in the given order.
func NewWriter(w io.Writer, keyColumns []string) *Writer {
	return &Writer{csv: csv.NewWriter(w), keys: keyColumns}
}

// WriteHeader writes the key columns followed by the difference columns.
func (w *Writer) WriteHeader() error {
	header := make([]string, 0, len(w.keys)+len(diffColumns))
	header = append(header, w.keys...)
	header = append(header, diffColumns...)
	return w.csv.Write(header)
}

// WriteDifferences writes one row per cell difference.
func (w *Writer) WriteDifferences(diffs []domain.CellDiff) error {
	for i := range diffs {
		if err := w.csv.Write(w.diffToRow(&diffs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// diffToRow converts a single difference to a row. The similarity column is
// left empty outside fuzzy mode.
func (w *Writer) diffToRow(d *domain.CellDiff) []string {
	row := make([]string, len(w.keys)+len(diffColumns))
	for i := range w.keys {
		if i < len(d.Key) {
			row[i] = d.Key[i].String()
		}
	}
	n := len(w.keys)
	row[n] = d.Column
	row[n+1] = d.Left.String()
	row[n+2] = d.Right.String()
	if d.Similarity != nil {
		row[n+3] = strconv.FormatFloat(*d.Similarity, 'f', 2, 64)
	}
	row[n+4] = DifferenceText(*d)
	return row
}

// WriteDifferencesCSV writes the BOM, header and every difference of tc.
func WriteDifferencesCSV(out io.Writer, tc domain.TableComparison) error {
	if _, err := out.Write(BOM); err != nil {
		return err
	}
	w := NewWriter(out, tc.KeyColumns)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteDifferences(tc.Differences); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "comparison"
	}
	return s
}

// BuildFilename returns a sanitized report filename.
// Format: {sanitized_name}_{YYYY-MM-DD}.{ext}
func BuildFilename(name, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", SanitizeFilename(name), now.Format("2006-01-02"), ext)
}
