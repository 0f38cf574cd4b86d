package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LineMatch pairs one source line with the best-scoring target line.
// Target is nil when the line is unmatched or no candidate exists.
type LineMatch struct {
	Source string  `json:"source"`
	Target *string `json:"target"`
	Score  int     `json:"score"`
}

// LineComparison partitions every source line into matched or unmatched.
type LineComparison struct {
	Matched   []LineMatch `json:"matched"`
	Unmatched []LineMatch `json:"unmatched"`
}

// Record maps a column name to its cell value.
type Record map[string]Value

// Get returns the value for col, or Null when the column is absent.
func (r Record) Get(col string) Value {
	if r == nil {
		return NullValue()
	}
	return r[col]
}

// Dataset is an ordered sequence of records sharing Columns.
type Dataset struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// HasColumn reports whether col is part of the dataset's column set.
func (d Dataset) HasColumn(col string) bool {
	for _, c := range d.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// JoinKey is the ordered tuple of key-column values of a record.
type JoinKey []Value

// String renders the key for display, values separated by " | ".
func (k JoinKey) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = v.String()
	}
	return strings.Join(parts, " | ")
}

// Hash returns a map key that is equal for two keys exactly when all their
// values are pairwise Equal.
func (k JoinKey) Hash() string {
	var b strings.Builder
	for _, v := range k {
		b.WriteString(v.hashKey())
	}
	return b.String()
}

// JoinedRow is one row of the outer join. Left or Right is nil when the
// row exists on one side only.
type JoinedRow struct {
	Key    JoinKey     `json:"key"`
	Left   Record      `json:"left"`
	Right  Record      `json:"right"`
	Status MatchStatus `json:"status"`
}

// CellDiff reports one differing (row, column) pair. Similarity is set in
// fuzzy mode only, as a percentage rounded to two decimals.
type CellDiff struct {
	Key        JoinKey  `json:"key"`
	Column     string   `json:"column"`
	Left       Value    `json:"left"`
	Right      Value    `json:"right"`
	Similarity *float64 `json:"similarity"`
}

// TableComparison is the outcome of aligning and diffing two datasets.
// The column sets describe the inputs so rows can be laid out for reports.
type TableComparison struct {
	Matched      []JoinedRow `json:"matched"`
	Unmatched    []JoinedRow `json:"unmatched"`
	Differences  []CellDiff  `json:"differences"`
	KeyColumns   []string    `json:"key_columns"`
	LeftColumns  []string    `json:"left_columns"`
	RightColumns []string    `json:"right_columns"`
}

// Paragraph is a block of document text with its style name.
type Paragraph struct {
	Text  string `json:"text"`
	Style string `json:"style"`
}

// FormatMismatch reports positionally paired paragraphs with different styles.
type FormatMismatch struct {
	Index      int    `json:"index"`
	LeftStyle  string `json:"left_style"`
	RightStyle string `json:"right_style"`
	LeftText   string `json:"left_text"`
	RightText  string `json:"right_text"`
}

// FormatComparison lists style mismatches. Unpaired counts trailing
// paragraphs of the longer document that were never compared.
type FormatComparison struct {
	Mismatches []FormatMismatch `json:"mismatches"`
	Unpaired   int              `json:"unpaired"`
}

// CompareOptions configures a single comparison.
type CompareOptions struct {
	Threshold      int      `json:"threshold"`
	KeyColumns     []string `json:"key_columns,omitempty"`
	CompareColumns []string `json:"compare_columns,omitempty"`
	CaseSensitive  bool     `json:"case_sensitive"`
	FuzzyMode      bool     `json:"fuzzy_mode"`
	StrictKeys     bool     `json:"strict_keys"`
}

// DefaultThreshold is the similarity score a line needs to count as matched.
const DefaultThreshold = 80

// DefaultCompareOptions returns the built-in comparison defaults.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{
		Threshold:     DefaultThreshold,
		CaseSensitive: true,
	}
}

// Summary holds the matched/unmatched split used for charts.
type Summary struct {
	Matched          int     `json:"matched"`
	Unmatched        int     `json:"unmatched"`
	Differences      int     `json:"differences"`
	MatchedPercent   float64 `json:"matched_percent"`
	UnmatchedPercent float64 `json:"unmatched_percent"`
}

// ComparisonRun is the persisted summary of one comparison.
type ComparisonRun struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	Owner           string          `db:"owner" json:"owner"`
	Kind            ComparisonKind  `db:"kind" json:"kind"`
	LeftName        string          `db:"left_name" json:"left_name"`
	RightName       string          `db:"right_name" json:"right_name"`
	Options         json.RawMessage `db:"options" json:"options"`
	MatchedCount    int             `db:"matched_count" json:"matched_count"`
	UnmatchedCount  int             `db:"unmatched_count" json:"unmatched_count"`
	DifferenceCount int             `db:"difference_count" json:"difference_count"`
	Status          RunStatus       `db:"status" json:"status"`
	Error           string          `db:"error" json:"error,omitempty"`
	ReportBucket    string          `db:"report_bucket" json:"-"`
	ReportKey       string          `db:"report_key" json:"report_key,omitempty"`
	DurationMS      int64           `db:"duration_ms" json:"duration_ms"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}
