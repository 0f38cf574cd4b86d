package domain

// MatchStatus tags the origin of a joined row.
type MatchStatus string

const (
	MatchBoth      MatchStatus = "both"
	MatchLeftOnly  MatchStatus = "left_only"
	MatchRightOnly MatchStatus = "right_only"
)

// FileType represents the accepted upload formats.
type FileType string

const (
	FileTypeTXT  FileType = "txt"
	FileTypeDOCX FileType = "docx"
	FileTypePDF  FileType = "pdf"
	FileTypeXLSX FileType = "xlsx"
)

// DocumentExtensions maps file extensions (without dot) to text document types.
var DocumentExtensions = map[string]FileType{
	"txt":  FileTypeTXT,
	"docx": FileTypeDOCX,
	"pdf":  FileTypePDF,
}

// SpreadsheetExtensions maps file extensions (without dot) to spreadsheet types.
var SpreadsheetExtensions = map[string]FileType{
	"xlsx": FileTypeXLSX,
	"xlsm": FileTypeXLSX,
}

// ReportContentTypes maps report extensions to their MIME type.
var ReportContentTypes = map[string]string{
	"txt":  "text/plain; charset=utf-8",
	"csv":  "text/csv; charset=utf-8",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ComparisonKind distinguishes document from spreadsheet comparisons.
type ComparisonKind string

const (
	ComparisonKindDocument ComparisonKind = "document"
	ComparisonKindTable    ComparisonKind = "table"
)

// RunStatus represents the outcome of a comparison run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)
