package service_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"doccompare/internal/config"
	"doccompare/internal/domain"
	"doccompare/internal/port"
	"doccompare/internal/service"
	"doccompare/mocks"
)

func testCompareConfig() config.CompareConfig {
	return config.CompareConfig{Threshold: 80, CaseSensitive: true, Timeout: time.Minute}
}

func newComparisonService(runs *mocks.MockComparisonRunRepo, storage port.ObjectStorage, bucket string) service.ComparisonService {
	return service.NewComparisonService(runs, storage, config.S3Config{Bucket: bucket, PresignExpiry: 900}, testCompareConfig())
}

func runWith(status domain.RunStatus, matched, unmatched, diffs int) interface{} {
	return mock.MatchedBy(func(r *domain.ComparisonRun) bool {
		return r.Owner == "ci" &&
			r.Status == status &&
			r.MatchedCount == matched &&
			r.UnmatchedCount == unmatched &&
			r.DifferenceCount == diffs
	})
}

const stylesXML = `<?xml version="1.0" encoding="UTF-8"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
  <w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/></w:style>
</w:styles>`

func buildDocx(t *testing.T, titleStyle string, lines ...string) []byte {
	t.Helper()
	var body strings.Builder
	for i, l := range lines {
		body.WriteString("<w:p>")
		if i == 0 {
			body.WriteString(`<w:pPr><w:pStyle w:val="` + titleStyle + `"/></w:pPr>`)
		}
		body.WriteString("<w:r><w:t>" + l + "</w:t></w:r></w:p>")
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{"word/document.xml": doc, "word/styles.xml": stylesXML} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func textInput() service.DocumentCompareInput {
	return service.DocumentCompareInput{
		Owner:   "ci",
		Left:    service.FileInput{Name: "old.txt", Data: []byte("Hello world\nFoo bar\n")},
		Right:   service.FileInput{Name: "new.txt", Data: []byte("Hello world\nQux\n")},
		Options: domain.CompareOptions{Threshold: 80, CaseSensitive: true},
	}
}

func TestComparisonService_CompareDocuments_Text(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	svc := newComparisonService(runs, nil, "")

	runs.On("Create", mock.Anything, runWith(domain.RunStatusCompleted, 1, 1, 0)).Return(nil)

	input := textInput()
	input.Unified = true
	result, err := svc.CompareDocuments(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, result.Lines.Matched, 1)
	assert.Equal(t, "Hello world", result.Lines.Matched[0].Source)
	assert.Equal(t, 100, result.Lines.Matched[0].Score)
	require.Len(t, result.Lines.Unmatched, 1)
	assert.Equal(t, "Foo bar", result.Lines.Unmatched[0].Source)
	assert.Nil(t, result.Format)
	assert.Contains(t, result.UnifiedDiff, "-Foo bar")
	assert.Contains(t, result.UnifiedDiff, "+Qux")
	assert.Equal(t, 50.0, result.Summary.MatchedPercent)

	assert.Equal(t, domain.ComparisonKindDocument, result.Run.Kind)
	assert.Equal(t, "old.txt", result.Run.LeftName)
	assert.Empty(t, result.Run.ReportKey)
	assert.JSONEq(t, `{"threshold":80,"case_sensitive":true,"fuzzy_mode":false,"strict_keys":false}`, string(result.Run.Options))
	runs.AssertExpectations(t)
}

func TestComparisonService_CompareDocuments_DocxFormats(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	svc := newComparisonService(runs, nil, "")

	runs.On("Create", mock.Anything, runWith(domain.RunStatusCompleted, 2, 0, 1)).Return(nil)

	result, err := svc.CompareDocuments(context.Background(), service.DocumentCompareInput{
		Owner:   "ci",
		Left:    service.FileInput{Name: "a.docx", Data: buildDocx(t, "Title", "Annual plan", "Budget")},
		Right:   service.FileInput{Name: "b.docx", Data: buildDocx(t, "Heading1", "Annual plan", "Budget")},
		Options: domain.CompareOptions{Threshold: 80, CaseSensitive: true},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Format)
	require.Len(t, result.Format.Mismatches, 1)
	assert.Equal(t, "Title", result.Format.Mismatches[0].LeftStyle)
	assert.Equal(t, "Heading 1", result.Format.Mismatches[0].RightStyle)
	assert.Equal(t, 1, result.Summary.Differences)
	runs.AssertExpectations(t)
}

func TestComparisonService_CompareDocuments_MixedTypesSkipFormats(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	svc := newComparisonService(runs, nil, "")
	runs.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.CompareDocuments(context.Background(), service.DocumentCompareInput{
		Owner:   "ci",
		Left:    service.FileInput{Name: "a.docx", Data: buildDocx(t, "Title", "Annual plan")},
		Right:   service.FileInput{Name: "b.txt", Data: []byte("Annual plan")},
		Options: domain.CompareOptions{Threshold: 80, CaseSensitive: true},
	})
	require.NoError(t, err)
	assert.Nil(t, result.Format)
	assert.Len(t, result.Lines.Matched, 1)
}

func TestComparisonService_CompareDocuments_Unsupported(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	svc := newComparisonService(runs, nil, "")

	input := textInput()
	input.Right = service.FileInput{Name: "scan.pdf", Data: []byte("%PDF-1.7")}
	_, err := svc.CompareDocuments(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	runs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestComparisonService_CompareDocuments_InvalidThresholdRecordsFailure(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	svc := newComparisonService(runs, nil, "")

	runs.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.ComparisonRun) bool {
		return r.Status == domain.RunStatusFailed && r.Error != ""
	})).Return(nil)

	input := textInput()
	input.Options.Threshold = 150
	_, err := svc.CompareDocuments(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrInvalidThreshold)
	runs.AssertExpectations(t)
}

func TestComparisonService_CompareDocuments_ArchivesReport(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newComparisonService(runs, storage, "reports")

	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "reports" &&
			strings.HasPrefix(in.Key, "runs/ci/") &&
			strings.HasSuffix(in.Key, "/report.txt") &&
			in.ContentType == domain.ReportContentTypes["txt"]
	})).Return(&port.UploadOutput{Location: "s3://reports/x"}, nil)
	runs.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.ComparisonRun) bool {
		return r.ReportBucket == "reports" && r.ReportKey != ""
	})).Return(nil)

	result, err := svc.CompareDocuments(context.Background(), textInput())
	require.NoError(t, err)
	assert.Equal(t, "runs/ci/"+result.Run.ID.String()+"/report.txt", result.Run.ReportKey)
	storage.AssertExpectations(t)
	runs.AssertExpectations(t)
}

func TestComparisonService_CompareDocuments_UploadFailureKeepsResult(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newComparisonService(runs, storage, "reports")

	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("s3 down"))
	runs.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.CompareDocuments(context.Background(), textInput())
	require.NoError(t, err)
	assert.Empty(t, result.Run.ReportKey)
}

func TestComparisonService_CompareDocuments_PersistError(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	svc := newComparisonService(runs, nil, "")
	runs.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	result, err := svc.CompareDocuments(context.Background(), textInput())
	assert.Nil(t, result)
	assert.Error(t, err)
}

func priceWorkbooks(t *testing.T) (service.FileInput, service.FileInput) {
	left := buildWorkbook(t, [][]any{{"ID", "Price"}, {1, 100}, {2, 200}})
	right := buildWorkbook(t, [][]any{{"ID", "Price"}, {1, 150}, {3, 300}})
	return service.FileInput{Name: "jan.xlsx", Data: left}, service.FileInput{Name: "feb.xlsx", Data: right}
}

func TestComparisonService_CompareSpreadsheets(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	svc := newComparisonService(runs, nil, "")
	runs.On("Create", mock.Anything, runWith(domain.RunStatusCompleted, 1, 2, 1)).Return(nil)

	left, right := priceWorkbooks(t)
	result, err := svc.CompareSpreadsheets(context.Background(), service.TableCompareInput{
		Owner:   "ci",
		Left:    left,
		Right:   right,
		Options: domain.CompareOptions{Threshold: 80, KeyColumns: []string{"ID"}, CaseSensitive: true},
	})
	require.NoError(t, err)

	require.Len(t, result.Table.Differences, 1)
	d := result.Table.Differences[0]
	assert.Equal(t, "Price", d.Column)
	assert.True(t, d.Left.Equal(domain.NumberValue(100)))
	assert.True(t, d.Right.Equal(domain.NumberValue(150)))
	assert.Equal(t, domain.ComparisonKindTable, result.Run.Kind)
	assert.Equal(t, 3, result.Summary.Matched+result.Summary.Unmatched)
	runs.AssertExpectations(t)
}

func TestComparisonService_CompareSpreadsheets_ArchivesCSV(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newComparisonService(runs, storage, "reports")

	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return strings.HasSuffix(in.Key, "/report.csv") && in.Size > 0
	})).Return(&port.UploadOutput{}, nil)
	runs.On("Create", mock.Anything, mock.Anything).Return(nil)

	left, right := priceWorkbooks(t)
	_, err := svc.CompareSpreadsheets(context.Background(), service.TableCompareInput{
		Owner:        "ci",
		Left:         left,
		Right:        right,
		Options:      domain.CompareOptions{KeyColumns: []string{"ID"}},
		ReportFormat: "csv",
	})
	require.NoError(t, err)
	storage.AssertExpectations(t)
}

func TestComparisonService_CompareSpreadsheets_Errors(t *testing.T) {
	left, right := priceWorkbooks(t)

	t.Run("unsupported report format", func(t *testing.T) {
		runs := new(mocks.MockComparisonRunRepo)
		_, err := newComparisonService(runs, nil, "").CompareSpreadsheets(context.Background(), service.TableCompareInput{
			Owner: "ci", Left: left, Right: right, ReportFormat: "pdf",
		})
		assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
		runs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("not a spreadsheet", func(t *testing.T) {
		runs := new(mocks.MockComparisonRunRepo)
		_, err := newComparisonService(runs, nil, "").CompareSpreadsheets(context.Background(), service.TableCompareInput{
			Owner: "ci", Left: service.FileInput{Name: "a.txt"}, Right: right,
		})
		assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	})

	t.Run("missing key column", func(t *testing.T) {
		runs := new(mocks.MockComparisonRunRepo)
		runs.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.ComparisonRun) bool {
			return r.Status == domain.RunStatusFailed
		})).Return(nil)

		_, err := newComparisonService(runs, nil, "").CompareSpreadsheets(context.Background(), service.TableCompareInput{
			Owner: "ci", Left: left, Right: right,
			Options: domain.CompareOptions{KeyColumns: []string{"SKU"}},
		})
		assert.ErrorIs(t, err, domain.ErrKeyColumnMissing)
		runs.AssertExpectations(t)
	})
}

func TestComparisonService_CommonColumns(t *testing.T) {
	svc := newComparisonService(new(mocks.MockComparisonRunRepo), nil, "")
	left, right := priceWorkbooks(t)

	cols, err := svc.CommonColumns(context.Background(), left, right, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "Price"}, cols)

	other := service.FileInput{Name: "other.xlsx", Data: buildWorkbook(t, [][]any{{"SKU"}, {"a"}})}
	_, err = svc.CommonColumns(context.Background(), left, other, "")
	assert.ErrorIs(t, err, domain.ErrNoCommonColumns)
}

func archivedRun() *domain.ComparisonRun {
	return &domain.ComparisonRun{
		ID:           uuid.New(),
		Owner:        "ci",
		LeftName:     "jan.xlsx",
		RightName:    "feb.xlsx",
		ReportBucket: "reports",
		ReportKey:    "runs/ci/x/report.xlsx",
		CreatedAt:    time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}
}

func TestComparisonService_GetReportURL(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newComparisonService(runs, storage, "reports")

	run := archivedRun()
	runs.On("GetByID", mock.Anything, "ci", run.ID).Return(run, nil)
	storage.On("GetPresignedURL", mock.Anything, "reports", run.ReportKey, int64(900)).Return("https://signed", nil)

	url, err := svc.GetReportURL(context.Background(), "ci", run.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://signed", url)
}

func TestComparisonService_GetReportURL_NotArchived(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newComparisonService(runs, storage, "reports")

	run := archivedRun()
	run.ReportKey = ""
	runs.On("GetByID", mock.Anything, "ci", run.ID).Return(run, nil)

	_, err := svc.GetReportURL(context.Background(), "ci", run.ID)
	assert.ErrorIs(t, err, domain.ErrReportNotArchived)
	storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestComparisonService_GetRun_NotFound(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	svc := newComparisonService(runs, nil, "")
	id := uuid.New()
	runs.On("GetByID", mock.Anything, "ci", id).Return(nil, domain.ErrNotFound)

	_, err := svc.GetRun(context.Background(), "ci", id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestComparisonService_DownloadReport(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newComparisonService(runs, storage, "reports")

	run := archivedRun()
	runs.On("GetByID", mock.Anything, "ci", run.ID).Return(run, nil)
	storage.On("Download", mock.Anything, "reports", run.ReportKey).Return([]byte("PK"), nil)

	file, err := svc.DownloadReport(context.Background(), "ci", run.ID)
	require.NoError(t, err)
	assert.Equal(t, "jan_xlsx_vs_feb_xlsx_2026-03-04.xlsx", file.Name)
	assert.Equal(t, domain.ReportContentTypes["xlsx"], file.ContentType)
	assert.Equal(t, []byte("PK"), file.Data)
}

func TestComparisonService_DeleteRun(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	storage := new(mocks.MockObjectStorage)
	svc := newComparisonService(runs, storage, "reports")

	run := archivedRun()
	runs.On("GetByID", mock.Anything, "ci", run.ID).Return(run, nil)
	storage.On("Delete", mock.Anything, "reports", run.ReportKey).Return(errors.New("gone"))
	runs.On("Delete", mock.Anything, "ci", run.ID).Return(nil)

	require.NoError(t, svc.DeleteRun(context.Background(), "ci", run.ID))
	storage.AssertExpectations(t)
	runs.AssertExpectations(t)
}

func TestComparisonService_ListRuns(t *testing.T) {
	runs := new(mocks.MockComparisonRunRepo)
	svc := newComparisonService(runs, nil, "")
	runs.On("ListByOwner", mock.Anything, "ci", 0, 20).Return([]domain.ComparisonRun{*archivedRun()}, 1, nil)

	list, total, err := svc.ListRuns(context.Background(), "ci", 0, 20)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
}

func TestComparisonService_DefaultOptions(t *testing.T) {
	svc := newComparisonService(new(mocks.MockComparisonRunRepo), nil, "")
	assert.Equal(t, domain.CompareOptions{Threshold: 80, CaseSensitive: true}, svc.DefaultOptions())
}
