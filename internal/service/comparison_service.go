package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"doccompare/internal/compare"
	"doccompare/internal/config"
	"doccompare/internal/domain"
	"doccompare/internal/extract"
	"doccompare/internal/linematch"
	"doccompare/internal/logging"
	"doccompare/internal/port"
	"doccompare/internal/report"
	"doccompare/internal/tablealign"
)

// FileInput is an uploaded file held in memory.
type FileInput struct {
	Name string
	Data []byte
}

// DocumentCompareInput is the DTO for document comparisons.
type DocumentCompareInput struct {
	Owner   string
	Left    FileInput
	Right   FileInput
	Options domain.CompareOptions
	// Unified adds a positional unified diff of the two documents.
	Unified bool
}

// DocumentCompareResult is the outcome of a document comparison.
type DocumentCompareResult struct {
	Run         *domain.ComparisonRun    `json:"run"`
	Lines       domain.LineComparison    `json:"lines"`
	Format      *domain.FormatComparison `json:"format,omitempty"`
	Summary     domain.Summary           `json:"summary"`
	UnifiedDiff string                   `json:"unified_diff,omitempty"`
}

// TableCompareInput is the DTO for spreadsheet comparisons.
type TableCompareInput struct {
	Owner   string
	Left    FileInput
	Right   FileInput
	Sheet   string
	Options domain.CompareOptions
	// ReportFormat selects the archived report: "xlsx" (default) or "csv".
	ReportFormat string
}

// TableCompareResult is the outcome of a spreadsheet comparison.
type TableCompareResult struct {
	Run     *domain.ComparisonRun  `json:"run"`
	Table   domain.TableComparison `json:"table"`
	Summary domain.Summary         `json:"summary"`
}

// ReportFile is an archived report fetched back from storage.
type ReportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ComparisonService defines the comparison contract.
type ComparisonService interface {
	DefaultOptions() domain.CompareOptions
	CompareDocuments(ctx context.Context, input DocumentCompareInput) (*DocumentCompareResult, error)
	CompareSpreadsheets(ctx context.Context, input TableCompareInput) (*TableCompareResult, error)
	CommonColumns(ctx context.Context, left, right FileInput, sheet string) ([]string, error)
	ListRuns(ctx context.Context, owner string, offset, limit int) ([]domain.ComparisonRun, int, error)
	GetRun(ctx context.Context, owner string, id uuid.UUID) (*domain.ComparisonRun, error)
	GetReportURL(ctx context.Context, owner string, id uuid.UUID) (string, error)
	DownloadReport(ctx context.Context, owner string, id uuid.UUID) (*ReportFile, error)
	DeleteRun(ctx context.Context, owner string, id uuid.UUID) error
}

type comparisonService struct {
	runs    port.ComparisonRunRepository
	storage port.ObjectStorage
	engine  compare.Engine
	s3Cfg   config.S3Config
	cmpCfg  config.CompareConfig
	now     func() time.Time
}

// NewComparisonService creates a new ComparisonService implementation.
// storage may be nil, in which case reports are never archived.
func NewComparisonService(
	runs port.ComparisonRunRepository,
	storage port.ObjectStorage,
	s3Cfg config.S3Config,
	cmpCfg config.CompareConfig,
) ComparisonService {
	engine := compare.Engine{Workers: cmpCfg.Workers}
	if cmpCfg.Exclusive {
		engine.Strategy = linematch.Exclusive{}
	}
	return &comparisonService{
		runs:    runs,
		storage: storage,
		engine:  engine,
		s3Cfg:   s3Cfg,
		cmpCfg:  cmpCfg,
		now:     time.Now,
	}
}

func (s *comparisonService) DefaultOptions() domain.CompareOptions {
	return s.cmpCfg.Defaults()
}

func (s *comparisonService) CompareDocuments(ctx context.Context, input DocumentCompareInput) (*DocumentCompareResult, error) {
	left, err := extract.ReadDocument(input.Left.Name, input.Left.Data)
	if err != nil {
		return nil, err
	}
	right, err := extract.ReadDocument(input.Right.Name, input.Right.Data)
	if err != nil {
		return nil, err
	}

	log.Printf("comparisonService.CompareDocuments: owner=%s %s (%d lines) vs %s (%d lines) threshold=%d",
		input.Owner, input.Left.Name, len(left.Lines), input.Right.Name, len(right.Lines), input.Options.Threshold)

	run := s.newRun(input.Owner, domain.ComparisonKindDocument, input.Left.Name, input.Right.Name, input.Options)
	start := s.now()

	lines, err := withTimeout(ctx, s.cmpCfg.Timeout, func() (domain.LineComparison, error) {
		return s.engine.Lines(left.Lines, right.Lines, input.Options)
	})
	if err != nil {
		s.recordFailure(ctx, run, start, err)
		return nil, err
	}

	result := &DocumentCompareResult{Run: run, Lines: lines}
	if left.Type == domain.FileTypeDOCX && right.Type == domain.FileTypeDOCX {
		fc := s.engine.Formats(left.Paragraphs, right.Paragraphs)
		result.Format = &fc
		run.DifferenceCount = len(fc.Mismatches)
	}
	if input.Unified {
		result.UnifiedDiff = report.UnifiedDiff(left.Lines, right.Lines)
	}
	run.MatchedCount = len(lines.Matched)
	run.UnmatchedCount = len(lines.Unmatched)
	result.Summary = report.Summarize(run.MatchedCount, run.UnmatchedCount, run.DifferenceCount)

	var buf bytes.Buffer
	if err := report.WriteLineReport(&buf, lines); err != nil {
		return nil, fmt.Errorf("writing line report: %w", err)
	}
	s.archive(ctx, run, "txt", buf.Bytes())

	if err := s.complete(ctx, run, start); err != nil {
		return nil, err
	}
	log.Printf("comparisonService.CompareDocuments: run %s matched=%d unmatched=%d in %dms",
		run.ID, run.MatchedCount, run.UnmatchedCount, run.DurationMS)
	return result, nil
}

func (s *comparisonService) CompareSpreadsheets(ctx context.Context, input TableCompareInput) (*TableCompareResult, error) {
	left, right, err := readDatasets(input.Left, input.Right, input.Sheet)
	if err != nil {
		return nil, err
	}
	format := input.ReportFormat
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		return nil, fmt.Errorf("%w: report format %q", domain.ErrUnsupportedFileType, format)
	}

	log.Printf("comparisonService.CompareSpreadsheets: owner=%s %s (%d rows) vs %s (%d rows) keys=%v",
		input.Owner, input.Left.Name, len(left.Records), input.Right.Name, len(right.Records), input.Options.KeyColumns)

	run := s.newRun(input.Owner, domain.ComparisonKindTable, input.Left.Name, input.Right.Name, input.Options)
	start := s.now()

	table, err := withTimeout(ctx, s.cmpCfg.Timeout, func() (domain.TableComparison, error) {
		return s.engine.Tables(left, right, input.Options)
	})
	if err != nil {
		s.recordFailure(ctx, run, start, err)
		return nil, err
	}

	run.MatchedCount = len(table.Matched)
	run.UnmatchedCount = len(table.Unmatched)
	run.DifferenceCount = len(table.Differences)

	var buf bytes.Buffer
	if format == "csv" {
		err = report.WriteDifferencesCSV(&buf, table)
	} else {
		err = report.WriteTableWorkbook(&buf, table)
	}
	if err != nil {
		return nil, fmt.Errorf("writing table report: %w", err)
	}
	s.archive(ctx, run, format, buf.Bytes())

	if err := s.complete(ctx, run, start); err != nil {
		return nil, err
	}
	log.Printf("comparisonService.CompareSpreadsheets: run %s matched=%d unmatched=%d differences=%d in %dms",
		run.ID, run.MatchedCount, run.UnmatchedCount, run.DifferenceCount, run.DurationMS)

	return &TableCompareResult{
		Run:     run,
		Table:   table,
		Summary: report.Summarize(run.MatchedCount, run.UnmatchedCount, run.DifferenceCount),
	}, nil
}

func (s *comparisonService) CommonColumns(_ context.Context, left, right FileInput, sheet string) ([]string, error) {
	l, r, err := readDatasets(left, right, sheet)
	if err != nil {
		return nil, err
	}
	common := tablealign.CommonColumns(l, r)
	if len(common) == 0 {
		return nil, domain.ErrNoCommonColumns
	}
	return common, nil
}

func readDatasets(left, right FileInput, sheet string) (domain.Dataset, domain.Dataset, error) {
	var out [2]domain.Dataset
	for i, f := range []FileInput{left, right} {
		if _, err := extract.SpreadsheetType(f.Name); err != nil {
			return domain.Dataset{}, domain.Dataset{}, err
		}
		ds, err := extract.ReadDataset(bytes.NewReader(f.Data), sheet)
		if err != nil {
			return domain.Dataset{}, domain.Dataset{}, fmt.Errorf("%s: %w", f.Name, err)
		}
		out[i] = ds
	}
	return out[0], out[1], nil
}

func (s *comparisonService) ListRuns(ctx context.Context, owner string, offset, limit int) ([]domain.ComparisonRun, int, error) {
	return s.runs.ListByOwner(ctx, owner, offset, limit)
}

func (s *comparisonService) GetRun(ctx context.Context, owner string, id uuid.UUID) (*domain.ComparisonRun, error) {
	return s.runs.GetByID(ctx, owner, id)
}

func (s *comparisonService) GetReportURL(ctx context.Context, owner string, id uuid.UUID) (string, error) {
	run, err := s.archivedRun(ctx, owner, id)
	if err != nil {
		return "", err
	}
	url, err := s.storage.GetPresignedURL(ctx, run.ReportBucket, run.ReportKey, s.s3Cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("generating report URL: %w", err)
	}
	return url, nil
}

func (s *comparisonService) DownloadReport(ctx context.Context, owner string, id uuid.UUID) (*ReportFile, error) {
	run, err := s.archivedRun(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	data, err := s.storage.Download(ctx, run.ReportBucket, run.ReportKey)
	if err != nil {
		return nil, fmt.Errorf("downloading report: %w", err)
	}
	ext := reportExt(run.ReportKey)
	return &ReportFile{
		Name:        reportFilename(run, ext),
		ContentType: domain.ReportContentTypes[ext],
		Data:        data,
	}, nil
}

func (s *comparisonService) DeleteRun(ctx context.Context, owner string, id uuid.UUID) error {
	run, err := s.runs.GetByID(ctx, owner, id)
	if err != nil {
		return err
	}
	if run.ReportKey != "" && s.storage != nil {
		if err := s.storage.Delete(ctx, run.ReportBucket, run.ReportKey); err != nil {
			log.Printf("comparisonService.DeleteRun: failed to delete report %s: %v", run.ReportKey, err)
		}
	}
	return s.runs.Delete(ctx, owner, id)
}

func (s *comparisonService) archivedRun(ctx context.Context, owner string, id uuid.UUID) (*domain.ComparisonRun, error) {
	run, err := s.runs.GetByID(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if run.ReportKey == "" || s.storage == nil {
		return nil, domain.ErrReportNotArchived
	}
	return run, nil
}

func (s *comparisonService) newRun(owner string, kind domain.ComparisonKind, left, right string, opts domain.CompareOptions) *domain.ComparisonRun {
	options, err := json.Marshal(opts)
	if err != nil {
		options = []byte("{}")
	}
	return &domain.ComparisonRun{
		ID:        uuid.New(),
		Owner:     owner,
		Kind:      kind,
		LeftName:  left,
		RightName: right,
		Options:   options,
		Status:    domain.RunStatusCompleted,
		CreatedAt: s.now().UTC(),
	}
}

// archive uploads the report of run when an archive bucket is configured.
// A failed upload leaves the run without a report instead of failing it.
func (s *comparisonService) archive(ctx context.Context, run *domain.ComparisonRun, ext string, data []byte) {
	if s.storage == nil || s.s3Cfg.Bucket == "" {
		return
	}
	key := fmt.Sprintf("runs/%s/%s/report.%s", run.Owner, run.ID, ext)
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: domain.ReportContentTypes[ext],
		Size:        int64(len(data)),
		Filename:    reportFilename(run, ext),
		Metadata: map[string]string{
			"owner": run.Owner,
			"kind":  string(run.Kind),
		},
	})
	if err != nil {
		log.Printf("comparisonService.archive: upload of %s failed: %v", key, err)
		return
	}
	logging.Debugf("comparisonService.archive: stored %s (%d bytes)", key, len(data))
	run.ReportBucket = s.s3Cfg.Bucket
	run.ReportKey = key
}

func (s *comparisonService) complete(ctx context.Context, run *domain.ComparisonRun, start time.Time) error {
	run.DurationMS = s.now().Sub(start).Milliseconds()
	if err := s.runs.Create(ctx, run); err != nil {
		return fmt.Errorf("persisting comparison run: %w", err)
	}
	return nil
}

// recordFailure persists a failed run. The comparison error is what the
// caller sees; a persistence error is only logged.
func (s *comparisonService) recordFailure(ctx context.Context, run *domain.ComparisonRun, start time.Time, cause error) {
	run.Status = domain.RunStatusFailed
	run.Error = cause.Error()
	run.DurationMS = s.now().Sub(start).Milliseconds()
	log.Printf("comparisonService: run %s failed: %v", run.ID, cause)
	if err := s.runs.Create(context.WithoutCancel(ctx), run); err != nil {
		log.Printf("comparisonService: failed to persist failed run %s: %v", run.ID, err)
	}
}

// withTimeout runs fn and gives up once d has elapsed. A zero d waits for
// fn or ctx alone.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func() (T, error)) (T, error) {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, domain.ErrComparisonTimeout
		}
		return zero, ctx.Err()
	}
}

func reportFilename(run *domain.ComparisonRun, ext string) string {
	return report.BuildFilename(run.LeftName+" vs "+run.RightName, ext, run.CreatedAt)
}

func reportExt(key string) string {
	if ext := strings.TrimPrefix(path.Ext(key), "."); ext != "" {
		return ext
	}
	return "txt"
}
