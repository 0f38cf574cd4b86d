package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("report upload to storage failed")
	ErrExtractionFailed    = errors.New("could not extract content from file")
	ErrUnsupportedValue    = errors.New("unsupported cell value")
	ErrInvalidThreshold    = errors.New("threshold must be between 0 and 100")
	ErrNoCommonColumns     = errors.New("no common columns found between the two files")
	ErrNoKeyColumns        = errors.New("at least one key column is required")
	ErrKeyColumnMissing    = errors.New("key column missing from dataset")
	ErrDuplicateKey        = errors.New("duplicate join key")
	ErrComparisonTimeout   = errors.New("comparison exceeded its deadline")
	ErrReportNotArchived   = errors.New("no report archived for this run")
)
