package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"doccompare/internal/domain"
	"doccompare/internal/service"
)

// multipartOverhead is added to the body limit for form fields and boundaries.
const multipartOverhead = 1 << 20

// ComparisonHandler handles document and spreadsheet comparison endpoints.
type ComparisonHandler struct {
	comparisonService service.ComparisonService
	maxFileBytes      int64
}

// NewComparisonHandler creates a new ComparisonHandler. maxFileBytes bounds
// each uploaded file.
func NewComparisonHandler(comparisonService service.ComparisonService, maxFileBytes int64) *ComparisonHandler {
	return &ComparisonHandler{comparisonService: comparisonService, maxFileBytes: maxFileBytes}
}

// CompareDocuments handles POST /api/v1/compare/documents
// @Summary Compare two documents
// @Description Fuzzy line matching of two TXT or DOCX files, plus paragraph style comparison when both are DOCX
// @Tags compare
// @Accept multipart/form-data
// @Produce json
// @Param left formData file true "First document (txt or docx)"
// @Param right formData file true "Second document (txt or docx)"
// @Param threshold formData int false "Minimum similarity score for a match (0-100)" default(80)
// @Param case_sensitive formData bool false "Compare case-sensitively" default(true)
// @Param unified formData bool false "Include a unified diff" default(false)
// @Success 200 {object} APIResponse{data=service.DocumentCompareResult} "Comparison result"
// @Failure 400 {object} APIResponse "Missing file, unsupported type, or invalid option"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 504 {object} APIResponse "Comparison timed out"
// @Security BearerAuth
// @Router /compare/documents [post]
func (h *ComparisonHandler) CompareDocuments(c *gin.Context) {
	owner, ok := extractOwner(c)
	if !ok {
		return
	}

	left, right, ok := h.readPair(c)
	if !ok {
		return
	}

	opts, err := parseOptions(c, h.comparisonService.DefaultOptions())
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	unified, err := formBool(c, "unified", false)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.comparisonService.CompareDocuments(c.Request.Context(), service.DocumentCompareInput{
		Owner:   owner,
		Left:    left,
		Right:   right,
		Options: opts,
		Unified: unified,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// CompareSpreadsheets handles POST /api/v1/compare/spreadsheets
// @Summary Compare two spreadsheets
// @Description Outer join of two workbooks on key columns followed by a cell-by-cell diff
// @Tags compare
// @Accept multipart/form-data
// @Produce json
// @Param left formData file true "First workbook (xlsx)"
// @Param right formData file true "Second workbook (xlsx)"
// @Param key_columns formData string false "Comma-separated key columns; defaults to the first common column"
// @Param compare_columns formData string false "Comma-separated columns to diff; defaults to all common non-key columns"
// @Param case_sensitive formData bool false "Compare keys case-sensitively" default(true)
// @Param fuzzy formData bool false "Report a similarity percentage per difference" default(false)
// @Param strict_keys formData bool false "Reject duplicate keys" default(false)
// @Param sheet formData string false "Sheet to read; defaults to the first sheet"
// @Param report_format formData string false "Archived report format: xlsx or csv" default(xlsx)
// @Success 200 {object} APIResponse{data=service.TableCompareResult} "Comparison result"
// @Failure 400 {object} APIResponse "Missing file, unsupported type, or invalid option"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 409 {object} APIResponse "Duplicate key in strict mode"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 422 {object} APIResponse "No common columns"
// @Security BearerAuth
// @Router /compare/spreadsheets [post]
func (h *ComparisonHandler) CompareSpreadsheets(c *gin.Context) {
	owner, ok := extractOwner(c)
	if !ok {
		return
	}

	left, right, ok := h.readPair(c)
	if !ok {
		return
	}

	opts, err := parseOptions(c, h.comparisonService.DefaultOptions())
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.comparisonService.CompareSpreadsheets(c.Request.Context(), service.TableCompareInput{
		Owner:        owner,
		Left:         left,
		Right:        right,
		Sheet:        c.PostForm("sheet"),
		Options:      opts,
		ReportFormat: strings.ToLower(c.PostForm("report_format")),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// CommonColumns handles POST /api/v1/compare/spreadsheets/columns
// @Summary List common columns
// @Description Columns present in both workbooks, in the first workbook's order
// @Tags compare
// @Accept multipart/form-data
// @Produce json
// @Param left formData file true "First workbook (xlsx)"
// @Param right formData file true "Second workbook (xlsx)"
// @Param sheet formData string false "Sheet to read; defaults to the first sheet"
// @Success 200 {object} APIResponse{data=[]string} "Common columns"
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Failure 422 {object} APIResponse "No common columns"
// @Security BearerAuth
// @Router /compare/spreadsheets/columns [post]
func (h *ComparisonHandler) CommonColumns(c *gin.Context) {
	if _, ok := extractOwner(c); !ok {
		return
	}

	left, right, ok := h.readPair(c)
	if !ok {
		return
	}

	cols, err := h.comparisonService.CommonColumns(c.Request.Context(), left, right, c.PostForm("sheet"))
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, cols)
}

// readPair reads the "left" and "right" uploads. It returns false when a
// response has already been written.
func (h *ComparisonHandler) readPair(c *gin.Context) (left, right service.FileInput, ok bool) {
	if h.maxFileBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*h.maxFileBytes+multipartOverhead)
	}

	var err error
	if left, err = h.readFile(c, "left"); err != nil {
		h.respondUploadError(c, "left", err)
		return left, right, false
	}
	if right, err = h.readFile(c, "right"); err != nil {
		h.respondUploadError(c, "right", err)
		return left, right, false
	}
	return left, right, true
}

var errMissingFile = errors.New("missing file")

func (h *ComparisonHandler) readFile(c *gin.Context, field string) (service.FileInput, error) {
	header, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.FileInput{}, domain.ErrFileTooLarge
		}
		return service.FileInput{}, errMissingFile
	}
	if h.maxFileBytes > 0 && header.Size > h.maxFileBytes {
		return service.FileInput{}, domain.ErrFileTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return service.FileInput{}, fmt.Errorf("opening upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if h.maxFileBytes > 0 {
		r = io.LimitReader(f, h.maxFileBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return service.FileInput{}, fmt.Errorf("reading upload: %w", err)
	}
	if h.maxFileBytes > 0 && int64(len(data)) > h.maxFileBytes {
		return service.FileInput{}, domain.ErrFileTooLarge
	}
	return service.FileInput{Name: header.Filename, Data: data}, nil
}

func (h *ComparisonHandler) respondUploadError(c *gin.Context, field string, err error) {
	if errors.Is(err, errMissingFile) {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", field+" file field is required")
		return
	}
	HandleError(c, err)
}

// parseOptions overlays the optional form fields on defaults.
func parseOptions(c *gin.Context, opts domain.CompareOptions) (domain.CompareOptions, error) {
	if v := strings.TrimSpace(c.PostForm("threshold")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("threshold must be an integer: %q", v)
		}
		opts.Threshold = n
	}

	var err error
	if opts.CaseSensitive, err = formBool(c, "case_sensitive", opts.CaseSensitive); err != nil {
		return opts, err
	}
	if opts.FuzzyMode, err = formBool(c, "fuzzy", opts.FuzzyMode); err != nil {
		return opts, err
	}
	if opts.StrictKeys, err = formBool(c, "strict_keys", opts.StrictKeys); err != nil {
		return opts, err
	}

	opts.KeyColumns = splitColumns(c.PostForm("key_columns"))
	opts.CompareColumns = splitColumns(c.PostForm("compare_columns"))
	return opts, nil
}

func formBool(c *gin.Context, field string, def bool) (bool, error) {
	v := strings.TrimSpace(c.PostForm(field))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s must be a boolean: %q", field, v)
	}
	return b, nil
}

func splitColumns(s string) []string {
	var cols []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			cols = append(cols, p)
		}
	}
	return cols
}
