package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"doccompare/internal/domain"
	"doccompare/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: txt, docx for documents and xlsx, xlsm for spreadsheets"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusUnprocessableEntity, "EXTRACTION_FAILED", err.Error()
	case errors.Is(err, domain.ErrUnsupportedValue):
		return http.StatusUnprocessableEntity, "UNSUPPORTED_VALUE", err.Error()
	case errors.Is(err, domain.ErrInvalidThreshold):
		return http.StatusBadRequest, "INVALID_THRESHOLD", "threshold must be between 0 and 100"
	case errors.Is(err, domain.ErrNoCommonColumns):
		return http.StatusUnprocessableEntity, "NO_COMMON_COLUMNS", "no common columns found between the two files"
	case errors.Is(err, domain.ErrNoKeyColumns):
		return http.StatusBadRequest, "NO_KEY_COLUMNS", "at least one key column is required"
	case errors.Is(err, domain.ErrKeyColumnMissing):
		return http.StatusBadRequest, "KEY_COLUMN_MISSING", err.Error()
	case errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict, "DUPLICATE_KEY", err.Error()
	case errors.Is(err, domain.ErrComparisonTimeout):
		return http.StatusGatewayTimeout, "COMPARISON_TIMEOUT", "comparison took too long; try smaller files"
	case errors.Is(err, domain.ErrReportNotArchived):
		return http.StatusNotFound, "REPORT_NOT_ARCHIVED", "no report archived for this run"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "report upload to storage failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// extractOwner returns the authenticated client ID.
// Returns false if it is missing (error response already written).
func extractOwner(c *gin.Context) (string, bool) {
	owner, err := middleware.GetClientID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing client context")
		return "", false
	}
	return owner, true
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
