package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"doccompare/internal/service"
)

// RunHandler serves the history of comparison runs.
type RunHandler struct {
	comparisonService service.ComparisonService
}

// NewRunHandler creates a new RunHandler.
func NewRunHandler(comparisonService service.ComparisonService) *RunHandler {
	return &RunHandler{comparisonService: comparisonService}
}

// List handles GET /api/v1/runs
// @Summary List comparison runs
// @Description Runs created by the calling client, newest first
// @Tags runs
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse{data=[]domain.ComparisonRun,meta=PagMeta} "List of runs"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /runs [get]
func (h *RunHandler) List(c *gin.Context) {
	owner, ok := extractOwner(c)
	if !ok {
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	runs, total, err := h.comparisonService.ListRuns(c.Request.Context(), owner, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, runs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/runs/:id
// @Summary Get a comparison run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} APIResponse{data=domain.ComparisonRun} "Run"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 404 {object} APIResponse "Not found"
// @Security BearerAuth
// @Router /runs/{id} [get]
func (h *RunHandler) GetByID(c *gin.Context) {
	owner, id, ok := ownerAndRunID(c)
	if !ok {
		return
	}

	run, err := h.comparisonService.GetRun(c.Request.Context(), owner, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, run)
}

// Report handles GET /api/v1/runs/:id/report
// @Summary Get a run's archived report
// @Description Returns a presigned URL, or the file itself with download=true
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Param download query bool false "Stream the report instead of returning a URL" default(false)
// @Success 200 {object} APIResponse "Presigned URL"
// @Failure 404 {object} APIResponse "Run not found or no report archived"
// @Security BearerAuth
// @Router /runs/{id}/report [get]
func (h *RunHandler) Report(c *gin.Context) {
	owner, id, ok := ownerAndRunID(c)
	if !ok {
		return
	}

	if download, _ := strconv.ParseBool(c.Query("download")); download {
		file, err := h.comparisonService.DownloadReport(c.Request.Context(), owner, id)
		if err != nil {
			HandleError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
		c.Data(http.StatusOK, file.ContentType, file.Data)
		return
	}

	url, err := h.comparisonService.GetReportURL(c.Request.Context(), owner, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"url": url})
}

// Delete handles DELETE /api/v1/runs/:id
// @Summary Delete a comparison run
// @Description Deletes the run and its archived report
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} APIResponse "Run deleted"
// @Failure 404 {object} APIResponse "Not found"
// @Security BearerAuth
// @Router /runs/{id} [delete]
func (h *RunHandler) Delete(c *gin.Context) {
	owner, id, ok := ownerAndRunID(c)
	if !ok {
		return
	}

	if err := h.comparisonService.DeleteRun(c.Request.Context(), owner, id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "run deleted"})
}

func ownerAndRunID(c *gin.Context) (string, uuid.UUID, bool) {
	owner, ok := extractOwner(c)
	if !ok {
		return "", uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid run ID")
		return "", uuid.Nil, false
	}
	return owner, id, true
}
