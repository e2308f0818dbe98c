package handlers

import (
	"fmt"
	"net/http"

	"github.com/edutrial/thpt-score-service/internal/models"
	"github.com/edutrial/thpt-score-service/internal/repositories"
	"github.com/edutrial/thpt-score-service/internal/services"
	"github.com/edutrial/thpt-score-service/internal/utils"
	"github.com/edutrial/thpt-score-service/internal/validator"
	"github.com/gin-gonic/gin"
)

const defaultPageSize = 20

type BatchHandler struct {
	BaseHandler
	batchService   services.BatchService
	validator      *validator.Validator
	maxUploadBytes int64
}

type uploadBatchForm struct {
	Label string `form:"label" validate:"max=100"`
}

type listBatchesQuery struct {
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"page_size" validate:"omitempty,min=1,max=100"`
	Status    string `form:"status" validate:"omitempty,oneof=pending processing completed failed"`
	SortBy    string `form:"sort_by" validate:"omitempty,oneof=created_at total_rows file_name"`
	SortOrder string `form:"sort_order" validate:"omitempty,oneof=asc desc"`
}

type reportQuery struct {
	Format string `form:"format" validate:"omitempty,report_format"`
}

func NewBatchHandler(batchService services.BatchService, validator *validator.Validator, logger utils.Logger, maxUploadBytes int64) *BatchHandler {
	return &BatchHandler{
		BaseHandler:    NewBaseHandler(logger),
		batchService:   batchService,
		validator:      validator,
		maxUploadBytes: maxUploadBytes,
	}
}

// UploadBatch scores every row of an uploaded xlsx or csv file
// @Router /batches [post]
func (h *BatchHandler) UploadBatch(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	var form uploadBatchForm
	if err := c.ShouldBind(&form); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid upload", err, err.Error())
		return
	}
	if err := h.validator.Validate(form); err != nil {
		h.handleServiceError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Missing file", err, "multipart field 'file' is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Unreadable file", err)
		return
	}
	defer file.Close()

	h.LogRequest(c, "Processing batch upload", "file_name", fileHeader.Filename, "size", fileHeader.Size)

	batch, err := h.batchService.Process(c.Request.Context(), services.BatchUpload{
		OwnerID:  userID,
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
		Label:    form.Label,
		Content:  file,
	})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusCreated, "Batch processed", batch)
}

// ListBatches lists the caller's batches, newest first by default
// @Router /batches [get]
func (h *BatchHandler) ListBatches(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var query listBatchesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}
	if err := h.validator.Validate(query); err != nil {
		h.handleServiceError(c, err)
		return
	}

	if query.Page == 0 {
		query.Page = 1
	}
	if query.PageSize == 0 {
		query.PageSize = defaultPageSize
	}

	filters := repositories.BatchFilters{
		Limit:     query.PageSize,
		Offset:    (query.Page - 1) * query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if query.Status != "" {
		status := models.BatchStatus(query.Status)
		filters.Status = &status
	}

	batches, total, err := h.batchService.List(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Batches retrieved", ListResponse{
		Items:    batches,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
}

// GetBatch returns a batch's counts, summary and row errors
// @Router /batches/{id} [get]
func (h *BatchHandler) GetBatch(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	batch, err := h.batchService.Get(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Batch retrieved", batch)
}

// GetBatchResults returns the per-row outcomes
// @Router /batches/{id}/results [get]
func (h *BatchHandler) GetBatchResults(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	results, err := h.batchService.Results(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Batch results retrieved", results)
}

// DownloadReport streams the xlsx or csv report as an attachment
// @Router /batches/{id}/report [get]
func (h *BatchHandler) DownloadReport(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var query reportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}
	if err := h.validator.Validate(query); err != nil {
		h.handleServiceError(c, err)
		return
	}

	report, err := h.batchService.Report(c.Request.Context(), id, userID, query.Format)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(http.StatusOK, report.ContentType, report.Data)
}

// DeleteBatch removes a batch and its cached reports
// @Router /batches/{id} [delete]
func (h *BatchHandler) DeleteBatch(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	if err := h.batchService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Batch deleted", nil)
}
