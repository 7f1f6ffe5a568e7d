package admin

import (
	"path/filepath"

	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateReportRequest 报表导出请求
type CreateReportRequest struct {
	Type     string `json:"type" binding:"required"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

var reportErrorRules = []mappedHandlerError{
	{Target: service.ErrReportTypeInvalid, Code: response.CodeBadRequest, Key: "error.report_type_invalid"},
	{Target: service.ErrReportDateInvalid, Code: response.CodeBadRequest, Key: "error.report_date_invalid"},
	{Target: service.ErrReportNotFound, Code: response.CodeNotFound, Key: "error.report_not_found"},
	{Target: service.ErrReportNotReady, Code: response.CodeConflict, Key: "error.report_not_ready"},
	{Target: service.ErrQueueUnavailable, Code: response.CodeInternal, Key: "error.queue_unavailable"},
}

// CreateReport 创建报表导出任务
func (h *Handler) CreateReport(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	job, err := h.ReportService.Request(c.Request.Context(), adminID, service.ReportRequest{
		Type:     req.Type,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
	})
	if err != nil {
		respondWithMappedError(c, err, reportErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, job)
}

// GetReport 查询报表任务状态
func (h *Handler) GetReport(c *gin.Context) {
	job, err := h.ReportService.Get(c.Param("id"))
	if err != nil {
		respondWithMappedError(c, err, reportErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, job)
}

// DownloadReport 下载已完成的报表 CSV
func (h *Handler) DownloadReport(c *gin.Context) {
	_, path, err := h.ReportService.FilePath(c.Param("id"))
	if err != nil {
		respondWithMappedError(c, err, reportErrorRules, response.CodeInternal, "error.internal")
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}
