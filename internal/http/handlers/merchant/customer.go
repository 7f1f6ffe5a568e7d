package merchant

import (
	"strings"

	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// AccrueRequest 发放积分请求
type AccrueRequest struct {
	Points int64  `json:"points" binding:"required"`
	Reason string `json:"reason"`
}

// LookupCustomer 按 ID 或邮箱查询顾客在本店的积分
func (h *Handler) LookupCustomer(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	lookup, err := h.EnrollmentService.LookupCustomer(merchantID, c.Param("ref"))
	if err != nil {
		respondWithMappedError(c, err, customerErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, lookup)
}

// AccruePoints 为本店顾客发放积分
func (h *Handler) AccruePoints(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	var req AccrueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	customerID, err := h.EnrollmentService.ResolveCustomerID(c.Param("ref"))
	if err != nil {
		respondWithMappedError(c, err, customerErrorRules, response.CodeInternal, "error.internal")
		return
	}
	txn, err := h.EnrollmentService.Accrue(c.Request.Context(), merchantID, customerID, req.Points, req.Reason)
	if err != nil {
		respondWithMappedError(c, err, customerErrorRules, response.CodeInternal, "error.points_update_failed")
		return
	}
	response.Success(c, txn)
}

// ListTransactions 本店积分流水
func (h *Handler) ListTransactions(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	items, total, err := h.EnrollmentService.ListTransactions(repository.PointsTransactionListFilter{
		Page:       page,
		PageSize:   pageSize,
		MerchantID: merchantID,
		CustomerID: strings.TrimSpace(c.Query("customer_id")),
		Type:       strings.TrimSpace(c.Query("type")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}
