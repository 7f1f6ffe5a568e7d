package public

import (
	"github.com/fidelidade-next/internal/constants"
	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/i18n"
	"github.com/fidelidade-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// EnrollRequest 加入门店请求
type EnrollRequest struct {
	MerchantID string `json:"merchant_id" binding:"required"`
}

// RedeemRequest 兑换优惠请求
type RedeemRequest struct {
	OfferID string `json:"offer_id" binding:"required"`
}

// CustomerSettingsRequest 顾客资料请求
type CustomerSettingsRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetMyPoints 各门店积分与总积分
func (h *Handler) GetMyPoints(c *gin.Context) {
	profileID, ok := getProfileID(c)
	if !ok {
		return
	}
	summary, err := h.EnrollmentService.Summary(profileID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, summary)
}

// SearchMerchants 按城市搜索门店
func (h *Handler) SearchMerchants(c *gin.Context) {
	merchants, err := h.EnrollmentService.SearchMerchants(c.Query("city"))
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, merchants)
}

// Enroll 加入门店积分计划，重复加入返回提示而非错误
func (h *Handler) Enroll(c *gin.Context) {
	profileID, ok := getProfileID(c)
	if !ok {
		return
	}
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.EnrollmentService.Enroll(c.Request.Context(), profileID, req.MerchantID)
	if err != nil {
		respondWithMappedError(c, err, enrollErrorRules, response.CodeInternal, "error.enrollment_failed")
		return
	}
	noticeKey := "notice.enrolled"
	if !result.Created() {
		noticeKey = "notice.already_enrolled"
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), noticeKey), result)
}

// Redeem 使用积分兑换优惠
func (h *Handler) Redeem(c *gin.Context) {
	profileID, ok := getProfileID(c)
	if !ok {
		return
	}
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.EnrollmentService.Redeem(c.Request.Context(), profileID, req.OfferID)
	if err != nil {
		respondWithMappedError(c, err, redeemErrorRules, response.CodeInternal, "error.points_update_failed")
		return
	}
	response.Success(c, result)
}

// ListMyTransactions 我的积分流水
func (h *Handler) ListMyTransactions(c *gin.Context) {
	profileID, ok := getProfileID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.ParsePagination(c)
	txnType := c.Query("type")
	switch txnType {
	case "", constants.PointsTxnTypeEnroll, constants.PointsTxnTypeAccrue, constants.PointsTxnTypeRedeem:
	default:
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	items, total, err := h.EnrollmentService.ListTransactions(repository.PointsTransactionListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: profileID,
		MerchantID: c.Query("merchant_id"),
		Type:       txnType,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// UpdateCustomerSettings 更新顾客资料
func (h *Handler) UpdateCustomerSettings(c *gin.Context) {
	profileID, ok := getProfileID(c)
	if !ok {
		return
	}
	var req CustomerSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	profile, err := h.AuthService.UpdateName(profileID, req.Name)
	if err != nil {
		respondAuthError(c, err, "error.internal")
		return
	}
	response.Success(c, profile)
}
