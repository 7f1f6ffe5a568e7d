package admin

import (
	"errors"
	"strings"

	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/repository"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateMerchantActiveRequest 门店启停请求
type UpdateMerchantActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// GetAdminMerchants 门店列表
func (h *Handler) GetAdminMerchants(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	merchants, total, err := h.MerchantService.List(repository.MerchantListFilter{
		Page:       page,
		PageSize:   pageSize,
		City:       strings.TrimSpace(c.Query("city")),
		Keyword:    strings.TrimSpace(c.Query("keyword")),
		OnlyActive: c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, merchants, handlershared.BuildPagination(page, pageSize, total))
}

// UpdateMerchantActive 启用或停用门店
func (h *Handler) UpdateMerchantActive(c *gin.Context) {
	var req UpdateMerchantActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	merchantID := c.Param("id")
	if err := h.MerchantService.SetActive(c.Request.Context(), merchantID, *req.Active); err != nil {
		if errors.Is(err, service.ErrMerchantNotFound) {
			respondError(c, response.CodeNotFound, "error.merchant_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, gin.H{"id": merchantID, "active": *req.Active})
}

// GetAdminOffers 全平台优惠列表
func (h *Handler) GetAdminOffers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	createdFrom, err := parseDateNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseDateNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	offers, total, err := h.OfferService.ListAll(repository.OfferListFilter{
		Page:         page,
		PageSize:     pageSize,
		MerchantID:   strings.TrimSpace(c.Query("merchant_id")),
		OnlyActive:   c.Query("only_active") == "true",
		WithMerchant: true,
		CreatedFrom:  createdFrom,
		CreatedTo:    createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, offers, handlershared.BuildPagination(page, pageSize, total))
}
