package merchant

import (
	"time"

	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/realtime"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OfferRequest 优惠表单，价格按字符串提交以支持逗号小数
type OfferRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	TotalPrice       string `json:"total_price"`
	PointsPercentage int    `json:"points_percentage"`
	ValidUntil       string `json:"valid_until"`
	ImageURL         string `json:"image_url"`
}

func (r OfferRequest) toDraft() service.OfferDraft {
	return service.OfferDraft{
		Title:            r.Title,
		Description:      r.Description,
		TotalPrice:       r.TotalPrice,
		PointsPercentage: r.PointsPercentage,
		ValidUntil:       r.ValidUntil,
		ImageURL:         r.ImageURL,
	}
}

// ListOffers 本店全部优惠（含下架）
func (h *Handler) ListOffers(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	offers, err := h.OfferService.ListForMerchant(merchantID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, offers)
}

// CreateOffer 发布优惠
func (h *Handler) CreateOffer(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	offer, err := h.OfferService.Create(c.Request.Context(), merchantID, req.toDraft())
	if err != nil {
		respondWithMappedError(c, err, offerErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, offer)
}

// UpdateOffer 编辑本店优惠
func (h *Handler) UpdateOffer(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	var req OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	offer, err := h.OfferService.Update(c.Request.Context(), merchantID, c.Param("id"), req.toDraft())
	if err != nil {
		respondWithMappedError(c, err, offerErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, offer)
}

// ToggleOffer 上架/下架切换
func (h *Handler) ToggleOffer(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	offer, err := h.OfferService.ToggleStatus(c.Request.Context(), merchantID, c.Param("id"))
	if err != nil {
		respondWithMappedError(c, err, offerErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, offer)
}

// StreamOffers 本店优惠变更 SSE 推送
func (h *Handler) StreamOffers(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	handlershared.ServeOfferStream(c, handlershared.OfferStream{
		Hub:    h.Hub,
		Cache:  realtime.NewMerchantCache(merchantID),
		Filter: realtime.ForMerchant(merchantID),
		Load: func() ([]models.Offer, error) {
			return h.OfferService.ListForMerchant(merchantID)
		},
		Heartbeat: time.Duration(h.Config.Feed.StreamHeartbeatSeconds) * time.Second,
	})
}
