package public

import (
	"strings"
	"time"

	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/realtime"
	"github.com/fidelidade-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListStoreOffers 商城上架优惠，读取常驻视图
func (h *Handler) ListStoreOffers(c *gin.Context) {
	if h.StorefrontView == nil {
		offers, err := h.OfferService.ListStorefront()
		if err != nil {
			respondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		response.Success(c, offers)
		return
	}
	response.Success(c, h.StorefrontView.Snapshot())
}

// StreamStoreOffers 商城优惠变更 SSE 推送
func (h *Handler) StreamStoreOffers(c *gin.Context) {
	cache := realtime.NewStorefrontCache()
	load := h.OfferService.ListStorefront
	if h.StorefrontView != nil {
		load = func() ([]models.Offer, error) {
			return h.StorefrontView.Snapshot(), nil
		}
	}
	handlershared.ServeOfferStream(c, handlershared.OfferStream{
		Hub:       h.Hub,
		Cache:     cache,
		Load:      load,
		Heartbeat: time.Duration(h.Config.Feed.StreamHeartbeatSeconds) * time.Second,
	})
}

// ListStoreProducts 积分商城商品
func (h *Handler) ListStoreProducts(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	items, total, err := h.ProductService.ListStore(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Category: strings.TrimSpace(c.Query("category")),
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, items, handlershared.BuildPagination(page, pageSize, total))
}

// GetStoreProduct 商品详情
func (h *Handler) GetStoreProduct(c *gin.Context) {
	product, err := h.ProductService.Get(c.Param("id"))
	if err != nil {
		respondWithMappedError(c, err, productErrorRules, response.CodeInternal, "error.internal")
		return
	}
	if !product.Active {
		respondError(c, response.CodeNotFound, "error.not_found", nil)
		return
	}
	response.Success(c, product)
}
