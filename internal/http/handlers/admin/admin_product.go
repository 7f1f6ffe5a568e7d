package admin

import (
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateProductRequest 新增商城商品请求
type CreateProductRequest struct {
	Category         string `json:"category"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Price            string `json:"price"`
	PointsPercentage int    `json:"points_percentage"`
	ImageURL         string `json:"image_url"`
}

// CreateProduct 新增积分商城商品
func (h *Handler) CreateProduct(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.Create(adminID, service.ProductInput{
		Category:         req.Category,
		Name:             req.Name,
		Description:      req.Description,
		Price:            req.Price,
		PointsPercentage: req.PointsPercentage,
		ImageURL:         req.ImageURL,
	})
	if err != nil {
		respondWithMappedError(c, err, nil, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, product)
}
