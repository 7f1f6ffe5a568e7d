package merchant

import (
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SettingsRequest 门店资料请求
type SettingsRequest struct {
	StoreName string `json:"store_name" binding:"required"`
	City      string `json:"city"`
	CNPJ      string `json:"cnpj"`
	Street    string `json:"street"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	WhatsApp  string `json:"whatsapp"`
}

// GetSettings 获取门店资料
func (h *Handler) GetSettings(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	merchant, err := h.MerchantService.GetSettings(merchantID)
	if err != nil {
		respondWithMappedError(c, err, settingsErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, merchant)
}

// UpdateSettings 更新门店资料
func (h *Handler) UpdateSettings(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	merchant, err := h.MerchantService.UpdateSettings(merchantID, service.MerchantSettingsInput{
		StoreName: req.StoreName,
		City:      req.City,
		CNPJ:      req.CNPJ,
		Street:    req.Street,
		State:     req.State,
		ZipCode:   req.ZipCode,
		WhatsApp:  req.WhatsApp,
	})
	if err != nil {
		respondWithMappedError(c, err, settingsErrorRules, response.CodeInternal, "error.internal")
		return
	}
	response.Success(c, merchant)
}
