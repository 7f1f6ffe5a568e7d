package merchant

import (
	"github.com/fidelidade-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// UploadFile 上传商户图片（优惠、商品或门店标志）
func (h *Handler) UploadFile(c *gin.Context) {
	merchantID, ok := getMerchantID(c)
	if !ok {
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.UploadService.Save(merchantID, file, c.PostForm("scene"))
	if err != nil {
		respondWithMappedError(c, err, uploadErrorRules, response.CodeInternal, "error.upload_failed")
		return
	}
	response.Success(c, result)
}
