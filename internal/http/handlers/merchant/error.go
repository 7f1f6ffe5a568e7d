package merchant

import (
	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.MappedError

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackKey)
}

func getMerchantID(c *gin.Context) (string, bool) {
	return handlershared.GetProfileID(c)
}

var offerErrorRules = []mappedHandlerError{
	{Target: service.ErrOfferNotFound, Code: response.CodeNotFound, Key: "error.offer_not_found"},
	{Target: service.ErrOfferInvalid, Code: response.CodeBadRequest, Key: "error.offer_invalid"},
	{Target: service.ErrMerchantNotFound, Code: response.CodeNotFound, Key: "error.merchant_not_found"},
	{Target: service.ErrMerchantInactive, Code: response.CodeForbidden, Key: "error.merchant_inactive"},
}

var settingsErrorRules = []mappedHandlerError{
	{Target: service.ErrMerchantNotFound, Code: response.CodeNotFound, Key: "error.merchant_not_found"},
	{Target: service.ErrStoreNameRequired, Code: response.CodeBadRequest, Key: "error.store_name_required"},
	{Target: service.ErrMerchantFieldInvalid, Code: response.CodeBadRequest, Key: "error.merchant_field_invalid"},
}

var customerErrorRules = []mappedHandlerError{
	{Target: service.ErrCustomerRefInvalid, Code: response.CodeBadRequest, Key: "error.customer_ref_invalid"},
	{Target: service.ErrCustomerNotFound, Code: response.CodeNotFound, Key: "error.customer_not_found"},
	{Target: service.ErrNotEnrolled, Code: response.CodeBadRequest, Key: "error.not_enrolled"},
	{Target: service.ErrPointsAmountInvalid, Code: response.CodeBadRequest, Key: "error.points_amount_invalid"},
	{Target: service.ErrPointsUpdateFailed, Code: response.CodeInternal, Key: "error.points_update_failed"},
}

var uploadErrorRules = []mappedHandlerError{
	{Target: service.ErrUploadTooLarge, Code: response.CodeBadRequest, Key: "error.upload_too_large"},
	{Target: service.ErrUploadTypeDenied, Code: response.CodeBadRequest, Key: "error.upload_type_denied"},
}
