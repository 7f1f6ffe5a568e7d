package public

import (
	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedHandlerError = handlershared.MappedError

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	handlershared.RespondMappedError(c, err, rules, fallbackCode, fallbackKey)
}

var enrollErrorRules = []mappedHandlerError{
	{Target: service.ErrMerchantNotFound, Code: response.CodeNotFound, Key: "error.merchant_not_found"},
	{Target: service.ErrMerchantInactive, Code: response.CodeBadRequest, Key: "error.merchant_inactive"},
	{Target: service.ErrEnrollmentFailed, Code: response.CodeInternal, Key: "error.enrollment_failed"},
}

var redeemErrorRules = []mappedHandlerError{
	{Target: service.ErrOfferNotFound, Code: response.CodeNotFound, Key: "error.offer_not_found"},
	{Target: service.ErrOfferInactive, Code: response.CodeBadRequest, Key: "error.offer_inactive"},
	{Target: service.ErrOfferExpired, Code: response.CodeBadRequest, Key: "error.offer_expired"},
	{Target: service.ErrMerchantInactive, Code: response.CodeBadRequest, Key: "error.merchant_inactive"},
	{Target: service.ErrNotEnrolled, Code: response.CodeBadRequest, Key: "error.not_enrolled"},
	{Target: service.ErrInsufficientPoints, Code: response.CodeBadRequest, Key: "error.insufficient_points"},
	{Target: service.ErrPointsUpdateFailed, Code: response.CodeInternal, Key: "error.points_update_failed"},
}

var productErrorRules = []mappedHandlerError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
}

func respondAuthError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, handlershared.AuthErrorRules, response.CodeInternal, fallbackKey)
}
