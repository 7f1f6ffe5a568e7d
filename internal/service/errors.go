package service

import "errors"

// 通用错误
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrQueueUnavailable = errors.New("queue unavailable")
)

// 认证错误
var (
	ErrInvalidEmail           = errors.New("invalid email")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInvalidPassword        = errors.New("invalid password")
	ErrWeakPassword           = errors.New("weak password")
	ErrPasswordMismatch       = errors.New("password confirmation mismatch")
	ErrEmailExists            = errors.New("email already exists")
	ErrRoleMismatch           = errors.New("role mismatch")
	ErrRoleInvalid            = errors.New("role invalid")
	ErrUserDisabled           = errors.New("user disabled")
	ErrUserStatusInvalid      = errors.New("user status invalid")
	ErrProfileNameRequired    = errors.New("profile name required")
	ErrTokenRevoked           = errors.New("token revoked")
	ErrMerchantProfileMissing = errors.New("merchant profile missing")
)

// 商户错误
var (
	ErrMerchantNotFound     = errors.New("merchant not found")
	ErrMerchantInactive     = errors.New("merchant inactive")
	ErrStoreNameRequired    = errors.New("store name required")
	ErrMerchantFieldInvalid = errors.New("merchant field invalid")
)

// 优惠与定价错误
var (
	ErrOfferInvalid           = errors.New("offer invalid")
	ErrOfferNotFound          = errors.New("offer not found")
	ErrOfferInactive          = errors.New("offer inactive")
	ErrOfferExpired           = errors.New("offer expired")
	ErrOfferPriceInvalid      = errors.New("offer price invalid")
	ErrOfferPercentageInvalid = errors.New("offer points percentage invalid")
)

// 积分账户错误
var (
	ErrNotEnrolled         = errors.New("customer not enrolled")
	ErrPointsAmountInvalid = errors.New("points amount invalid")
	ErrInsufficientPoints  = errors.New("insufficient points")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrCustomerRefInvalid  = errors.New("customer reference invalid")
	ErrEnrollmentFailed    = errors.New("enrollment failed")
	ErrPointsUpdateFailed  = errors.New("points update failed")
)

// 商品与报表错误
var (
	ErrProductInvalid    = errors.New("product invalid")
	ErrReportTypeInvalid = errors.New("report type invalid")
	ErrReportDateInvalid = errors.New("report date range invalid")
	ErrReportNotFound    = errors.New("report not found")
	ErrReportNotReady    = errors.New("report not ready")
)

// 上传错误
var (
	ErrUploadTooLarge   = errors.New("upload too large")
	ErrUploadTypeDenied = errors.New("upload type not allowed")
)
