package shared

import (
	"errors"

	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/i18n"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// RespondMappedError 按规则匹配业务错误，未命中时记录原始错误并返回兜底响应。
func RespondMappedError(c *gin.Context, err error, rules []MappedError, fallbackCode int, fallbackKey string) {
	var fieldErr interface{ FieldErrors() []service.FieldError }
	if errors.As(err, &fieldErr) {
		RespondFieldErrors(c, fieldErr.FieldErrors())
		return
	}
	if errors.Is(err, service.ErrWeakPassword) {
		RespondPasswordError(c, err)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// ConcatMappedErrors 合并多组映射规则
func ConcatMappedErrors(groups ...[]MappedError) []MappedError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]MappedError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// FieldMessage 已翻译的字段错误
type FieldMessage struct {
	Field   string `json:"field"`
	Key     string `json:"key"`
	Message string `json:"message"`
}

// RespondFieldErrors 返回逐字段的表单错误，消息取第一个字段
func RespondFieldErrors(c *gin.Context, fields []service.FieldError) {
	locale := i18n.ResolveLocale(c)
	items := make([]FieldMessage, 0, len(fields))
	for _, field := range fields {
		items = append(items, FieldMessage{
			Field:   field.Field,
			Key:     field.Key,
			Message: i18n.T(locale, field.Key),
		})
	}
	msg := i18n.T(locale, "error.bad_request")
	if len(items) > 0 {
		msg = items[0].Message
	}
	response.ErrorWithData(c, response.CodeBadRequest, msg, gin.H{"fields": items})
}

// RespondPasswordError 返回带参数的密码策略错误
func RespondPasswordError(c *gin.Context, err error) {
	locale := i18n.ResolveLocale(c)
	var perr interface {
		Key() string
		Args() []interface{}
	}
	if errors.As(err, &perr) {
		RespondErrorWithMsg(c, response.CodeBadRequest, i18n.Sprintf(locale, perr.Key(), perr.Args()...), nil)
		return
	}
	RespondError(c, response.CodeBadRequest, "error.password_weak", nil)
}

// AuthErrorRules 账号相关的通用映射
var AuthErrorRules = []MappedError{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_invalid"},
	{Target: service.ErrPasswordMismatch, Code: response.CodeBadRequest, Key: "error.password_mismatch"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrRoleMismatch, Code: response.CodeForbidden, Key: "error.role_mismatch"},
	{Target: service.ErrRoleInvalid, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
	{Target: service.ErrProfileNameRequired, Code: response.CodeBadRequest, Key: "error.profile_name_required"},
	{Target: service.ErrMerchantProfileMissing, Code: response.CodeForbidden, Key: "error.merchant_profile_missing"},
	{Target: service.ErrStoreNameRequired, Code: response.CodeBadRequest, Key: "error.store_name_required"},
	{Target: service.ErrMerchantFieldInvalid, Code: response.CodeBadRequest, Key: "error.merchant_field_invalid"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
}
