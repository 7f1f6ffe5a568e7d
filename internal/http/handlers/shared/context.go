package shared

import (
	"strings"

	"github.com/fidelidade-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextKeyProfileID = "profile_id"
	ContextKeyRole      = "role"
	ContextKeyEmail     = "email"
)

// GetContextStringWithKeys 从上下文读取字符串 ID 并统一处理错误响应。
func GetContextStringWithKeys(c *gin.Context, key, typeInvalidKey string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return "", false
	}
	id, ok := value.(string)
	if !ok {
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return "", false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return "", false
	}
	return id, true
}

// GetProfileID 当前登录账号 ID
func GetProfileID(c *gin.Context) (string, bool) {
	return GetContextStringWithKeys(c, ContextKeyProfileID, "error.internal")
}
