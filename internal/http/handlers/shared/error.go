package shared

import (
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/i18n"
	"github.com/fidelidade-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 携带 request_id 的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	return logger.WithRequestID(response.RequestID(c))
}

// RespondError 按文案键返回本地化错误；err 非空时记一条错误日志
func RespondError(c *gin.Context, code int, key string, err error) {
	RespondAppError(c, response.NewAppError(code, key, err))
}

// RespondAppError 输出处理器层错误
func RespondAppError(c *gin.Context, appErr *response.AppError) {
	msg := i18n.T(i18n.ResolveLocale(c), appErr.Key)
	logAppError(c, appErr)
	response.Error(c, appErr.Code, msg)
}

// RespondErrorWithMsg 使用已格式化的文案返回错误
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	logAppError(c, response.NewAppError(code, msg, err))
	response.Error(c, code, msg)
}

func logAppError(c *gin.Context, appErr *response.AppError) {
	if appErr.Err == nil {
		return
	}
	log := RequestLog(c)
	if appErr.Code >= response.CodeInternal {
		log.Errorw("handler_error", "code", appErr.Code, "key", appErr.Key, "error", appErr.Err)
		return
	}
	log.Warnw("handler_rejected", "code", appErr.Code, "key", appErr.Key, "error", appErr.Err)
}
