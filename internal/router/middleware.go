package router

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/authz"
	"github.com/fidelidade-next/internal/cache"
	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/constants"
	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/i18n"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader    = "X-Request-ID"
	requestIDMaxLength = 64
	streamContentType  = "text/event-stream"
)

var defaultCORSHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Accept-Encoding",
	"Accept-Language",
	"Authorization",
	"Cache-Control",
	"Last-Event-ID",
	"X-Requested-With",
}

// corsPolicy 预先计算好的跨域响应头
type corsPolicy struct {
	origins          []string
	wildcard         bool
	allowCredentials bool
	methods          string
	headers          string
	maxAge           string
}

func newCORSPolicy(cfg config.CORSConfig) corsPolicy {
	policy := corsPolicy{allowCredentials: cfg.AllowCredentials}
	for _, origin := range cfg.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "*" {
			policy.wildcard = true
			continue
		}
		if origin != "" {
			policy.origins = append(policy.origins, origin)
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		policy.wildcard = true
	}
	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	headers := cfg.AllowedHeaders
	if len(headers) == 0 {
		headers = defaultCORSHeaders
	}
	policy.methods = strings.Join(methods, ", ")
	policy.headers = strings.Join(headers, ", ")
	if cfg.MaxAge > 0 {
		policy.maxAge = strconv.Itoa(cfg.MaxAge)
	}
	return policy
}

// allowOrigin 返回应回写的 Allow-Origin；通配且允许凭证时回显来源
func (p corsPolicy) allowOrigin(origin string) string {
	if p.wildcard {
		if p.allowCredentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range p.origins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	policy := newCORSPolicy(cfg)
	return func(c *gin.Context) {
		header := c.Writer.Header()
		if allowed := policy.allowOrigin(c.GetHeader("Origin")); allowed != "" {
			header.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				header.Add("Vary", "Origin")
			}
		}
		if policy.allowCredentials {
			header.Set("Access-Control-Allow-Credentials", "true")
		}
		header.Set("Access-Control-Allow-Headers", policy.headers)
		header.Set("Access-Control-Allow-Methods", policy.methods)
		header.Set("Access-Control-Expose-Headers", requestIDHeader+", Retry-After")
		if policy.maxAge != "" {
			header.Set("Access-Control-Max-Age", policy.maxAge)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RequestIDMiddleware 沿用客户端传入的合法请求 ID，否则生成新的
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if !validRequestID(requestID) {
			requestID = uuid.NewString()
		}
		c.Set(response.RequestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > requestIDMaxLength {
		return false
	}
	for _, r := range id {
		if r < 0x21 || r > 0x7e {
			return false
		}
	}
	return true
}

// LoggerMiddleware 访问日志，推送流在断开时记一条 stream_closed
func LoggerMiddleware(base *zap.Logger) gin.HandlerFunc {
	if base == nil {
		base = zap.L()
	}
	sugar := base.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []interface{}{
			"request_id", response.RequestID(c),
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if profileID, ok := c.Get(handlershared.ContextKeyProfileID); ok {
			fields = append(fields, "profile_id", profileID)
		}
		switch {
		case len(c.Errors) > 0:
			sugar.Errorw("request", append(fields, "errors", c.Errors.String())...)
		case strings.HasPrefix(c.Writer.Header().Get("Content-Type"), streamContentType):
			sugar.Infow("stream_closed", fields...)
		case c.Writer.Status() >= http.StatusInternalServerError:
			sugar.Errorw("request", fields...)
		default:
			sugar.Infow("request", fields...)
		}
	}
}

// TokenParser 解析令牌并读取账号鉴权快照
type TokenParser interface {
	ParseJWT(tokenString string) (*service.JWTClaims, error)
	ResolveAuthState(ctx context.Context, profileID string) (*cache.ProfileAuthState, error)
}

// JWTAuthMiddleware JWT 鉴权中间件，三类账号共用
func JWTAuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if parser == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		claims, err := parser.ParseJWT(tokenString)
		if err != nil || claims == nil || strings.TrimSpace(claims.ProfileID) == "" {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		state, err := parser.ResolveAuthState(c.Request.Context(), claims.ProfileID)
		if err != nil {
			logger.Errorw("auth_state_resolve_failed", "profile_id", claims.ProfileID, "error", err)
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		if state == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		if !isActiveUserStatus(state.Status) {
			abortUnauthorized(c, "error.user_disabled")
			return
		}
		if claims.TokenVersion != state.TokenVersion || !isIssuedAfterInvalidBeforeUnix(claims.IssuedAt, state.TokenInvalidBefore) {
			abortUnauthorized(c, "error.token_revoked")
			return
		}

		c.Set(handlershared.ContextKeyProfileID, state.ProfileID)
		c.Set(handlershared.ContextKeyRole, state.Role)
		c.Set(handlershared.ContextKeyEmail, claims.Email)
		c.Next()
	}
}

// RoleGateMiddleware 按角色校验路由权限
func RoleGateMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authzService == nil {
			logger.Errorw("role_gate_service_unavailable")
			abortUnauthorized(c, "error.unauthorized")
			return
		}
		role := c.GetString(handlershared.ContextKeyRole)
		if strings.TrimSpace(role) == "" {
			abortUnauthorized(c, "error.unauthorized")
			return
		}

		resource := c.FullPath()
		if strings.TrimSpace(resource) == "" {
			resource = c.Request.URL.Path
		}

		allowed, err := authzService.EnforceRole(role, resource, c.Request.Method)
		if err != nil {
			logger.Errorw("role_gate_enforce_failed",
				"role", role,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			handlershared.RespondError(c, response.CodeInternal, "error.internal", nil)
			c.Abort()
			return
		}
		if !allowed {
			logger.Warnw("role_gate_permission_denied",
				"role", role,
				"profile_id", c.GetString(handlershared.ContextKeyProfileID),
				"method", c.Request.Method,
				"resource", authz.NormalizeObject(resource),
			)
			response.Forbidden(c, i18n.T(i18n.ResolveLocale(c), "error.forbidden"))
			c.Abort()
			return
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, key string) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func isIssuedAfterInvalidBeforeUnix(issuedAt *jwt.NumericDate, invalidBeforeUnix int64) bool {
	if invalidBeforeUnix <= 0 {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Time.Unix() >= invalidBeforeUnix
}

func isActiveUserStatus(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == constants.UserStatusActive
}
