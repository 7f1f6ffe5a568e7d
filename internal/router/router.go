package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fidelidade-next/internal/authz"
	"github.com/fidelidade-next/internal/cache"
	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/constants"
	adminhandlers "github.com/fidelidade-next/internal/http/handlers/admin"
	merchanthandlers "github.com/fidelidade-next/internal/http/handlers/merchant"
	publichandlers "github.com/fidelidade-next/internal/http/handlers/public"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/provider"
	"github.com/fidelidade-next/internal/tracing"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container, tracer *tracing.Provider) *gin.Engine {
	log := logger.Z()
	r := gin.New()

	// 初始化 Handler（按顾客/商户/后台分组）
	publicHandler := publichandlers.New(c)
	merchantHandler := merchanthandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_rate_limited",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(tracing.Middleware(tracer))
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 静态文件服务（上传的图片）
	uploadDir := strings.TrimSpace(cfg.Upload.Dir)
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	r.Static("/uploads", uploadDir)

	apiV1 := r.Group("/api/v1")
	{
		// 认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/customer/register", publicHandler.RegisterCustomer)
			auth.POST("/merchant/register", publicHandler.RegisterMerchant)
			auth.POST("/login", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), publicHandler.Login)
			auth.POST("/logout", JWTAuthMiddleware(c.AuthService), publicHandler.Logout)
		}

		signedIn := apiV1.Group("")
		signedIn.Use(JWTAuthMiddleware(c.AuthService))
		signedIn.GET("/me", publicHandler.GetMe)

		gated := signedIn.Group("")
		gated.Use(RoleGateMiddleware(c.AuthzService))
		{
			// 顾客接口
			customer := gated.Group("/customer")
			{
				customer.GET("/points", publicHandler.GetMyPoints)
				customer.GET("/merchants", publicHandler.SearchMerchants)
				customer.POST("/enrollments", publicHandler.Enroll)
				customer.POST("/redemptions", publicHandler.Redeem)
				customer.GET("/transactions", publicHandler.ListMyTransactions)
				customer.PUT("/settings", publicHandler.UpdateCustomerSettings)
				customer.PUT("/password", publicHandler.ChangePassword)
			}

			// 商户接口
			merchant := gated.Group("/merchant")
			{
				merchant.GET("/settings", merchantHandler.GetSettings)
				merchant.PUT("/settings", merchantHandler.UpdateSettings)
				merchant.PUT("/password", publicHandler.ChangePassword)
				merchant.GET("/offers", merchantHandler.ListOffers)
				merchant.POST("/offers", merchantHandler.CreateOffer)
				merchant.GET("/offers/stream", merchantHandler.StreamOffers)
				merchant.PUT("/offers/:id", merchantHandler.UpdateOffer)
				merchant.POST("/offers/:id/toggle", merchantHandler.ToggleOffer)
				merchant.GET("/customers/:ref", merchantHandler.LookupCustomer)
				merchant.POST("/customers/:ref/points", merchantHandler.AccruePoints)
				merchant.GET("/transactions", merchantHandler.ListTransactions)
				merchant.POST("/upload", merchantHandler.UploadFile)
			}

			// 积分商城（任意登录角色）
			store := gated.Group("/store")
			{
				store.GET("/offers", publicHandler.ListStoreOffers)
				store.GET("/offers/stream", publicHandler.StreamStoreOffers)
				store.GET("/products", publicHandler.ListStoreProducts)
				store.GET("/products/:id", publicHandler.GetStoreProduct)
			}

			// 管理员接口
			admin := gated.Group("/admin")
			{
				admin.GET("/users", adminHandler.GetAdminUsers)
				admin.PATCH("/users/:id/status", adminHandler.UpdateAdminUserStatus)
				admin.GET("/merchants", adminHandler.GetAdminMerchants)
				admin.PATCH("/merchants/:id/active", adminHandler.UpdateMerchantActive)
				admin.GET("/offers", adminHandler.GetAdminOffers)
				admin.POST("/reports", adminHandler.CreateReport)
				admin.GET("/reports/:id", adminHandler.GetReport)
				admin.GET("/reports/:id/download", adminHandler.DownloadReport)
				admin.POST("/store/products", adminHandler.CreateProduct)
				admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
				admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildPermissionCatalog(r, c.AuthzService))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type permissionCatalogItem struct {
	Area       string   `json:"area"`
	Method     string   `json:"method"`
	Object     string   `json:"object"`
	Permission string   `json:"permission"`
	Roles      []string `json:"roles"`
}

// buildPermissionCatalog 列出受角色控制的路由及可访问的账号角色
func buildPermissionCatalog(engine *gin.Engine, authzService *authz.Service) []permissionCatalogItem {
	if engine == nil {
		return []permissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]permissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		area := deriveArea(object)
		if !isGatedArea(area) {
			continue
		}
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, permissionCatalogItem{
			Area:       area,
			Method:     method,
			Object:     object,
			Permission: permission,
			Roles:      allowedRoles(authzService, object, method),
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Area == items[j].Area {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Area < items[j].Area
	})

	return items
}

func allowedRoles(authzService *authz.Service, object, method string) []string {
	roles := make([]string, 0, len(constants.Roles))
	if authzService == nil {
		return roles
	}
	for _, role := range constants.Roles {
		if ok, err := authzService.EnforceRole(role, object, method); err == nil && ok {
			roles = append(roles, role)
		}
	}
	return roles
}

func deriveArea(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	return strings.Split(normalized, "/")[0]
}

func isGatedArea(area string) bool {
	switch area {
	case constants.RoleCustomer, constants.RoleMerchant, constants.RoleAdmin, "store":
		return true
	}
	return false
}
