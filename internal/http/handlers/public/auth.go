package public

import (
	"time"

	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/i18n"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CustomerRegisterRequest 顾客注册请求
type CustomerRegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

func (r CustomerRegisterRequest) toInput() service.CustomerRegistration {
	return service.CustomerRegistration{
		Name:            r.Name,
		Email:           r.Email,
		Password:        r.Password,
		ConfirmPassword: r.ConfirmPassword,
	}
}

// MerchantRegisterRequest 商户注册请求
type MerchantRegisterRequest struct {
	CustomerRegisterRequest
	StoreName string `json:"store_name" binding:"required"`
	City      string `json:"city" binding:"required"`
	CNPJ      string `json:"cnpj"`
	Street    string `json:"street"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	WhatsApp  string `json:"whatsapp"`
}

// LoginRequest 登录请求，portal 为登录入口对应的角色
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Portal   string `json:"portal"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RegisterCustomer 顾客注册
func (h *Handler) RegisterCustomer(c *gin.Context) {
	var req CustomerRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	profile, token, expiresAt, err := h.AuthService.RegisterCustomer(req.toInput())
	if err != nil {
		respondAuthError(c, err, "error.internal")
		return
	}
	response.Success(c, sessionPayload(profile, nil, token, expiresAt))
}

// RegisterMerchant 商户注册，同时创建门店
func (h *Handler) RegisterMerchant(c *gin.Context) {
	var req MerchantRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	profile, merchant, token, expiresAt, err := h.AuthService.RegisterMerchant(service.MerchantRegistration{
		CustomerRegistration: req.toInput(),
		StoreName:            req.StoreName,
		City:                 req.City,
		CNPJ:                 req.CNPJ,
		Street:               req.Street,
		State:                req.State,
		ZipCode:              req.ZipCode,
		WhatsApp:             req.WhatsApp,
	})
	if err != nil {
		respondAuthError(c, err, "error.internal")
		return
	}
	response.Success(c, sessionPayload(profile, merchant, token, expiresAt))
}

// Login 登录，portal 与账号角色不符时不签发 token
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	profile, token, expiresAt, err := h.AuthService.Login(req.Email, req.Password, req.Portal)
	if err != nil {
		handlershared.RequestLog(c).Infow("auth_login_rejected", "portal", req.Portal, "reason", err.Error())
		respondAuthError(c, err, "error.internal")
		return
	}
	response.Success(c, sessionPayload(profile, nil, token, expiresAt))
}

// Logout 退出登录，使已签发 token 全部失效
func (h *Handler) Logout(c *gin.Context) {
	profileID, ok := getProfileID(c)
	if !ok {
		return
	}
	if err := h.AuthService.Logout(profileID); err != nil {
		respondAuthError(c, err, "error.internal")
		return
	}
	response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "notice.logged_out"), gin.H{"logged_out": true})
}

// GetMe 当前账号信息
func (h *Handler) GetMe(c *gin.Context) {
	profileID, ok := getProfileID(c)
	if !ok {
		return
	}
	profile, err := h.AuthService.GetProfile(profileID)
	if err != nil {
		respondAuthError(c, err, "error.internal")
		return
	}
	response.Success(c, profile)
}

// ChangePassword 修改密码（顾客与商户共用）
func (h *Handler) ChangePassword(c *gin.Context) {
	profileID, ok := getProfileID(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthService.ChangePassword(profileID, req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		respondAuthError(c, err, "error.internal")
		return
	}
	response.Success(c, gin.H{"updated": true})
}

func sessionPayload(profile *models.Profile, merchant *models.Merchant, token string, expiresAt time.Time) gin.H {
	payload := gin.H{
		"user":       profile,
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	}
	if merchant != nil {
		payload["merchant"] = merchant
	}
	return payload
}
