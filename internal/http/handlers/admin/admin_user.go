package admin

import (
	"errors"
	"strings"

	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/http/response"
	"github.com/fidelidade-next/internal/repository"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateUserStatusRequest 账号启停请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// GetAdminUsers 获取账号列表
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := handlershared.ParsePagination(c)
	createdFrom, err := parseDateNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseDateNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	users, total, err := h.AdminUserService.ListUsers(repository.ProfileListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		Role:        c.Query("role"),
		Status:      c.Query("status"),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		if errors.Is(err, service.ErrRoleInvalid) {
			respondError(c, response.CodeBadRequest, "error.role_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, users, handlershared.BuildPagination(page, pageSize, total))
}

// UpdateAdminUserStatus 启用或禁用账号
func (h *Handler) UpdateAdminUserStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	profile, err := h.AdminUserService.SetStatus(adminID, c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserStatusInvalid):
			respondError(c, response.CodeBadRequest, "error.user_status_invalid", nil)
		case errors.Is(err, service.ErrForbidden):
			respondError(c, response.CodeForbidden, "error.forbidden", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "error.not_found", nil)
		default:
			respondError(c, response.CodeInternal, "error.internal", err)
		}
		return
	}
	requestLog(c).Infow("admin_user_status_updated", "operator_id", adminID, "profile_id", profile.ID, "status", profile.Status)
	response.Success(c, profile)
}
