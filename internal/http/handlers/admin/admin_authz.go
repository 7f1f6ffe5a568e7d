package admin

import (
	"github.com/fidelidade-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListAuthzRoles 查看角色矩阵（继承、直接策略与生效策略）
func (h *Handler) ListAuthzRoles(c *gin.Context) {
	roles, err := h.AuthzService.Roles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, roles)
}
