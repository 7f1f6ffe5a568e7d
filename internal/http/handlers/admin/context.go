package admin

import (
	"strings"
	"time"

	"github.com/fidelidade-next/internal/constants"
	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (string, bool) {
	return handlershared.GetProfileID(c)
}

// parseDateNullable 解析 YYYY-MM-DD 或 RFC3339，空串返回 nil
func parseDateNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(constants.DateLayout, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
