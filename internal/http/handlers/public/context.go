package public

import (
	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func getProfileID(c *gin.Context) (string, bool) {
	return handlershared.GetProfileID(c)
}
