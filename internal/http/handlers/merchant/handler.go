package merchant

import "github.com/fidelidade-next/internal/provider"

// Handler 商户后台接口处理器入口
// 说明：商户账号 ID 即门店 ID。
type Handler struct {
	*provider.Container
}

// New 创建商户处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
