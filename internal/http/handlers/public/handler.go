package public

import "github.com/fidelidade-next/internal/provider"

// Handler 账号与顾客侧接口处理器入口
// 说明：覆盖注册登录、顾客积分与商城浏览 API。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
