package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/fidelidade-next/internal/config"
)

// HTTPService HTTP 服务封装
type HTTPService struct {
	name       string
	server     *http.Server
	baseCancel context.CancelFunc
}

// NewHTTPService 创建 HTTP 服务，超时取自 server 配置，0 表示不限
//
// 请求上下文派生自服务级 base context，Stop 时先取消它，使 SSE 长连接及时退出。
func NewHTTPService(addr string, handler http.Handler, cfg config.ServerConfig) *HTTPService {
	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &HTTPService{
		name:       "http",
		baseCancel: baseCancel,
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: seconds(cfg.ReadTimeoutSeconds),
			ReadTimeout:       seconds(cfg.ReadTimeoutSeconds),
			WriteTimeout:      seconds(cfg.WriteTimeoutSeconds),
			IdleTimeout:       seconds(cfg.IdleTimeoutSeconds),
			BaseContext: func(net.Listener) context.Context {
				return baseCtx
			},
		},
	}
}

func seconds(value int) time.Duration {
	if value <= 0 {
		return 0
	}
	return time.Duration(value) * time.Second
}

// Name 服务名称
func (s *HTTPService) Name() string {
	if s == nil || s.name == "" {
		return "http"
	}
	return s.name
}

// Start 监听端口直至 Stop
func (s *HTTPService) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("http server not initialized")
	}
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop 取消进行中的请求上下文并优雅关闭
func (s *HTTPService) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	if s.baseCancel != nil {
		s.baseCancel()
	}
	return s.server.Shutdown(ctx)
}
