package app

import (
	"context"

	"github.com/fidelidade-next/internal/tracing"
)

// TracingService 让 tracer provider 随运行器一起关闭
type TracingService struct {
	provider *tracing.Provider
}

// NewTracingService 创建追踪服务
func NewTracingService(provider *tracing.Provider) *TracingService {
	return &TracingService{provider: provider}
}

// Name 服务名称
func (s *TracingService) Name() string {
	return "tracing"
}

// Start 阻塞至 ctx 结束
func (s *TracingService) Start(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

// Stop 刷新并关闭导出器
func (s *TracingService) Stop(ctx context.Context) error {
	if s == nil || s.provider == nil {
		return nil
	}
	return s.provider.Shutdown(ctx)
}
