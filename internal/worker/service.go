package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/queue"

	"github.com/hibiken/asynq"
)

// ErrQueueDisabled 队列未启用时无法创建消费服务
var ErrQueueDisabled = errors.New("queue disabled")

// Service 报表任务消费服务
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建消费服务并注册任务处理器
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, ErrQueueDisabled
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg, err := queue.ServerConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("worker config: %w", err)
	}
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{server: asynq.NewServer(opt, serverCfg), mux: mux}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 开始消费并阻塞到 ctx 结束；信号由运行器统一处理
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	logger.Infow("worker_consuming", "task_types", []string{queue.TaskReportGenerate})
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务结束后关闭
func (s *Service) Stop(context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}
