package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/provider"
	"github.com/fidelidade-next/internal/queue"
	"github.com/fidelidade-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReportGenerate, c.handleReportGenerate)
}

func (c *Consumer) handleReportGenerate(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || c.ReportService == nil {
		logger.Debugw("worker_report_generate_skip_nil", "consumer_nil", c == nil)
		return nil
	}
	payload, err := queue.ParseReportGeneratePayload(task)
	if err != nil {
		logger.Warnw("worker_report_generate_payload_invalid", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if err := c.ReportService.Generate(ctx, payload.ReportID); err != nil {
		if errors.Is(err, service.ErrReportNotFound) {
			logger.Debugw("worker_report_generate_skip_not_found", "report_id", payload.ReportID)
			return nil
		}
		logger.Warnw("worker_report_generate_failed", "report_id", payload.ReportID, "error", err)
		return err
	}
	logger.Infow("worker_report_generated", "report_id", payload.ReportID)
	return nil
}
