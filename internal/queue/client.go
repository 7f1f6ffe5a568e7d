package queue

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/logger"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault

	defaultQueueHost   = "127.0.0.1"
	defaultQueuePort   = 6379
	defaultConcurrency = 10

	reportMaxRetry    = 3
	reportTaskTimeout = 5 * time.Minute
	reportRetention   = 24 * time.Hour
	shutdownTimeout   = 8 * time.Second
)

// ErrDisabled 队列未启用，调用方应改为同步处理
var ErrDisabled = errors.New("queue disabled")

// Client 任务投递端，未启用时所有投递返回 ErrDisabled
type Client struct {
	inner *asynq.Client
	queue string
}

// NewClient 创建队列客户端；cfg 为空或未启用时返回停用的客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{queue: DefaultQueue}
	if cfg == nil || !cfg.Enabled {
		return c, nil
	}
	if _, err := queueWeights(cfg.Queues); err != nil {
		return nil, err
	}
	c.inner = asynq.NewClient(RedisOpt(cfg))
	return c, nil
}

// Enabled 是否可投递
func (c *Client) Enabled() bool {
	return c != nil && c.inner != nil
}

// Close 关闭底层连接
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.inner.Close()
}

// EnqueueReportGenerate 投递报表生成任务
//
// 任务 ID 由报表 ID 派生，同一报表重复投递只保留一个任务。
func (c *Client) EnqueueReportGenerate(payload ReportGeneratePayload, opts ...asynq.Option) error {
	task, err := NewReportGenerateTask(payload)
	if err != nil {
		return err
	}
	options := []asynq.Option{
		asynq.Queue(c.queueName()),
		asynq.MaxRetry(reportMaxRetry),
		asynq.Timeout(reportTaskTimeout),
		asynq.Retention(reportRetention),
		asynq.TaskID(TaskReportGenerate + ":" + strings.TrimSpace(payload.ReportID)),
	}
	return c.enqueue(task, append(options, opts...)...)
}

func (c *Client) enqueue(task *asynq.Task, opts ...asynq.Option) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	info, err := c.inner.Enqueue(task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		logger.Debugw("queue_task_duplicate", "type", task.Type())
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	logger.Debugw("queue_task_enqueued", "type", task.Type(), "task_id", info.ID, "queue", info.Queue)
	return nil
}

func (c *Client) queueName() string {
	if c == nil || c.queue == "" {
		return DefaultQueue
	}
	return c.queue
}

// ServerConfig 消费端配置：并发数、队列权重以及统一的失败日志
func ServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config, error) {
	concurrency := defaultConcurrency
	var weights map[string]int
	if cfg != nil {
		if cfg.Concurrency > 0 {
			concurrency = cfg.Concurrency
		}
		weights = cfg.Queues
	}
	queues, err := queueWeights(weights)
	if err != nil {
		return asynq.RedisClientOpt{}, asynq.Config{}, err
	}
	return RedisOpt(cfg), asynq.Config{
		Concurrency:     concurrency,
		Queues:          queues,
		ShutdownTimeout: shutdownTimeout,
		Logger:          logger.S().With("component", "asynq"),
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Warnw("queue_task_failed",
				"type", task.Type(),
				"retried", retried,
				"max_retry", maxRetry,
				"error", err,
			)
		}),
	}, nil
}

// RedisOpt 队列使用的 Redis 连接参数
func RedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host, port := defaultQueueHost, defaultQueuePort
	opt := asynq.RedisClientOpt{}
	if cfg != nil {
		if trimmed := strings.TrimSpace(cfg.Host); trimmed != "" {
			host = trimmed
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		opt.Password = cfg.Password
		opt.DB = cfg.DB
	}
	opt.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	return opt
}

// queueWeights 校验队列权重，未配置时只消费默认队列
func queueWeights(weights map[string]int) (map[string]int, error) {
	if len(weights) == 0 {
		return map[string]int{DefaultQueue: 1}, nil
	}
	queues := make(map[string]int, len(weights))
	for name, weight := range weights {
		name = strings.TrimSpace(name)
		if name == "" || weight <= 0 {
			return nil, fmt.Errorf("invalid queue weight %q=%d", name, weight)
		}
		queues[name] = weight
	}
	if _, ok := queues[DefaultQueue]; !ok {
		return nil, fmt.Errorf("queue %q must be consumed", DefaultQueue)
	}
	return queues, nil
}
