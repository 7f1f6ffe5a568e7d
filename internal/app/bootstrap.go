package app

import (
	"errors"
	"net"

	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/provider"
	"github.com/fidelidade-next/internal/realtime"
	"github.com/fidelidade-next/internal/router"
	"github.com/fidelidade-next/internal/tracing"
	"github.com/fidelidade-next/internal/worker"
)

// BuildRunner 按模式组装服务
//
// 启动顺序：追踪 -> 跨实例桥接 -> 商城视图 -> HTTP；停止时逆序，保证追踪最后刷新。
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	opts := Options{Config: cfg, Mode: mode}
	container := provider.NewContainer(cfg)

	var services []Service
	if opts.servesAPI() {
		apiServices, err := buildAPIServices(cfg, container)
		if err != nil {
			return nil, err
		}
		services = append(services, apiServices...)
	}
	if opts.runsWorker() {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		switch {
		case err == nil:
			services = append(services, workerService)
		case mode == ModeWorker:
			return nil, err
		default:
			// all 模式下队列关闭时报表改为同步生成
			logger.Warnw("worker_service_skipped", "error", err)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

func buildAPIServices(cfg *config.Config, container *provider.Container) ([]Service, error) {
	tracer, err := tracing.Init(cfg.Tracing)
	if err != nil {
		logger.Warnw("tracing_init_failed", "error", err)
		tracer = nil
	}
	services := []Service{NewTracingService(tracer)}

	if container.FeedBroker != nil {
		bridge, err := realtime.NewBridge(container.Hub, container.FeedBroker)
		if err != nil {
			return nil, err
		}
		services = append(services, bridge)
	}
	if container.StorefrontView != nil {
		services = append(services, container.StorefrontView)
	}

	engine := router.SetupRouter(cfg, container, tracer)
	services = append(services, NewHTTPService(listenAddr(cfg.Server), engine, cfg.Server))
	return services, nil
}

func listenAddr(server config.ServerConfig) string {
	return net.JoinHostPort(server.Host, server.Port)
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}
	mode, err := ParseMode(opts.Mode)
	if err != nil {
		return err
	}
	opts.Mode = mode

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config.Server), "mode", opts.Mode, "services", runner.Names())
	return RunWithOptions(runner, opts)
}
