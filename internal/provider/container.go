package provider

import (
	"time"

	"github.com/fidelidade-next/internal/authz"
	"github.com/fidelidade-next/internal/cache"
	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/queue"
	"github.com/fidelidade-next/internal/realtime"
	"github.com/fidelidade-next/internal/repository"
	"github.com/fidelidade-next/internal/service"

	"gorm.io/gorm"
)

const feedBrokerRedis = "redis"

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	ProfileRepo    repository.ProfileRepository
	MerchantRepo   repository.MerchantRepository
	OfferRepo      repository.OfferRepository
	EnrollmentRepo repository.EnrollmentRepository
	ProductRepo    repository.ProductRepository
	ReportJobRepo  repository.ReportJobRepository

	// Realtime
	Hub            *realtime.Hub
	FeedBroker     *realtime.RedisBroker
	StorefrontView *realtime.StorefrontView

	// Services
	AuthzService      *authz.Service
	AuthService       *service.AuthService
	OfferService      *service.OfferService
	EnrollmentService *service.EnrollmentService
	MerchantService   *service.MerchantService
	ProductService    *service.ProductService
	UploadService     *service.UploadService
	AdminUserService  *service.AdminUserService
	ReportService     *service.ReportService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient, _ = queue.NewClient(nil)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化推送中心
	c.initRealtime()

	// 3. 初始化 Services
	c.initServices(models.DB)

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.ProfileRepo = repository.NewProfileRepository(db)
	c.MerchantRepo = repository.NewMerchantRepository(db)
	c.OfferRepo = repository.NewOfferRepository(db)
	c.EnrollmentRepo = repository.NewEnrollmentRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.ReportJobRepo = repository.NewReportJobRepository(db)
}

func (c *Container) initRealtime() {
	var broker realtime.Broker = realtime.LocalBroker{}
	if c.Config.Feed.Broker == feedBrokerRedis && cache.Enabled() {
		redisBroker, err := realtime.NewRedisBroker(cache.Client(), cache.Prefix())
		if err != nil {
			logger.Warnw("provider_init_feed_broker_failed", "broker", feedBrokerRedis, "error", err)
		} else {
			broker = redisBroker
			c.FeedBroker = redisBroker
		}
	}
	c.Hub = realtime.NewHub(c.Config.Feed.SubscriberBuffer, broker)
	logger.Infow("provider_feed_broker_ready", "broker", broker.Name())

	interval := time.Duration(c.Config.Feed.StorefrontRefreshMinute) * time.Minute
	c.StorefrontView = realtime.NewStorefrontView(c.Hub, c.OfferRepo.ListActive, interval)
}

func (c *Container) initServices(db *gorm.DB) {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.ProfileRepo, c.MerchantRepo)
	c.OfferService = service.NewOfferService(c.OfferRepo, c.MerchantRepo, c.Hub)
	c.EnrollmentService = service.NewEnrollmentService(c.EnrollmentRepo, c.MerchantRepo, c.ProfileRepo, c.OfferRepo)
	c.MerchantService = service.NewMerchantService(c.MerchantRepo, c.StorefrontView, c.OfferService)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.UploadService = service.NewUploadService(c.Config)
	c.AdminUserService = service.NewAdminUserService(c.ProfileRepo)
	c.ReportService = service.NewReportService(c.Config, c.ReportJobRepo, c.ProfileRepo, c.MerchantRepo, c.OfferRepo, c.EnrollmentRepo, c.QueueClient)
}
