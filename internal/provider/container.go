package provider

import (
	"time"

	"github.com/Leclee/lecfaka/internal/cache"
	"github.com/Leclee/lecfaka/internal/config"
	"github.com/Leclee/lecfaka/internal/logger"
	"github.com/Leclee/lecfaka/internal/models"
	"github.com/Leclee/lecfaka/internal/queue"
	"github.com/Leclee/lecfaka/internal/repository"
	"github.com/Leclee/lecfaka/internal/service"

	"github.com/shopspring/decimal"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	UserRepo          repository.UserRepository
	CommodityRepo     repository.CommodityRepository
	CardRepo          repository.CardRepository
	OrderRepo         repository.OrderRepository
	CouponRepo        repository.CouponRepository
	BillRepo          repository.BillRepository
	PaymentMethodRepo repository.PaymentMethodRepository
	SystemConfigRepo  repository.SystemConfigRepository

	// Services
	CardService       *service.CardService
	SettlementService *service.SettlementService
	OrderService      *service.OrderService
	PaymentService    *service.PaymentService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initRepositories()
	c.initServices()
	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CommodityRepo = repository.NewCommodityRepository(db)
	c.CardRepo = repository.NewCardRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.BillRepo = repository.NewBillRepository(db)
	c.PaymentMethodRepo = repository.NewPaymentMethodRepository(db)
	c.SystemConfigRepo = repository.NewSystemConfigRepository(db)
}

func (c *Container) initServices() {
	commissionRate, err := decimal.NewFromString(c.Config.Order.CommissionRate)
	if err != nil || commissionRate.LessThan(decimal.Zero) || commissionRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		logger.Warnw("provider_commission_rate_invalid", "value", c.Config.Order.CommissionRate)
		commissionRate = decimal.NewFromFloat(0.1)
	}

	c.CardService = service.NewCardService(c.CardRepo, c.CommodityRepo)
	c.SettlementService = service.NewSettlementService(
		c.UserRepo, c.BillRepo, c.OrderRepo, c.SystemConfigRepo, c.CardService, commissionRate)
	c.PaymentService = service.NewPaymentService(
		c.OrderRepo, c.CommodityRepo, c.PaymentMethodRepo, c.SettlementService)
	if c.QueueClient != nil {
		c.PaymentService.SetPaidNotifier(c.QueueClient)
	}

	var scheduler service.OrderTimeoutScheduler
	if c.QueueClient != nil {
		scheduler = c.QueueClient
	}
	c.OrderService = service.NewOrderService(
		c.OrderRepo, c.CommodityRepo, c.CouponRepo, c.UserRepo, c.PaymentMethodRepo,
		c.SettlementService, c.CardService, scheduler,
		c.Config.Site.BaseURL,
		time.Duration(c.Config.Order.PaymentExpireMinutes)*time.Minute,
	)
}
