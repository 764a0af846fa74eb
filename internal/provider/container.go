package provider

import (
	"github.com/hairlab-next/internal/cache"
	"github.com/hairlab-next/internal/config"
	"github.com/hairlab-next/internal/logger"
	"github.com/hairlab-next/internal/models"
	"github.com/hairlab-next/internal/queue"
	"github.com/hairlab-next/internal/repository"
	"github.com/hairlab-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	DiscountRuleRepo   repository.DiscountRuleRepository
	ProductBundleRepo  repository.ProductBundleRepository
	PromotionRepo      repository.PromotionRepository
	PromotionUsageRepo repository.PromotionUsageRepository
	LoyaltyRepo        repository.LoyaltyRepository

	// Services
	RuleStore            *service.RuleStore
	DiscountService      *service.DiscountService
	PromoService         *service.PromoService
	LoyaltyService       *service.LoyaltyService
	PricingService       *service.PricingService
	CheckoutService      *service.CheckoutService
	DiscountAdminService *service.DiscountAdminService
	PromoAdminService    *service.PromoAdminService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
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

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.DiscountRuleRepo = repository.NewDiscountRuleRepository(db)
	c.ProductBundleRepo = repository.NewProductBundleRepository(db)
	c.PromotionRepo = repository.NewPromotionRepository(db)
	c.PromotionUsageRepo = repository.NewPromotionUsageRepository(db)
	c.LoyaltyRepo = repository.NewLoyaltyRepository(db)
}

func (c *Container) initServices() {
	c.RuleStore = service.NewRuleStore(c.DiscountRuleRepo, c.ProductBundleRepo, c.Config.Pricing.RuleCacheTTLSeconds)
	c.DiscountService = service.NewDiscountService(c.RuleStore)
	c.PromoService = service.NewPromoService(c.PromotionRepo, c.PromotionUsageRepo)
	c.LoyaltyService = service.NewLoyaltyService(c.LoyaltyRepo, c.Config.Loyalty)
	c.PricingService = service.NewPricingService(c.DiscountService, c.PromoService, c.LoyaltyService)
	c.CheckoutService = service.NewCheckoutService(c.PromoService, c.LoyaltyService)
	c.DiscountAdminService = service.NewDiscountAdminService(c.DiscountRuleRepo, c.ProductBundleRepo, c.RuleStore)
	c.PromoAdminService = service.NewPromoAdminService(c.PromotionRepo, c.PromotionUsageRepo)
}
