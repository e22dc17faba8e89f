package provider

import (
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"
	"github.com/storefront-next/internal/session"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Sessions    *session.Manager

	// Repositories
	CategoryRepo     repository.CategoryRepository
	ProductRepo      repository.ProductRepository
	VariationRepo    repository.VariationRepository
	CartRepo         repository.CartRepository
	OrderRepo        repository.OrderRepository
	SaleRepo         repository.SaleRepository
	DiscountCodeRepo repository.DiscountCodeRepository
	DiscountScope    repository.DiscountScopeRepository

	// Services
	VariationService    *service.VariationService
	CartService         *service.CartService
	SaleService         *service.SaleService
	DiscountCodeService *service.DiscountCodeService
	OrderService        *service.OrderService
	CheckoutService     *service.CheckoutService
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

	return NewContainerWithDB(cfg, models.DB, queueClient)
}

// NewContainerWithDB 使用指定数据库构建容器（命令行工具与测试使用）
func NewContainerWithDB(cfg *config.Config, db *gorm.DB, queueClient *queue.Client) *Container {
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Sessions:    session.NewManager(cfg.Session),
	}

	// 1. 初始化 Repositories
	c.initRepositories(db)

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.CategoryRepo = repository.NewCategoryRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.VariationRepo = repository.NewVariationRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.SaleRepo = repository.NewSaleRepository(db)
	c.DiscountCodeRepo = repository.NewDiscountCodeRepository(db)
	c.DiscountScope = repository.NewDiscountScopeRepository(db)
}

func (c *Container) initServices() {
	shop := c.Config.Shop
	c.VariationService = service.NewVariationService(c.ProductRepo, c.VariationRepo, shop)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo, c.VariationRepo, shop)
	c.SaleService = service.NewSaleService(c.SaleRepo, c.ProductRepo, c.VariationRepo, c.DiscountScope)
	c.DiscountCodeService = service.NewDiscountCodeService(c.DiscountCodeRepo, c.DiscountScope)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CartRepo, c.ProductRepo, c.VariationRepo, c.DiscountCodeRepo, shop)
	c.CheckoutService = service.NewCheckoutService(
		c.CartService,
		c.DiscountCodeService,
		c.OrderService,
		c.Config.Checkout,
		checkout.DefaultHandlers(c.Config, c.QueueClient),
	)
}
