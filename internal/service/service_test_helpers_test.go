package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db            *gorm.DB
	cfg           *config.Config
	productRepo   *repository.GormProductRepository
	variationRepo *repository.GormVariationRepository
	cartRepo      *repository.GormCartRepository
	orderRepo     *repository.GormOrderRepository
	codeRepo      *repository.GormDiscountCodeRepository
	saleRepo      *repository.GormSaleRepository
	scopeRepo     *repository.GormDiscountScopeRepository

	variations *VariationService
	carts      *CartService
	sales      *SaleService
	codes      *DiscountCodeService
	orders     *OrderService
}

func newServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	cfg := config.Default()

	env := &serviceTestEnv{
		db:            db,
		cfg:           cfg,
		productRepo:   repository.NewProductRepository(db),
		variationRepo: repository.NewVariationRepository(db),
		cartRepo:      repository.NewCartRepository(db),
		orderRepo:     repository.NewOrderRepository(db),
		codeRepo:      repository.NewDiscountCodeRepository(db),
		saleRepo:      repository.NewSaleRepository(db),
		scopeRepo:     repository.NewDiscountScopeRepository(db),
	}
	env.variations = NewVariationService(env.productRepo, env.variationRepo, cfg.Shop)
	env.carts = NewCartService(env.cartRepo, env.productRepo, env.variationRepo, cfg.Shop)
	env.sales = NewSaleService(env.saleRepo, env.productRepo, env.variationRepo, env.scopeRepo)
	env.codes = NewDiscountCodeService(env.codeRepo, env.scopeRepo)
	env.orders = NewOrderService(env.orderRepo, env.cartRepo, env.productRepo, env.variationRepo, env.codeRepo, cfg.Shop)
	return env
}

func (e *serviceTestEnv) checkoutService(cfg config.CheckoutConfig, handlers checkout.Handlers) *CheckoutService {
	return NewCheckoutService(e.carts, e.codes, e.orders, cfg, handlers)
}

func (e *serviceTestEnv) createProduct(t *testing.T, slug string, price int64) *models.Product {
	t.Helper()
	unit := models.NewMoneyFromDecimal(decimal.NewFromInt(price))
	product := &models.Product{
		Slug:      slug,
		Title:     slug,
		Available: true,
		Priced:    models.Priced{UnitPrice: &unit},
	}
	require.NoError(t, e.productRepo.Create(product))
	return product
}

// createStockedProduct 创建带单一默认规格的商品，stock 为 nil 表示不跟踪库存
func (e *serviceTestEnv) createStockedProduct(t *testing.T, slug string, price int64, stock *int) (*models.Product, *models.Variation) {
	t.Helper()
	product := e.createProduct(t, slug, price)
	product.NumInStock = stock
	require.NoError(t, e.productRepo.Update(product))
	variations, err := e.variations.ManageEmpty(product.ID)
	require.NoError(t, err)
	require.Len(t, variations, 1)
	return product, &variations[0]
}

func (e *serviceTestEnv) reloadVariation(t *testing.T, id uint) *models.Variation {
	t.Helper()
	variation, err := e.variationRepo.GetByID(id)
	require.NoError(t, err)
	require.NotNil(t, variation)
	return variation
}

func (e *serviceTestEnv) countOrders(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.Order{}).Count(&count).Error)
	return count
}

func testAddress() models.Address {
	return models.Address{
		FirstName: "Grace",
		LastName:  "Hopper",
		Street:    "1 Navy Yard",
		City:      "Arlington",
		State:     "VA",
		Postcode:  "22202",
		Country:   "United States",
		Phone:     "5550100",
		Email:     "grace@example.com",
	}
}

func testCard() checkout.CardForm {
	return checkout.CardForm{
		Name:        "Grace Hopper",
		Type:        "Mastercard",
		Number:      "5555555555554444",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().Year() + 2,
		CCV:         "321",
	}
}

func intPtr(v int) *int {
	return &v
}

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
