//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var integrationTables = []interface{}{
	&models.OrderItem{},
	&models.Order{},
	&models.CartItem{},
	&models.Cart{},
	&models.DiscountCode{},
	&models.Sale{},
	&models.Variation{},
	&models.ProductOption{},
	&models.ProductImage{},
	&models.Product{},
	&models.Category{},
}

// setupIntegrationDB 按环境变量连接 PostgreSQL / MySQL，未配置时跳过。
func setupIntegrationDB(t *testing.T, driver, envKey string) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv(envKey))
	if dsn == "" {
		t.Skipf("skip %s integration test: %s is empty", driver, envKey)
	}
	db, err := models.OpenDB(driver, dsn, models.DBPoolConfig{MaxOpenConns: 4, MaxIdleConns: 2}, gormlogger.Warn)
	if err != nil {
		t.Fatalf("open %s failed: %v", driver, err)
	}
	_ = db.Migrator().DropTable(integrationTables...)
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate %s failed: %v", driver, err)
	}
	t.Cleanup(func() {
		_ = db.Migrator().DropTable(integrationTables...)
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestIntegrationGuardedUpdates(t *testing.T) {
	drivers := []struct {
		driver string
		envKey string
	}{
		{driver: "postgres", envKey: "TEST_POSTGRES_DSN"},
		{driver: "mysql", envKey: "TEST_MYSQL_DSN"},
	}
	for _, tc := range drivers {
		t.Run(tc.driver, func(t *testing.T) {
			db := setupIntegrationDB(t, tc.driver, tc.envKey)
			runGuardedUpdateChecks(t, db)
		})
	}
}

func runGuardedUpdateChecks(t *testing.T, db *gorm.DB) {
	product := createTestProduct(t, db, "Integration-Kettle", 0)
	variation := createTestVariation(t, db, product.ID, "INT-KETTLE", intPtr(3), true)

	products, total, err := NewProductRepository(db).List(ProductListFilter{Page: 1, PageSize: 10, Search: "integration-kettle"})
	if err != nil {
		t.Fatalf("search products failed: %v", err)
	}
	if total != 1 || len(products) != 1 {
		t.Fatalf("case-insensitive search want 1 product got %d", total)
	}

	variationRepo := NewVariationRepository(db)
	stock, err := variationRepo.CommitStock(variation, -5)
	if err != nil {
		t.Fatalf("commit stock failed: %v", err)
	}
	if stock == nil || *stock != -2 {
		t.Fatalf("stock after oversell want -2 got %v", stock)
	}
	reloaded, err := NewProductRepository(db).GetByID(product.ID)
	if err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.NumInStock == nil || *reloaded.NumInStock != -2 {
		t.Fatalf("default variation stock should sync to product, got %v", reloaded.NumInStock)
	}

	uses := 1
	code := &models.DiscountCode{Code: "ONCE", Active: true, UsesRemaining: &uses}
	if err := db.Create(code).Error; err != nil {
		t.Fatalf("create discount code failed: %v", err)
	}
	codeRepo := NewDiscountCodeRepository(db)
	if affected, err := codeRepo.DecrementUses("once"); err != nil || affected != 1 {
		t.Fatalf("first decrement want 1 row got %d (%v)", affected, err)
	}
	if affected, err := codeRepo.DecrementUses("ONCE"); err != nil || affected != 0 {
		t.Fatalf("exhausted decrement want 0 rows got %d (%v)", affected, err)
	}

	cartRepo := NewCartRepository(db)
	cart := &models.Cart{Key: "integration", LastUpdated: time.Now()}
	if err := cartRepo.Create(cart); err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	item := &models.CartItem{CartID: cart.ID, SKU: variation.SKU, Quantity: 2}
	if err := cartRepo.CreateItem(item); err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}
	reserved, err := cartRepo.ReservedQuantity(variation.SKU, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("reserved quantity failed: %v", err)
	}
	if reserved != 2 {
		t.Fatalf("reserved want 2 got %d", reserved)
	}
}
