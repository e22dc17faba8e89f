package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/storefront-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func openRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func createTestProduct(t *testing.T, db *gorm.DB, slug string, categoryID uint) *models.Product {
	t.Helper()
	price := models.NewMoneyFromDecimal(decimal.NewFromInt(20))
	product := &models.Product{
		CategoryID: categoryID,
		Slug:       slug,
		Title:      slug,
		Available:  true,
		Priced:     models.Priced{UnitPrice: &price},
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createTestVariation(t *testing.T, db *gorm.DB, productID uint, sku string, stock *int, isDefault bool) *models.Variation {
	t.Helper()
	price := models.NewMoneyFromDecimal(decimal.NewFromInt(20))
	variation := &models.Variation{
		ProductID:  productID,
		SKU:        sku,
		Priced:     models.Priced{UnitPrice: &price},
		NumInStock: stock,
		Default:    isDefault,
	}
	if err := db.Create(variation).Error; err != nil {
		t.Fatalf("create variation failed: %v", err)
	}
	return variation
}

func intPtr(v int) *int {
	return &v
}
