package repository

import (
	"testing"
	"time"

	"github.com/storefront-next/internal/models"
)

func createTestCart(t *testing.T, repo *GormCartRepository, key string, lastUpdated time.Time, sku string, quantity int) *models.Cart {
	t.Helper()
	cart := &models.Cart{Key: key, LastUpdated: lastUpdated}
	if err := repo.Create(cart); err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if sku != "" {
		item := &models.CartItem{CartID: cart.ID, SKU: sku}
		item.SetQuantity(quantity)
		if err := repo.CreateItem(item); err != nil {
			t.Fatalf("create cart item failed: %v", err)
		}
	}
	return cart
}

func TestCartRepositoryReservedQuantityIgnoresExpiredCarts(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewCartRepository(db)
	now := time.Now()
	cutoff := now.Add(-30 * time.Minute)

	createTestCart(t, repo, "active-a", now, "SKU-1", 2)
	createTestCart(t, repo, "active-b", now.Add(-10*time.Minute), "SKU-1", 3)
	createTestCart(t, repo, "expired", now.Add(-time.Hour), "SKU-1", 7)
	createTestCart(t, repo, "other", now, "SKU-2", 4)

	reserved, err := repo.ReservedQuantity("SKU-1", cutoff)
	if err != nil {
		t.Fatalf("reserved quantity failed: %v", err)
	}
	if reserved != 5 {
		t.Fatalf("reserved want 5 got %d", reserved)
	}

	none, err := repo.ReservedQuantity("SKU-404", cutoff)
	if err != nil {
		t.Fatalf("reserved quantity failed: %v", err)
	}
	if none != 0 {
		t.Fatalf("reserved for unknown sku want 0 got %d", none)
	}
}

func TestCartRepositoryDeleteExpiredCascadesItems(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewCartRepository(db)
	now := time.Now()

	fresh := createTestCart(t, repo, "fresh", now, "SKU-1", 1)
	stale := createTestCart(t, repo, "stale", now.Add(-2*time.Hour), "SKU-1", 1)

	removed, err := repo.DeleteExpired(now.Add(-30 * time.Minute))
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed want 1 got %d", removed)
	}
	gone, err := repo.GetByKey("stale")
	if err != nil {
		t.Fatalf("get stale cart failed: %v", err)
	}
	if gone != nil {
		t.Fatalf("stale cart should be deleted")
	}
	var orphanItems int64
	if err := db.Model(&models.CartItem{}).Where("cart_id = ?", stale.ID).Count(&orphanItems).Error; err != nil {
		t.Fatalf("count items failed: %v", err)
	}
	if orphanItems != 0 {
		t.Fatalf("stale cart items should be deleted, got %d", orphanItems)
	}
	kept, err := repo.GetByKey("fresh")
	if err != nil || kept == nil || kept.ID != fresh.ID || len(kept.Items) != 1 {
		t.Fatalf("fresh cart should survive, got %+v err=%v", kept, err)
	}
}
