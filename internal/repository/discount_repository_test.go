package repository

import (
	"reflect"
	"testing"

	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestDiscountCodeRepositoryDecrementUsesNeverNegative(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewDiscountCodeRepository(db)
	code := &models.DiscountCode{
		Code:          "SAVE10",
		Active:        true,
		Reduction:     models.PercentBy(decimal.NewFromInt(10)),
		UsesRemaining: intPtr(1),
	}
	if err := repo.Create(code); err != nil {
		t.Fatalf("create code failed: %v", err)
	}

	affected, err := repo.DecrementUses("save10")
	if err != nil || affected != 1 {
		t.Fatalf("first decrement want 1 row, got %d err=%v", affected, err)
	}
	affected, err = repo.DecrementUses("SAVE10")
	if err != nil || affected != 0 {
		t.Fatalf("second decrement want 0 rows, got %d err=%v", affected, err)
	}
	reloaded, err := repo.GetByCode("SAVE10")
	if err != nil || reloaded == nil {
		t.Fatalf("reload code failed: %v", err)
	}
	if reloaded.UsesRemaining == nil || *reloaded.UsesRemaining != 0 {
		t.Fatalf("uses remaining want 0 got %v", reloaded.UsesRemaining)
	}
}

func TestDiscountCodeRepositoryDecrementUsesUnlimited(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewDiscountCodeRepository(db)
	code := &models.DiscountCode{Code: "FOREVER", Active: true, Reduction: models.DeductBy(decimal.NewFromInt(5))}
	if err := repo.Create(code); err != nil {
		t.Fatalf("create code failed: %v", err)
	}
	affected, err := repo.DecrementUses("FOREVER")
	if err != nil || affected != 0 {
		t.Fatalf("unlimited code should not be decremented, got %d err=%v", affected, err)
	}
}

func TestDiscountScopeResolveProductIDs(t *testing.T) {
	db := openRepositoryTestDB(t)
	repo := NewDiscountScopeRepository(db)
	a := createTestProduct(t, db, "a", 1)
	b := createTestProduct(t, db, "b", 2)
	c := createTestProduct(t, db, "c", 2)
	createTestVariation(t, db, c.ID, "C-1", nil, true)

	union, err := repo.ResolveProductIDs(models.DiscountScope{
		ProductIDs:  models.UintArray{a.ID, b.ID},
		CategoryIDs: models.UintArray{2},
	})
	if err != nil {
		t.Fatalf("resolve union failed: %v", err)
	}
	if !reflect.DeepEqual(union, []uint{a.ID, b.ID, c.ID}) {
		t.Fatalf("union mismatch: %v", union)
	}

	intersection, err := repo.ResolveProductIDs(models.DiscountScope{
		ProductIDs:  models.UintArray{a.ID, b.ID},
		CategoryIDs: models.UintArray{2},
		Combined:    true,
	})
	if err != nil {
		t.Fatalf("resolve intersection failed: %v", err)
	}
	if !reflect.DeepEqual(intersection, []uint{b.ID}) {
		t.Fatalf("intersection mismatch: %v", intersection)
	}

	categoryOnly, err := repo.ResolveProductIDs(models.DiscountScope{CategoryIDs: models.UintArray{2}, Combined: true})
	if err != nil {
		t.Fatalf("resolve category only failed: %v", err)
	}
	if !reflect.DeepEqual(categoryOnly, []uint{b.ID, c.ID}) {
		t.Fatalf("combined with one empty side should use the other side: %v", categoryOnly)
	}

	skus, err := repo.ResolveSKUs(models.DiscountScope{ProductIDs: models.UintArray{c.ID}})
	if err != nil {
		t.Fatalf("resolve skus failed: %v", err)
	}
	if !reflect.DeepEqual(skus, []string{"C-1"}) {
		t.Fatalf("skus mismatch: %v", skus)
	}
}
