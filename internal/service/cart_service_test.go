package service

import (
	"errors"
	"testing"
	"time"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAddItemMergesSameSKU(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "vase", 20, intPtr(10))

	_, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 2})
	require.NoError(t, err)
	cart, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	require.Equal(t, 5, cart.Items[0].Quantity)
	require.Equal(t, "100", cart.Items[0].TotalPrice.Decimal.String())
	require.Equal(t, "100", cart.TotalPrice().String())
	require.Equal(t, 5, cart.TotalQuantity())

	reloaded, err := env.productRepo.GetByID(product.ID)
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.TotalCart)
}

func TestAddItemByOptions(t *testing.T) {
	env := newServiceTestEnv(t)
	product := env.createProduct(t, "jacket", 60)
	_, err := env.variations.CreateFromOptions(product.ID, map[int][]string{1: {"S", "L"}})
	require.NoError(t, err)

	cart, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, Options: models.OptionValues{1: "L"}, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Contains(t, cart.Items[0].Description, "L")

	_, err = env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, Options: models.OptionValues{1: "XL"}, Quantity: 1})
	require.ErrorIs(t, err, ErrVariationNotFound)
}

func TestAddItemRejectsBeyondLiveStock(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "rug", 70, intPtr(3))

	_, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 4})
	require.ErrorIs(t, err, ErrStockInsufficient)
	require.True(t, IsStockError(err))

	_, err = env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 0})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestUpdateQuantitiesChecksDeltaAndDeletes(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "plate", 5, intPtr(4))

	cart, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 2})
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = env.carts.UpdateQuantities("shopper", map[uint]int{itemID: 4})
	require.NoError(t, err)
	require.Equal(t, 4, cart.Items[0].Quantity)

	_, err = env.carts.UpdateQuantities("shopper", map[uint]int{itemID: 7})
	require.ErrorIs(t, err, ErrStockInsufficient)

	cart, err = env.carts.RemoveItem("shopper", itemID)
	require.NoError(t, err)
	require.False(t, cart.HasItems())
}

func TestLookupSweepsExpiredAndRefreshesLastUpdated(t *testing.T) {
	env := newServiceTestEnv(t)
	expiry := time.Duration(env.cfg.Shop.CartExpiryMinutes) * time.Minute
	now := time.Now().UTC().Truncate(time.Second)
	env.carts.now = func() time.Time { return now }

	env.reserve(t, "stale", "SKU-STALE", 1, now.Add(-expiry-time.Minute))
	env.reserve(t, "fresh", "SKU-FRESH", 1, now.Add(-expiry/2))

	cart, err := env.carts.Lookup("stale")
	require.NoError(t, err)
	require.Nil(t, cart)
	stale, err := env.cartRepo.GetByKey("stale")
	require.NoError(t, err)
	require.Nil(t, stale)

	cart, err = env.carts.Lookup("fresh")
	require.NoError(t, err)
	require.NotNil(t, cart)
	require.True(t, cart.LastUpdated.Equal(now))
	stored, err := env.cartRepo.GetByKey("fresh")
	require.NoError(t, err)
	require.True(t, stored.LastUpdated.Equal(now))
	require.Len(t, stored.Items, 1)
}

var errTotalCartUnavailable = errors.New("total cart counter unavailable")

type failingTotalCartRepo struct {
	*repository.GormProductRepository
}

func (r failingTotalCartRepo) WithTx(tx *gorm.DB) repository.ProductRepository {
	return failingTotalCartRepo{r.GormProductRepository.WithTx(tx).(*repository.GormProductRepository)}
}

func (r failingTotalCartRepo) IncrementTotalCart(uint, int) error {
	return errTotalCartUnavailable
}

func TestAddItemRollsBackWhenCounterFails(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "jar", 6, intPtr(10))
	carts := NewCartService(env.cartRepo, failingTotalCartRepo{env.productRepo}, env.variationRepo, env.cfg.Shop)

	_, err := carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 2})
	require.ErrorIs(t, err, errTotalCartUnavailable)

	cart, err := env.cartRepo.GetByKey("shopper")
	require.NoError(t, err)
	require.NotNil(t, cart)
	require.Empty(t, cart.Items)
}
