package service

import (
	"testing"

	"github.com/storefront-next/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCreateFromOptionsIsIdempotent(t *testing.T) {
	env := newServiceTestEnv(t)
	product := env.createProduct(t, "tee", 20)
	selections := map[int][]string{1: {"S", "M"}, 2: {"Red", "Blue"}}

	created, err := env.variations.CreateFromOptions(product.ID, selections)
	require.NoError(t, err)
	require.Len(t, created, 4)

	again, err := env.variations.CreateFromOptions(product.ID, selections)
	require.NoError(t, err)
	require.Empty(t, again)

	all, err := env.variationRepo.ListByProduct(product.ID)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for _, variation := range all {
		require.NotEmpty(t, variation.SKU)
		require.NotNil(t, variation.UnitPrice)
		require.Equal(t, "20", variation.UnitPrice.Decimal.String())
	}
}

func TestCreateFromOptionsRejectsUnknownAxis(t *testing.T) {
	env := newServiceTestEnv(t)
	product := env.createProduct(t, "mug", 8)

	_, err := env.variations.CreateFromOptions(product.ID, map[int][]string{9: {"Large"}})
	require.ErrorIs(t, err, ErrUnknownOptionAxis)
}

func TestManageEmptyKeepsExactlyOneDefault(t *testing.T) {
	env := newServiceTestEnv(t)

	empty := env.createProduct(t, "poster", 15)
	variations, err := env.variations.ManageEmpty(empty.ID)
	require.NoError(t, err)
	require.Len(t, variations, 1)
	require.True(t, variations[0].Options.IsEmpty())
	require.True(t, variations[0].Default)

	matrix := env.createProduct(t, "hoodie", 40)
	_, err = env.variations.CreateFromOptions(matrix.ID, map[int][]string{1: {"S", "M"}, 2: {"Black"}})
	require.NoError(t, err)
	require.NoError(t, env.variations.SetDefault(matrix.ID, nil))
	variations, err = env.variations.ManageEmpty(matrix.ID)
	require.NoError(t, err)
	defaults := 0
	for _, variation := range variations {
		if variation.Default {
			defaults++
		}
	}
	require.Equal(t, 1, defaults)

	// 再次调用仍然只有一个默认规格
	variations, err = env.variations.ManageEmpty(matrix.ID)
	require.NoError(t, err)
	defaults = 0
	for _, variation := range variations {
		if variation.Default {
			defaults++
		}
	}
	require.Equal(t, 1, defaults)
}

func TestSetDefaultRejectsMultiple(t *testing.T) {
	env := newServiceTestEnv(t)
	product := env.createProduct(t, "cap", 12)
	created, err := env.variations.CreateFromOptions(product.ID, map[int][]string{2: {"Red", "Green"}})
	require.NoError(t, err)

	err = env.variations.SetDefault(product.ID, []uint{created[0].ID, created[1].ID})
	require.ErrorIs(t, err, ErrMultipleDefaultVariations)
}

func TestSizeAxisScenario(t *testing.T) {
	env := newServiceTestEnv(t)
	product := env.createProduct(t, "shirt", 25)

	created, err := env.variations.CreateFromOptions(product.ID, map[int][]string{1: {"S", "M", "L"}})
	require.NoError(t, err)
	require.Len(t, created, 3)

	variations, err := env.variations.ManageEmpty(product.ID)
	require.NoError(t, err)
	require.Len(t, variations, 3)
	for _, variation := range variations {
		require.False(t, variation.Options.IsEmpty())
	}

	found, err := env.variations.FindByOptions(product.ID, models.OptionValues{1: "M"})
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "M", found.Options[1])
}

func TestManageEmptyRemovesEmptyVariationOnceOptionsExist(t *testing.T) {
	env := newServiceTestEnv(t)
	product, empty := env.createStockedProduct(t, "scarf", 30, intPtr(4))
	require.Equal(t, 4, *empty.NumInStock)

	_, err := env.variations.CreateFromOptions(product.ID, map[int][]string{2: {"Grey", "Navy"}})
	require.NoError(t, err)
	variations, err := env.variations.ManageEmpty(product.ID)
	require.NoError(t, err)
	require.Len(t, variations, 2)
	for _, variation := range variations {
		require.NotEqual(t, empty.ID, variation.ID)
	}
}

func TestSetDefaultImagesAssignsAndClears(t *testing.T) {
	env := newServiceTestEnv(t)
	product := env.createProduct(t, "scarf", 18)
	_, err := env.variations.CreateFromOptions(product.ID, map[int][]string{2: {"Red", "Blue"}})
	require.NoError(t, err)
	_, err = env.variations.ManageEmpty(product.ID)
	require.NoError(t, err)

	first := &models.ProductImage{ProductID: product.ID, File: "scarf-a.jpg", SortOrder: 0}
	second := &models.ProductImage{ProductID: product.ID, File: "scarf-b.jpg", SortOrder: 1}
	require.NoError(t, env.productRepo.CreateImage(first))
	require.NoError(t, env.productRepo.CreateImage(second))

	imageIDs := func() []*uint {
		variations, err := env.variationRepo.ListByProduct(product.ID)
		require.NoError(t, err)
		ids := make([]*uint, 0, len(variations))
		for _, variation := range variations {
			ids = append(ids, variation.ImageID)
		}
		return ids
	}

	require.NoError(t, env.variations.SetDefaultImages(product.ID, nil))
	for _, id := range imageIDs() {
		require.NotNil(t, id)
		require.Equal(t, first.ID, *id)
	}

	require.NoError(t, env.variations.SetDefaultImages(product.ID, []uint{first.ID}))
	for _, id := range imageIDs() {
		require.Nil(t, id)
	}

	require.NoError(t, env.variations.SetDefaultImages(product.ID, []uint{first.ID}))
	for _, id := range imageIDs() {
		require.Nil(t, id)
	}

	require.NoError(t, env.variations.SetDefaultImages(product.ID, nil))
	before := imageIDs()
	require.NoError(t, env.variations.SetDefaultImages(product.ID, nil))
	require.Equal(t, before, imageIDs())
}

func TestDeleteImagesReassignsVariations(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "tray", 9, nil)

	front, err := env.variations.AddImage(product.ID, "tray-front.jpg", "front", 0)
	require.NoError(t, err)
	require.Equal(t, front.ID, *env.reloadVariation(t, variation.ID).ImageID)

	back, err := env.variations.AddImage(product.ID, "tray-back.jpg", "back", 1)
	require.NoError(t, err)
	require.Equal(t, front.ID, *env.reloadVariation(t, variation.ID).ImageID)

	require.NoError(t, env.variations.DeleteImages(product.ID, []uint{front.ID}))
	require.Equal(t, back.ID, *env.reloadVariation(t, variation.ID).ImageID)
	images, err := env.productRepo.ListImages(product.ID)
	require.NoError(t, err)
	require.Len(t, images, 1)

	_, err = env.variations.AddImage(product.ID, " ", "", 0)
	require.ErrorIs(t, err, ErrProductImageInvalid)
}
