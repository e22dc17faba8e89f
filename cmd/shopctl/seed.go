package main

import (
	"context"
	"fmt"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/service"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
)

type seedProduct struct {
	slug     string
	title    string
	category string
	price    string
	stock    int
	axes     map[int][]string
	images   []string
}

var seedCategories = []models.Category{
	{Slug: "kitchen", Title: "Kitchen", SortOrder: 20},
	{Slug: "apparel", Title: "Apparel", SortOrder: 10},
}

var seedProducts = []seedProduct{
	{slug: "kettle", title: "Stovetop Kettle", category: "kitchen", price: "45.00", stock: 12, images: []string{"products/kettle.jpg"}},
	{slug: "mug", title: "Enamel Mug", category: "kitchen", price: "12.50", stock: 40, images: []string{"products/mug.jpg"}},
	{
		slug: "tee", title: "Cotton Tee", category: "apparel", price: "25.00", stock: 8,
		axes:   map[int][]string{1: {"S", "M", "L"}, 2: {"Black", "White"}},
		images: []string{"products/tee-front.jpg", "products/tee-back.jpg"},
	},
}

func runSeed(_ context.Context, _ *cli.Command, c *provider.Container) error {
	if err := models.AutoMigrate(); err != nil {
		return err
	}

	categoryIDs := map[string]uint{}
	for _, category := range seedCategories {
		existing, err := c.CategoryRepo.GetBySlug(category.Slug)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := c.CategoryRepo.Create(&category); err != nil {
				return fmt.Errorf("create category %s: %w", category.Slug, err)
			}
			existing = &category
		}
		categoryIDs[existing.Slug] = existing.ID
	}

	var apparelProducts []uint
	for _, item := range seedProducts {
		productID, err := seedOneProduct(c, item, categoryIDs[item.category])
		if err != nil {
			return fmt.Errorf("seed product %s: %w", item.slug, err)
		}
		if item.category == "apparel" {
			apparelProducts = append(apparelProducts, productID)
		}
	}

	sales, err := c.SaleRepo.List()
	if err != nil {
		return err
	}
	if len(sales) == 0 {
		percent := decimal.NewFromInt(20)
		sale, err := c.SaleService.Save(0, service.SaleInput{
			Title:       "Apparel 20% off",
			Active:      true,
			Percent:     &percent,
			CategoryIDs: []uint{categoryIDs["apparel"]},
		})
		if err != nil {
			return fmt.Errorf("seed sale: %w", err)
		}
		logger.Infow("shopctl_seed_sale", "sale_id", sale.ID, "products", len(apparelProducts))
	}

	existingCode, err := c.DiscountCodeRepo.GetByCode("WELCOME10")
	if err != nil {
		return err
	}
	if existingCode == nil {
		deduct := decimal.NewFromInt(10)
		minPurchase := decimal.NewFromInt(50)
		uses := 100
		if _, err := c.DiscountCodeService.Save(0, service.DiscountCodeInput{
			Code:          "WELCOME10",
			Title:         "Welcome",
			Active:        true,
			Deduct:        &deduct,
			MinPurchase:   &minPurchase,
			UsesRemaining: &uses,
		}); err != nil {
			return fmt.Errorf("seed discount code: %w", err)
		}
	}

	logger.Infow("shopctl_seeded", "categories", len(seedCategories), "products", len(seedProducts))
	return nil
}

func seedOneProduct(c *provider.Container, item seedProduct, categoryID uint) (uint, error) {
	existing, err := c.ProductRepo.GetBySlug(item.slug, false)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	price, err := models.ParseMoney(item.price)
	if err != nil {
		return 0, err
	}
	product := &models.Product{
		CategoryID: categoryID,
		Slug:       item.slug,
		Title:      item.title,
		Available:  true,
		Priced:     models.Priced{UnitPrice: &price},
	}
	if err := c.ProductRepo.Create(product); err != nil {
		return 0, err
	}
	if len(item.axes) > 0 {
		if _, err := c.VariationService.CreateFromOptions(product.ID, item.axes); err != nil {
			return 0, err
		}
	}
	variations, err := c.VariationService.ManageEmpty(product.ID)
	if err != nil {
		return 0, err
	}

	updates := make([]service.VariationUpdate, 0, len(variations))
	for i, variation := range variations {
		stock := item.stock
		updates = append(updates, service.VariationUpdate{
			ID:         variation.ID,
			Priced:     variation.Priced,
			NumInStock: &stock,
			Default:    i == 0,
			ImageID:    variation.ImageID,
		})
	}
	if err := c.VariationService.UpdateVariations(product.ID, updates); err != nil {
		return 0, err
	}
	for i, file := range item.images {
		if _, err := c.VariationService.AddImage(product.ID, file, item.title, i); err != nil {
			return 0, err
		}
	}
	if err := c.VariationService.CopyDefaultVariation(product.ID); err != nil {
		return 0, err
	}
	return product.ID, nil
}
