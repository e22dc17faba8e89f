package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"

	"github.com/gorilla/securecookie"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "shopctl",
		Usage: "storefront maintenance commands",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Run database migration",
				Action: withContainer(runMigrate),
			},
			{
				Name:   "seed",
				Usage:  "Insert demo categories, products, a sale and a discount code",
				Action: withContainer(runSeed),
			},
			{
				Name:  "variations",
				Usage: "Manage product variations",
				Commands: []*cli.Command{
					{
						Name:  "generate",
						Usage: "Create variations from option values, e.g. --axis 1=S,M,L --axis 2=Red,Blue",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "product", Usage: "product id", Required: true},
							&cli.StringSliceFlag{Name: "axis", Usage: "axis=value,value", Required: true},
						},
						Action: withContainer(runVariationsGenerate),
					},
					{
						Name:  "manage-empty",
						Usage: "Create or remove the empty variation and fix the default",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "product", Usage: "product id", Required: true},
						},
						Action: withContainer(runVariationsManageEmpty),
					},
				},
			},
			{
				Name:  "images",
				Usage: "Manage product images",
				Commands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Add an image and assign it to variations without one",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "product", Usage: "product id", Required: true},
							&cli.StringFlag{Name: "file", Usage: "image path", Required: true},
							&cli.StringFlag{Name: "description", Usage: "image description"},
							&cli.IntFlag{Name: "sort", Usage: "sort order"},
						},
						Action: withContainer(runImagesAdd),
					},
					{
						Name:  "delete",
						Usage: "Delete images and reassign the variations that used them",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "product", Usage: "product id", Required: true},
							&cli.StringSliceFlag{Name: "id", Usage: "image id", Required: true},
						},
						Action: withContainer(runImagesDelete),
					},
				},
			},
			{
				Name:  "sale",
				Usage: "Manage sales",
				Commands: []*cli.Command{
					{
						Name:   "apply",
						Usage:  "Activate a sale and stamp sale prices",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "id", Usage: "sale id", Required: true}},
						Action: withContainer(runSaleApply),
					},
					{
						Name:   "deactivate",
						Usage:  "Deactivate a sale and clear its sale prices",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "id", Usage: "sale id", Required: true}},
						Action: withContainer(runSaleDeactivate),
					},
				},
			},
			{
				Name:  "carts",
				Usage: "Manage carts",
				Commands: []*cli.Command{
					{
						Name:   "sweep",
						Usage:  "Delete expired carts",
						Action: withContainer(runCartsSweep),
					},
				},
			},
			{
				Name:   "generate-keys",
				Usage:  "Print random session.auth_key and session.encrypt_key values",
				Action: runGenerateKeys,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type containerAction func(ctx context.Context, cmd *cli.Command, c *provider.Container) error

// withContainer 加载配置并连接数据库后执行命令
func withContainer(action containerAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := config.Load()
		logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
		if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
			MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		}); err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		return action(ctx, cmd, provider.NewContainerWithDB(cfg, models.DB, nil))
	}
}

func runMigrate(_ context.Context, _ *cli.Command, _ *provider.Container) error {
	if err := models.AutoMigrate(); err != nil {
		return err
	}
	logger.Infow("shopctl_migrated")
	return nil
}

func runVariationsGenerate(_ context.Context, cmd *cli.Command, c *provider.Container) error {
	productID, err := parseID(cmd.String("product"))
	if err != nil {
		return err
	}
	selections, err := parseAxisFlags(cmd.StringSlice("axis"))
	if err != nil {
		return err
	}
	created, err := c.VariationService.CreateFromOptions(productID, selections)
	if err != nil {
		return err
	}
	if _, err := c.VariationService.ManageEmpty(productID); err != nil {
		return err
	}
	for _, variation := range created {
		fmt.Printf("%s\t%s\n", variation.SKU, variation.Options.Label())
	}
	return nil
}

func runVariationsManageEmpty(_ context.Context, cmd *cli.Command, c *provider.Container) error {
	productID, err := parseID(cmd.String("product"))
	if err != nil {
		return err
	}
	variations, err := c.VariationService.ManageEmpty(productID)
	if err != nil {
		return err
	}
	fmt.Printf("product %d has %d variation(s)\n", productID, len(variations))
	return nil
}

func runImagesAdd(_ context.Context, cmd *cli.Command, c *provider.Container) error {
	productID, err := parseID(cmd.String("product"))
	if err != nil {
		return err
	}
	image, err := c.VariationService.AddImage(productID, cmd.String("file"), cmd.String("description"), int(cmd.Int("sort")))
	if err != nil {
		return err
	}
	fmt.Printf("image %d added to product %d\n", image.ID, productID)
	return nil
}

func runImagesDelete(_ context.Context, cmd *cli.Command, c *provider.Container) error {
	productID, err := parseID(cmd.String("product"))
	if err != nil {
		return err
	}
	imageIDs, err := parseIDs(cmd.StringSlice("id"))
	if err != nil {
		return err
	}
	if err := c.VariationService.DeleteImages(productID, imageIDs); err != nil {
		return err
	}
	logger.Infow("shopctl_images_deleted", "product_id", productID, "image_ids", imageIDs)
	return nil
}

func runSaleApply(_ context.Context, cmd *cli.Command, c *provider.Container) error {
	saleID, err := parseID(cmd.String("id"))
	if err != nil {
		return err
	}
	sale, err := c.SaleService.Activate(saleID)
	if err != nil {
		return err
	}
	logger.Infow("shopctl_sale_applied", "sale_id", sale.ID, "title", sale.Title)
	return nil
}

func runSaleDeactivate(_ context.Context, cmd *cli.Command, c *provider.Container) error {
	saleID, err := parseID(cmd.String("id"))
	if err != nil {
		return err
	}
	_, err = c.SaleService.Deactivate(saleID)
	return err
}

func runCartsSweep(_ context.Context, _ *cli.Command, c *provider.Container) error {
	return c.CartService.SweepExpired()
}

func runGenerateKeys(_ context.Context, _ *cli.Command) error {
	authKey := securecookie.GenerateRandomKey(32)
	encryptKey := securecookie.GenerateRandomKey(16)
	if authKey == nil || encryptKey == nil {
		return fmt.Errorf("generate random key failed")
	}
	fmt.Printf("session:\n  auth_key: %s\n  encrypt_key: %s\n", hex.EncodeToString(authKey), hex.EncodeToString(encryptKey))
	return nil
}
