package service

import (
	"sort"
	"strings"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// VariationService 商品规格矩阵服务
type VariationService struct {
	productRepo   repository.ProductRepository
	variationRepo repository.VariationRepository
	shop          config.ShopConfig
}

// NewVariationService 创建规格服务
func NewVariationService(productRepo repository.ProductRepository, variationRepo repository.VariationRepository, shop config.ShopConfig) *VariationService {
	return &VariationService{
		productRepo:   productRepo,
		variationRepo: variationRepo,
		shop:          shop,
	}
}

// VariationUpdate 规格批量编辑输入
type VariationUpdate struct {
	ID         uint
	Priced     models.Priced
	NumInStock *int
	Default    bool
	ImageID    *uint
}

// CreateFromOptions 按各规格轴的取值做笛卡尔积，已存在的完全相同组合跳过，返回新建的规格
func (s *VariationService) CreateFromOptions(productID uint, selections map[int][]string) ([]models.Variation, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	normalized, err := s.normalizeSelections(selections)
	if err != nil {
		return nil, err
	}
	combinations := optionCombinations(normalized)
	if len(combinations) == 0 {
		return []models.Variation{}, nil
	}

	created := make([]models.Variation, 0, len(combinations))
	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		variationRepo := s.variationRepo.WithTx(tx)
		for axis, values := range normalized {
			for _, value := range values {
				if err := variationRepo.EnsureOption(axis, value); err != nil {
					return err
				}
			}
		}
		existing, err := variationRepo.ListByProduct(productID)
		if err != nil {
			return err
		}
		for _, options := range combinations {
			if findVariationByOptions(existing, options) != nil {
				continue
			}
			variation := models.Variation{
				ProductID: productID,
				Options:   options,
				Priced:    models.Priced{UnitPrice: product.UnitPrice},
			}
			if err := variationRepo.Create(&variation); err != nil {
				return err
			}
			existing = append(existing, variation)
			created = append(created, variation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("variations_created_from_options", "product_id", productID, "created", len(created), "combinations", len(combinations))
	return created, nil
}

// ManageEmpty 无规格时创建空规格，多规格时删除空规格，并确保恰好一个默认规格
func (s *VariationService) ManageEmpty(productID uint) ([]models.Variation, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	var result []models.Variation
	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		variationRepo := s.variationRepo.WithTx(tx)
		variations, err := variationRepo.ListByProduct(productID)
		if err != nil {
			return err
		}
		switch {
		case len(variations) == 0:
			empty := models.Variation{
				ProductID:  productID,
				Options:    models.OptionValues{},
				Priced:     models.Priced{UnitPrice: product.UnitPrice},
				NumInStock: product.NumInStock,
			}
			if err := variationRepo.Create(&empty); err != nil {
				return err
			}
		case len(variations) > 1:
			for _, variation := range variations {
				if !variation.Options.IsEmpty() {
					continue
				}
				if err := variationRepo.Delete(variation.ID); err != nil {
					return err
				}
			}
		}

		variations, err = variationRepo.ListByProduct(productID)
		if err != nil {
			return err
		}
		if err := ensureSingleDefault(variationRepo, productID, variations); err != nil {
			return err
		}
		result, err = variationRepo.ListByProduct(productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ensureSingleDefault(variationRepo repository.VariationRepository, productID uint, variations []models.Variation) error {
	if len(variations) == 0 {
		return nil
	}
	var defaultID uint
	defaults := 0
	for _, variation := range variations {
		if variation.Default {
			if defaults == 0 {
				defaultID = variation.ID
			}
			defaults++
		}
	}
	if defaults == 1 {
		return nil
	}
	if defaults == 0 {
		defaultID = variations[0].ID
	}
	return variationRepo.SetDefault(productID, defaultID)
}

// SetDefaultImages 为无图片的规格分配商品首图，清除已删除图片的引用（幂等）
func (s *VariationService) SetDefaultImages(productID uint, deletedImageIDs []uint) error {
	return s.productRepo.Transaction(func(tx *gorm.DB) error {
		return setDefaultImages(s.productRepo.WithTx(tx), s.variationRepo.WithTx(tx), productID, deletedImageIDs)
	})
}

// AddImage 添加商品图片并为无图片的规格补齐默认图
func (s *VariationService) AddImage(productID uint, file, description string, sortOrder int) (*models.ProductImage, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return nil, ErrProductImageInvalid
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	image := &models.ProductImage{
		ProductID:   productID,
		File:        file,
		Description: strings.TrimSpace(description),
		SortOrder:   sortOrder,
	}
	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		if err := productRepo.CreateImage(image); err != nil {
			return err
		}
		return setDefaultImages(productRepo, s.variationRepo.WithTx(tx), productID, nil)
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

// DeleteImages 删除商品图片，引用这些图片的规格改用剩余首图
func (s *VariationService) DeleteImages(productID uint, imageIDs []uint) error {
	if len(imageIDs) == 0 {
		return nil
	}
	return s.productRepo.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		variationRepo := s.variationRepo.WithTx(tx)
		if err := setDefaultImages(productRepo, variationRepo, productID, imageIDs); err != nil {
			return err
		}
		if err := productRepo.DeleteImages(productID, imageIDs); err != nil {
			return err
		}
		return setDefaultImages(productRepo, variationRepo, productID, nil)
	})
}

func setDefaultImages(productRepo repository.ProductRepository, variationRepo repository.VariationRepository, productID uint, deletedImageIDs []uint) error {
	images, err := productRepo.ListImages(productID)
	if err != nil {
		return err
	}
	deleted := make(map[uint]struct{}, len(deletedImageIDs))
	for _, id := range deletedImageIDs {
		deleted[id] = struct{}{}
	}
	var fallback *uint
	for i := range images {
		if _, ok := deleted[images[i].ID]; ok {
			continue
		}
		id := images[i].ID
		fallback = &id
		break
	}

	variations, err := variationRepo.ListByProduct(productID)
	if err != nil {
		return err
	}
	for _, variation := range variations {
		switch {
		case variation.ImageID == nil:
			if fallback == nil {
				continue
			}
			if err := variationRepo.SetImage(variation.ID, fallback); err != nil {
				return err
			}
		default:
			if _, ok := deleted[*variation.ImageID]; !ok {
				continue
			}
			if err := variationRepo.SetImage(variation.ID, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetDefault 设置默认规格，传入多个 ID 时拒绝
func (s *VariationService) SetDefault(productID uint, variationIDs []uint) error {
	if len(variationIDs) > 1 {
		return ErrMultipleDefaultVariations
	}
	if len(variationIDs) == 0 {
		_, err := s.ManageEmpty(productID)
		return err
	}
	variation, err := s.variationRepo.GetByID(variationIDs[0])
	if err != nil {
		return err
	}
	if variation == nil || variation.ProductID != productID {
		return ErrVariationNotFound
	}
	return s.variationRepo.SetDefault(productID, variation.ID)
}

// UpdateVariations 批量编辑规格价格、库存与默认标记
func (s *VariationService) UpdateVariations(productID uint, updates []VariationUpdate) error {
	defaults := make([]uint, 0, 1)
	for _, update := range updates {
		if update.Default {
			defaults = append(defaults, update.ID)
		}
	}
	if len(defaults) > 1 {
		return ErrMultipleDefaultVariations
	}
	return s.productRepo.Transaction(func(tx *gorm.DB) error {
		variationRepo := s.variationRepo.WithTx(tx)
		existing, err := variationRepo.ListByProduct(productID)
		if err != nil {
			return err
		}
		byID := make(map[uint]models.Variation, len(existing))
		for _, variation := range existing {
			byID[variation.ID] = variation
		}
		for _, update := range updates {
			variation, ok := byID[update.ID]
			if !ok {
				return ErrVariationNotFound
			}
			variation.Priced = update.Priced
			variation.NumInStock = update.NumInStock
			variation.ImageID = update.ImageID
			variation.Default = update.Default
			if err := variationRepo.Update(&variation); err != nil {
				return err
			}
		}
		if len(defaults) == 1 {
			return variationRepo.SetDefault(productID, defaults[0])
		}
		return nil
	})
}

// CopyDefaultVariation 将默认规格的价格、SKU、库存与图片同步到商品
func (s *VariationService) CopyDefaultVariation(productID uint) error {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	variations, err := s.variationRepo.ListByProduct(productID)
	if err != nil {
		return err
	}
	var def *models.Variation
	for i := range variations {
		if variations[i].Default {
			def = &variations[i]
			break
		}
	}
	if def == nil {
		return nil
	}
	product.Priced = def.Priced
	product.SKU = def.SKU
	product.NumInStock = def.NumInStock
	product.ImageID = def.ImageID
	return s.productRepo.Update(product)
}

// FindByOptions 精确匹配规格组合
func (s *VariationService) FindByOptions(productID uint, options models.OptionValues) (*models.Variation, error) {
	variations, err := s.variationRepo.ListByProduct(productID)
	if err != nil {
		return nil, err
	}
	return findVariationByOptions(variations, options), nil
}

func (s *VariationService) normalizeSelections(selections map[int][]string) (map[int][]string, error) {
	normalized := make(map[int][]string, len(selections))
	for axis, values := range selections {
		if !s.shop.HasAxis(axis) {
			return nil, ErrUnknownOptionAxis
		}
		seen := make(map[string]struct{}, len(values))
		cleaned := make([]string, 0, len(values))
		for _, value := range values {
			value = strings.TrimSpace(value)
			if value == "" {
				return nil, ErrEmptyOptionValue
			}
			if _, ok := seen[value]; ok {
				continue
			}
			seen[value] = struct{}{}
			cleaned = append(cleaned, value)
		}
		if len(cleaned) > 0 {
			normalized[axis] = cleaned
		}
	}
	return normalized, nil
}

// optionCombinations 计算笛卡尔积，轴按 ID 升序展开
func optionCombinations(selections map[int][]string) []models.OptionValues {
	if len(selections) == 0 {
		return nil
	}
	axes := make([]int, 0, len(selections))
	for axis := range selections {
		axes = append(axes, axis)
	}
	sort.Ints(axes)

	combinations := []models.OptionValues{{}}
	for _, axis := range axes {
		next := make([]models.OptionValues, 0, len(combinations)*len(selections[axis]))
		for _, base := range combinations {
			for _, value := range selections[axis] {
				combo := make(models.OptionValues, len(base)+1)
				for k, v := range base {
					combo[k] = v
				}
				combo[axis] = value
				next = append(next, combo)
			}
		}
		combinations = next
	}
	return combinations
}

func findVariationByOptions(variations []models.Variation, options models.OptionValues) *models.Variation {
	for i := range variations {
		if variations[i].Options.Equal(options) {
			return &variations[i]
		}
	}
	return nil
}
