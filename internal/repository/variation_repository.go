package repository

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VariationRepository 商品规格数据访问接口
type VariationRepository interface {
	ListByProduct(productID uint) ([]models.Variation, error)
	ListByProducts(productIDs []uint) ([]models.Variation, error)
	GetByID(id uint) (*models.Variation, error)
	GetBySKU(sku string) (*models.Variation, error)
	Create(variation *models.Variation) error
	Update(variation *models.Variation) error
	Delete(id uint) error
	SetDefault(productID, variationID uint) error
	SetImage(id uint, imageID *uint) error
	CommitStock(variation *models.Variation, delta int) (*int, error)
	StampSale(id uint, salePrice decimal.Decimal, from, to *time.Time, saleID uint) error
	ClearSale(saleID uint) error
	EnsureOption(axis int, name string) error
	WithTx(tx *gorm.DB) VariationRepository
}

// GormVariationRepository GORM 实现
type GormVariationRepository struct {
	db *gorm.DB
}

// NewVariationRepository 创建规格仓库
func NewVariationRepository(db *gorm.DB) *GormVariationRepository {
	return &GormVariationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVariationRepository) WithTx(tx *gorm.DB) VariationRepository {
	if tx == nil {
		return r
	}
	return &GormVariationRepository{db: tx}
}

// ListByProduct 获取商品规格（按 ID 升序，保证顺序稳定）
func (r *GormVariationRepository) ListByProduct(productID uint) ([]models.Variation, error) {
	var variations []models.Variation
	if err := r.db.Where("product_id = ?", productID).Order("id ASC").Find(&variations).Error; err != nil {
		return nil, err
	}
	return variations, nil
}

// ListByProducts 批量获取多个商品的规格
func (r *GormVariationRepository) ListByProducts(productIDs []uint) ([]models.Variation, error) {
	if len(productIDs) == 0 {
		return []models.Variation{}, nil
	}
	var variations []models.Variation
	if err := r.db.Where("product_id IN ?", productIDs).Order("product_id ASC, id ASC").Find(&variations).Error; err != nil {
		return nil, err
	}
	return variations, nil
}

// GetByID 根据 ID 获取规格
func (r *GormVariationRepository) GetByID(id uint) (*models.Variation, error) {
	var variation models.Variation
	if err := r.db.Preload("Product").Preload("Image").First(&variation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variation, nil
}

// GetBySKU 根据 SKU 获取规格
func (r *GormVariationRepository) GetBySKU(sku string) (*models.Variation, error) {
	var variation models.Variation
	if err := r.db.Preload("Product").Where("sku = ?", sku).First(&variation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &variation, nil
}

// Create 创建规格
func (r *GormVariationRepository) Create(variation *models.Variation) error {
	return r.db.Omit("Product", "Image").Create(variation).Error
}

// Update 更新规格（SKU 不可修改）
func (r *GormVariationRepository) Update(variation *models.Variation) error {
	return r.db.Model(variation).Omit("sku", "Product", "Image", "created_at").Select("*").Updates(variation).Error
}

// Delete 删除规格
func (r *GormVariationRepository) Delete(id uint) error {
	return r.db.Delete(&models.Variation{}, id).Error
}

// SetDefault 将指定规格设为默认，同商品其他规格取消默认
func (r *GormVariationRepository) SetDefault(productID, variationID uint) error {
	if err := r.db.Model(&models.Variation{}).
		Where("product_id = ? AND id <> ?", productID, variationID).
		UpdateColumn("is_default", false).Error; err != nil {
		return err
	}
	return r.db.Model(&models.Variation{}).
		Where("product_id = ? AND id = ?", productID, variationID).
		UpdateColumn("is_default", true).Error
}

// SetImage 设置规格图片
func (r *GormVariationRepository) SetImage(id uint, imageID *uint) error {
	return r.db.Model(&models.Variation{}).Where("id = ?", id).UpdateColumn("image_id", imageID).Error
}

// CommitStock 原子调整库存（仅对跟踪库存的规格生效），默认规格同步到商品，返回调整后的库存
func (r *GormVariationRepository) CommitStock(variation *models.Variation, delta int) (*int, error) {
	if variation == nil {
		return nil, nil
	}
	result := r.db.Model(&models.Variation{}).
		Where("id = ? AND num_in_stock IS NOT NULL", variation.ID).
		UpdateColumn("num_in_stock", gorm.Expr("num_in_stock + ?", delta))
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	if variation.Default {
		current := r.db.Model(&models.Variation{}).Select("num_in_stock").Where("id = ?", variation.ID)
		if err := r.db.Model(&models.Product{}).Where("id = ?", variation.ProductID).
			UpdateColumn("num_in_stock", current).Error; err != nil {
			return nil, err
		}
	}
	var stock *int
	if err := r.db.Model(&models.Variation{}).Where("id = ?", variation.ID).Select("num_in_stock").Row().Scan(&stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// StampSale 写入促销价
func (r *GormVariationRepository) StampSale(id uint, salePrice decimal.Decimal, from, to *time.Time, saleID uint) error {
	return r.db.Model(&models.Variation{}).Where("id = ?", id).UpdateColumns(saleStampColumns(salePrice, from, to, saleID)).Error
}

// ClearSale 清除指定促销写入的促销价
func (r *GormVariationRepository) ClearSale(saleID uint) error {
	return r.db.Model(&models.Variation{}).Where("sale_id = ?", saleID).UpdateColumns(saleClearColumns()).Error
}

// EnsureOption 登记规格值字典
func (r *GormVariationRepository) EnsureOption(axis int, name string) error {
	option := models.ProductOption{Axis: axis, Name: name}
	return r.db.Where("axis = ? AND name = ?", axis, name).FirstOrCreate(&option).Error
}
