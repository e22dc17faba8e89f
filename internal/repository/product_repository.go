package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetBySlug(slug string, onlyAvailable bool) (*models.Product, error)
	GetByID(id uint) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	ListImages(productID uint) ([]models.ProductImage, error)
	CreateImage(image *models.ProductImage) error
	DeleteImages(productID uint, imageIDs []uint) error
	Create(product *models.Product) error
	Update(product *models.Product) error
	IncrementTotalCart(id uint, delta int) error
	IncrementTotalPurchase(id uint, delta int) error
	StampSale(id uint, salePrice decimal.Decimal, from, to *time.Time, saleID uint) error
	ClearSale(saleID uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 执行事务
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	var products []models.Product

	query := r.db.Model(&models.Product{})
	if filter.WithCategory {
		query = query.Preload("Category")
	}
	if filter.OnlyAvailable {
		query = query.Where("available = ?", true)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"slug", "title", "description", "sku"})
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("sort_order DESC, id ASC").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetBySlug 根据 slug 获取商品（含图片与规格）
func (r *GormProductRepository) GetBySlug(slug string, onlyAvailable bool) (*models.Product, error) {
	var product models.Product
	query := r.db.Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		Preload("Variations", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("slug = ?", slug)
	if onlyAvailable {
		query = query.Where("available = ?", true)
	}
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

// ListByIDs 批量获取商品
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var products []models.Product
	if err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// ListImages 获取商品图片（按排序）
func (r *GormProductRepository) ListImages(productID uint) ([]models.ProductImage, error) {
	var images []models.ProductImage
	if err := r.db.Where("product_id = ?", productID).Order("sort_order ASC, id ASC").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// CreateImage 创建商品图片
func (r *GormProductRepository) CreateImage(image *models.ProductImage) error {
	return r.db.Create(image).Error
}

// DeleteImages 删除商品图片
func (r *GormProductRepository) DeleteImages(productID uint, imageIDs []uint) error {
	if len(imageIDs) == 0 {
		return nil
	}
	return r.db.Where("product_id = ? AND id IN ?", productID, imageIDs).Delete(&models.ProductImage{}).Error
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品（不级联关联）
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Omit("Category", "Images", "Variations").Save(product).Error
}

// IncrementTotalCart 累加加购次数
func (r *GormProductRepository) IncrementTotalCart(id uint, delta int) error {
	return r.db.Model(&models.Product{}).Where("id = ?", id).
		UpdateColumn("total_cart", gorm.Expr("total_cart + ?", delta)).Error
}

// IncrementTotalPurchase 累加购买次数
func (r *GormProductRepository) IncrementTotalPurchase(id uint, delta int) error {
	return r.db.Model(&models.Product{}).Where("id = ?", id).
		UpdateColumn("total_purchase", gorm.Expr("total_purchase + ?", delta)).Error
}

// StampSale 写入促销价
func (r *GormProductRepository) StampSale(id uint, salePrice decimal.Decimal, from, to *time.Time, saleID uint) error {
	return r.db.Model(&models.Product{}).Where("id = ?", id).UpdateColumns(saleStampColumns(salePrice, from, to, saleID)).Error
}

// ClearSale 清除指定促销写入的促销价
func (r *GormProductRepository) ClearSale(saleID uint) error {
	return r.db.Model(&models.Product{}).Where("sale_id = ?", saleID).UpdateColumns(saleClearColumns()).Error
}

func saleStampColumns(salePrice decimal.Decimal, from, to *time.Time, saleID uint) map[string]interface{} {
	return map[string]interface{}{
		"sale_price": models.NewMoneyFromDecimal(salePrice),
		"sale_from":  from,
		"sale_to":    to,
		"sale_id":    saleID,
	}
}

func saleClearColumns() map[string]interface{} {
	return map[string]interface{}{
		"sale_price": nil,
		"sale_from":  nil,
		"sale_to":    nil,
		"sale_id":    nil,
	}
}
