package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// SaleRepository 促销活动数据访问接口
type SaleRepository interface {
	GetByID(id uint) (*models.Sale, error)
	List() ([]models.Sale, error)
	Create(sale *models.Sale) error
	Update(sale *models.Sale) error
	Delete(id uint) error
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) SaleRepository
}

// GormSaleRepository GORM 实现
type GormSaleRepository struct {
	db *gorm.DB
}

// NewSaleRepository 创建促销活动仓库
func NewSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormSaleRepository) WithTx(tx *gorm.DB) SaleRepository {
	if tx == nil {
		return r
	}
	return &GormSaleRepository{db: tx}
}

// Transaction 执行事务
func (r *GormSaleRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 根据 ID 获取促销活动
func (r *GormSaleRepository) GetByID(id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.First(&sale, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// List 促销活动列表
func (r *GormSaleRepository) List() ([]models.Sale, error) {
	var sales []models.Sale
	if err := r.db.Order("id DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// Create 创建促销活动
func (r *GormSaleRepository) Create(sale *models.Sale) error {
	return r.db.Create(sale).Error
}

// Update 更新促销活动
func (r *GormSaleRepository) Update(sale *models.Sale) error {
	return r.db.Save(sale).Error
}

// Delete 删除促销活动
func (r *GormSaleRepository) Delete(id uint) error {
	return r.db.Delete(&models.Sale{}, id).Error
}
