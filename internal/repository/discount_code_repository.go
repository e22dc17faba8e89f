package repository

import (
	"errors"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// DiscountCodeRepository 优惠码数据访问接口
type DiscountCodeRepository interface {
	GetByCode(code string) (*models.DiscountCode, error)
	GetByID(id uint) (*models.DiscountCode, error)
	Create(code *models.DiscountCode) error
	Update(code *models.DiscountCode) error
	Delete(id uint) error
	DecrementUses(code string) (int64, error)
	WithTx(tx *gorm.DB) DiscountCodeRepository
}

// GormDiscountCodeRepository GORM 实现
type GormDiscountCodeRepository struct {
	db *gorm.DB
}

// NewDiscountCodeRepository 创建优惠码仓库
func NewDiscountCodeRepository(db *gorm.DB) *GormDiscountCodeRepository {
	return &GormDiscountCodeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountCodeRepository) WithTx(tx *gorm.DB) DiscountCodeRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountCodeRepository{db: tx}
}

// GetByCode 根据优惠码获取（忽略大小写）
func (r *GormDiscountCodeRepository) GetByCode(code string) (*models.DiscountCode, error) {
	var discount models.DiscountCode
	if err := r.db.Where("UPPER(code) = UPPER(?)", code).First(&discount).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

// GetByID 根据 ID 获取优惠码
func (r *GormDiscountCodeRepository) GetByID(id uint) (*models.DiscountCode, error) {
	var discount models.DiscountCode
	if err := r.db.First(&discount, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

// Create 创建优惠码
func (r *GormDiscountCodeRepository) Create(code *models.DiscountCode) error {
	return r.db.Create(code).Error
}

// Update 更新优惠码
func (r *GormDiscountCodeRepository) Update(code *models.DiscountCode) error {
	return r.db.Save(code).Error
}

// Delete 删除优惠码
func (r *GormDiscountCodeRepository) Delete(id uint) error {
	return r.db.Delete(&models.DiscountCode{}, id).Error
}

// DecrementUses 条件扣减剩余次数（不会小于 0，不限次数的优惠码不受影响），返回影响行数
func (r *GormDiscountCodeRepository) DecrementUses(code string) (int64, error) {
	result := r.db.Model(&models.DiscountCode{}).
		Where("UPPER(code) = UPPER(?) AND uses_remaining IS NOT NULL AND uses_remaining > 0", code).
		UpdateColumn("uses_remaining", gorm.Expr("uses_remaining - ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
