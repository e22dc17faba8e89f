package repository

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	GetByKey(key string) (*models.Cart, error)
	Create(cart *models.Cart) error
	Touch(cartID uint, at time.Time) error
	Delete(cartID uint) error
	DeleteByKey(key string) error
	DeleteExpired(cutoff time.Time) (int64, error)
	ReservedQuantity(sku string, cutoff time.Time) (int, error)
	GetItemBySKU(cartID uint, sku string) (*models.CartItem, error)
	CreateItem(item *models.CartItem) error
	UpdateItemQuantity(item *models.CartItem) error
	DeleteItem(cartID, itemID uint) error
	WithTx(tx *gorm.DB) CartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// GetByKey 根据会话 Key 获取购物车（含购物车项）
func (r *GormCartRepository) GetByKey(key string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Where("session_key = ?", key).First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// Create 创建购物车
func (r *GormCartRepository) Create(cart *models.Cart) error {
	return r.db.Omit("Items").Create(cart).Error
}

// Touch 刷新最后访问时间
func (r *GormCartRepository) Touch(cartID uint, at time.Time) error {
	return r.db.Model(&models.Cart{}).Where("id = ?", cartID).UpdateColumn("last_updated", at).Error
}

// Delete 删除购物车及其购物车项
func (r *GormCartRepository) Delete(cartID uint) error {
	if err := r.db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.Cart{}, cartID).Error
}

// DeleteByKey 根据会话 Key 删除购物车
func (r *GormCartRepository) DeleteByKey(key string) error {
	var ids []uint
	if err := r.db.Model(&models.Cart{}).Where("session_key = ?", key).Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if err := r.Delete(id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteExpired 删除最后访问时间早于 cutoff 的购物车，返回删除数量
func (r *GormCartRepository) DeleteExpired(cutoff time.Time) (int64, error) {
	expired := r.db.Model(&models.Cart{}).Select("id").Where("last_updated < ?", cutoff)
	if err := r.db.Where("cart_id IN (?)", expired).Delete(&models.CartItem{}).Error; err != nil {
		return 0, err
	}
	result := r.db.Where("last_updated < ?", cutoff).Delete(&models.Cart{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ReservedQuantity 统计未过期购物车中指定 SKU 的占用数量
func (r *GormCartRepository) ReservedQuantity(sku string, cutoff time.Time) (int, error) {
	var total int64
	err := r.db.Model(&models.CartItem{}).
		Select("COALESCE(SUM(cart_items.quantity), 0)").
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.sku = ? AND carts.last_updated >= ?", sku, cutoff).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

// GetItemBySKU 根据 SKU 获取购物车项
func (r *GormCartRepository) GetItemBySKU(cartID uint, sku string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("cart_id = ? AND sku = ?", cartID, sku).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// CreateItem 创建购物车项
func (r *GormCartRepository) CreateItem(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// UpdateItemQuantity 更新购物车项数量与小计
func (r *GormCartRepository) UpdateItemQuantity(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	return r.db.Model(&models.CartItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
		"quantity":    item.Quantity,
		"total_price": item.TotalPrice,
	}).Error
}

// DeleteItem 删除购物车项
func (r *GormCartRepository) DeleteItem(cartID, itemID uint) error {
	return r.db.Where("cart_id = ? AND id = ?", cartID, itemID).Delete(&models.CartItem{}).Error
}
