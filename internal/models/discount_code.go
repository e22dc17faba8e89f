package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountCode 优惠码
type DiscountCode struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                // 主键
	Code          string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`   // 优惠码
	Title         string         `gorm:"type:varchar(200)" json:"title"`                      // 标题
	Active        bool           `gorm:"not null;default:true;index" json:"active"`           // 是否启用
	Reduction     Reduction      `gorm:"embedded;embeddedPrefix:reduction_" json:"reduction"` // 减价规则（仅 deduct / percent）
	MinPurchase   *Money         `gorm:"type:decimal(20,2)" json:"min_purchase"`              // 使用门槛
	FreeShipping  bool           `gorm:"not null;default:false" json:"free_shipping"`         // 是否免运费
	UsesRemaining *int           `json:"uses_remaining"`                                      // 剩余次数（为空表示不限）
	ValidFrom     *time.Time     `gorm:"index" json:"valid_from"`                             // 生效时间
	ValidTo       *time.Time     `gorm:"index" json:"valid_to"`                               // 失效时间
	ProductIDs    UintArray      `gorm:"type:text" json:"product_ids"`                        // 适用商品ID集合（JSON数组）
	CategoryIDs   UintArray      `gorm:"type:text" json:"category_ids"`                       // 适用分类ID集合（JSON数组）
	Combined      bool           `gorm:"not null;default:false" json:"combined"`              // true 取交集，false 取并集
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                                          // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (DiscountCode) TableName() string {
	return "discount_codes"
}

// Scope 返回适用范围
func (d DiscountCode) Scope() DiscountScope {
	return DiscountScope{ProductIDs: d.ProductIDs, CategoryIDs: d.CategoryIDs, Combined: d.Combined}
}

// Calculate 计算指定金额的优惠额
func (d DiscountCode) Calculate(amount decimal.Decimal) decimal.Decimal {
	return d.Reduction.Discount(amount)
}
