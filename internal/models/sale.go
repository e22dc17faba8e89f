package models

import (
	"time"

	"gorm.io/gorm"
)

// Sale 促销活动（自动生效，按商品/分类范围写入促销价）
type Sale struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                // 主键
	Title       string         `gorm:"type:varchar(200);not null" json:"title"`             // 标题
	Active      bool           `gorm:"not null;default:false;index" json:"active"`          // 是否启用
	Reduction   Reduction      `gorm:"embedded;embeddedPrefix:reduction_" json:"reduction"` // 减价规则
	ValidFrom   *time.Time     `gorm:"index" json:"valid_from"`                             // 生效时间
	ValidTo     *time.Time     `gorm:"index" json:"valid_to"`                               // 失效时间
	ProductIDs  UintArray      `gorm:"type:text" json:"product_ids"`                        // 适用商品ID集合（JSON数组）
	CategoryIDs UintArray      `gorm:"type:text" json:"category_ids"`                       // 适用分类ID集合（JSON数组）
	Combined    bool           `gorm:"not null;default:false" json:"combined"`              // true 取交集，false 取并集
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                             // 创建时间
	UpdatedAt   time.Time      `json:"updated_at"`                                          // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                      // 软删除时间
}

// TableName 指定表名
func (Sale) TableName() string {
	return "sales"
}

// Scope 返回适用范围
func (s Sale) Scope() DiscountScope {
	return DiscountScope{ProductIDs: s.ProductIDs, CategoryIDs: s.CategoryIDs, Combined: s.Combined}
}

// DiscountScope 商品范围：显式商品与分类下商品，按 Combined 取交集或并集
type DiscountScope struct {
	ProductIDs  UintArray
	CategoryIDs UintArray
	Combined    bool
}

// IsEmpty 是否未限定范围
func (s DiscountScope) IsEmpty() bool {
	return len(s.ProductIDs) == 0 && len(s.CategoryIDs) == 0
}
