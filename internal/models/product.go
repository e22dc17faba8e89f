package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表（价格、SKU、库存与图片字段由默认规格同步）
type Product struct {
	ID            uint   `gorm:"primarykey" json:"id"`                    // 主键
	CategoryID    uint   `gorm:"not null;index" json:"category_id"`       // 分类ID
	Slug          string `gorm:"uniqueIndex;not null" json:"slug"`        // 唯一标识
	Title         string `gorm:"type:varchar(255);not null" json:"title"` // 标题
	Description   string `gorm:"type:text" json:"description"`            // 描述
	Available     bool   `gorm:"default:true;index" json:"available"`     // 是否上架
	Priced        `gorm:"embedded"`
	SKU           string         `gorm:"column:sku;type:varchar(64)" json:"sku"`   // 默认规格 SKU
	NumInStock    *int           `json:"num_in_stock"`                             // 默认规格库存
	ImageID       *uint          `json:"image_id"`                                 // 默认规格图片
	TotalCart     int            `gorm:"not null;default:0" json:"total_cart"`     // 加入购物车次数
	TotalPurchase int            `gorm:"not null;default:0" json:"total_purchase"` // 购买次数
	SortOrder     int            `gorm:"default:0;index" json:"sort_order"`        // 排序权重
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                  // 创建时间
	UpdatedAt     time.Time      `json:"updated_at"`                               // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                           // 软删除时间

	// 关联
	Category   Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`  // 分类信息
	Images     []ProductImage `gorm:"foreignKey:ProductID" json:"images,omitempty"`     // 图片列表
	Variations []Variation    `gorm:"foreignKey:ProductID" json:"variations,omitempty"` // 规格列表
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// ProductImage 商品图片
type ProductImage struct {
	ID          uint      `gorm:"primarykey" json:"id"`                   // 主键
	ProductID   uint      `gorm:"not null;index" json:"product_id"`       // 商品ID
	File        string    `gorm:"type:varchar(500);not null" json:"file"` // 图片路径
	Description string    `gorm:"type:varchar(255)" json:"description"`   // 图片描述
	SortOrder   int       `gorm:"default:0;index" json:"sort_order"`      // 排序权重
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                // 创建时间
}

// TableName 指定表名
func (ProductImage) TableName() string {
	return "product_images"
}
