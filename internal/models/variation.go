package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Variation 商品规格（可购买的规格组合）
type Variation struct {
	ID         uint         `gorm:"primarykey" json:"id"`                                        // 主键
	ProductID  uint         `gorm:"not null;index" json:"product_id"`                            // 商品ID
	SKU        string       `gorm:"column:sku;type:varchar(64);uniqueIndex;not null" json:"sku"` // SKU（全局唯一，创建后不可修改）
	Options    OptionValues `gorm:"type:text" json:"options"`                                    // 规格值
	Priced     `gorm:"embedded"`
	NumInStock *int      `json:"num_in_stock"`                                                  // 库存（为空表示不跟踪库存）
	Default    bool      `gorm:"column:is_default;not null;default:false;index" json:"default"` // 是否默认规格
	ImageID    *uint     `gorm:"index" json:"image_id"`                                         // 规格图片
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                                    // 更新时间

	Product *Product      `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
	Image   *ProductImage `gorm:"foreignKey:ImageID" json:"image,omitempty"`     // 关联图片
}

// TableName 指定表名
func (Variation) TableName() string {
	return "product_variations"
}

// BeforeCreate 未指定 SKU 时自动生成
func (v *Variation) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(v.SKU) == "" {
		v.SKU = GenerateSKU()
	}
	if v.Options == nil {
		v.Options = OptionValues{}
	}
	return nil
}

// GenerateSKU 生成唯一 SKU
func GenerateSKU() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// TracksStock 是否跟踪库存
func (v Variation) TracksStock() bool {
	return v.NumInStock != nil
}

// Description 规格展示名称
func (v Variation) Description() string {
	title := ""
	if v.Product != nil {
		title = v.Product.Title
	}
	label := v.Options.Label()
	switch {
	case title == "":
		return label
	case label == "":
		return title
	default:
		return title + " - " + label
	}
}
