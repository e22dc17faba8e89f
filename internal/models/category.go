package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 分类表
type Category struct {
	ID        uint           `gorm:"primarykey" json:"id"`                    // 主键
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`        // 唯一标识
	Title     string         `gorm:"type:varchar(200);not null" json:"title"` // 名称
	SortOrder int            `gorm:"default:0;index" json:"sort_order"`       // 排序权重
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                 // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                          // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
