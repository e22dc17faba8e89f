package models

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// OptionValues 规格轴 -> 规格值（未设置的轴不出现在 map 中）
type OptionValues map[int]string

// Value 实现 driver.Valuer 接口
func (o OptionValues) Value() (driver.Value, error) {
	b, err := json.Marshal(o.normalized())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (o *OptionValues) Scan(value interface{}) error {
	raw, err := scanBytes(value)
	if err != nil {
		return err
	}
	values := OptionValues{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &values); err != nil {
			return err
		}
	}
	*o = values.normalized()
	return nil
}

// IsEmpty 是否所有轴均未设置
func (o OptionValues) IsEmpty() bool {
	return len(o.normalized()) == 0
}

// Equal 精确匹配：已设置的轴与值完全一致，且双方未设置的轴一致
func (o OptionValues) Equal(other OptionValues) bool {
	a, b := o.normalized(), other.normalized()
	if len(a) != len(b) {
		return false
	}
	for axis, value := range a {
		if b[axis] != value {
			return false
		}
	}
	return true
}

// Axes 返回已设置的轴（升序）
func (o OptionValues) Axes() []int {
	axes := make([]int, 0, len(o))
	for axis, value := range o {
		if strings.TrimSpace(value) != "" {
			axes = append(axes, axis)
		}
	}
	sort.Ints(axes)
	return axes
}

// Label 规格描述，如 "S / Red"
func (o OptionValues) Label() string {
	axes := o.Axes()
	parts := make([]string, 0, len(axes))
	for _, axis := range axes {
		parts = append(parts, o[axis])
	}
	return strings.Join(parts, " / ")
}

func (o OptionValues) normalized() OptionValues {
	out := OptionValues{}
	for axis, value := range o {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out[axis] = value
	}
	return out
}

// ProductOption 规格值字典（按规格轴分组）
type ProductOption struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                            // 主键
	Axis      int       `gorm:"not null;uniqueIndex:idx_product_option_axis_name" json:"axis"`                   // 规格轴
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_option_axis_name" json:"name"` // 规格值
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                                         // 创建时间
}

// TableName 指定表名
func (ProductOption) TableName() string {
	return "product_options"
}
