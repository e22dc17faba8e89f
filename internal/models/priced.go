package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Priced 商品与规格共用的价格字段：原价、促销价及促销有效期
type Priced struct {
	UnitPrice *Money     `gorm:"type:decimal(20,2)" json:"unit_price"` // 原价（为空表示未定价）
	SalePrice *Money     `gorm:"type:decimal(20,2)" json:"sale_price"` // 促销价
	SaleFrom  *time.Time `gorm:"index" json:"sale_from"`               // 促销开始时间
	SaleTo    *time.Time `gorm:"index" json:"sale_to"`                 // 促销结束时间
	SaleID    *uint      `gorm:"index" json:"sale_id,omitempty"`       // 写入促销价的促销活动ID
}

// OnSale 当前是否处于促销期
func (p Priced) OnSale() bool {
	return p.OnSaleAt(time.Now())
}

// OnSaleAt 指定时间是否处于促销期（开始与结束时间为空视为不限）
func (p Priced) OnSaleAt(now time.Time) bool {
	if p.SalePrice == nil {
		return false
	}
	if p.SaleFrom != nil && p.SaleFrom.After(now) {
		return false
	}
	if p.SaleTo != nil && p.SaleTo.Before(now) {
		return false
	}
	return true
}

// HasPrice 是否有可用价格
func (p Priced) HasPrice() bool {
	return p.HasPriceAt(time.Now())
}

// HasPriceAt 指定时间是否有可用价格
func (p Priced) HasPriceAt(now time.Time) bool {
	return p.OnSaleAt(now) || p.UnitPrice != nil
}

// Price 当前价格
func (p Priced) Price() decimal.Decimal {
	return p.PriceAt(time.Now())
}

// PriceAt 指定时间的价格：促销价 > 原价 > 0
func (p Priced) PriceAt(now time.Time) decimal.Decimal {
	if p.OnSaleAt(now) {
		return p.SalePrice.Decimal
	}
	if p.UnitPrice != nil {
		return p.UnitPrice.Decimal
	}
	return decimal.Zero
}

// ClearSale 清除促销字段
func (p *Priced) ClearSale() {
	p.SalePrice = nil
	p.SaleFrom = nil
	p.SaleTo = nil
	p.SaleID = nil
}
