package models

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ReductionKind 减价方式
type ReductionKind string

const (
	ReductionNone    ReductionKind = ""        // 未设置
	ReductionDeduct  ReductionKind = "deduct"  // 立减固定金额
	ReductionPercent ReductionKind = "percent" // 按百分比减价
	ReductionExact   ReductionKind = "exact"   // 一口价
)

var (
	// ErrReductionConflict 同时设置了多种减价方式
	ErrReductionConflict = errors.New("only one reduction kind may be set")
	// ErrReductionInvalid 减价数值非法
	ErrReductionInvalid = errors.New("reduction value must be positive")
	// ErrReductionPercentRange 百分比超出范围
	ErrReductionPercentRange = errors.New("reduction percent must not exceed 100")
)

var hundred = decimal.NewFromInt(100)

// Reduction 减价规则：Kind 决定 Value 的含义
type Reduction struct {
	Kind  ReductionKind `gorm:"type:varchar(16);not null;default:''" json:"kind"`   // 减价方式
	Value Money         `gorm:"type:decimal(20,2);not null;default:0" json:"value"` // 数值（金额或百分比）
}

// DeductBy 立减固定金额
func DeductBy(amount decimal.Decimal) Reduction {
	return Reduction{Kind: ReductionDeduct, Value: NewMoneyFromDecimal(amount)}
}

// PercentBy 按百分比减价
func PercentBy(percent decimal.Decimal) Reduction {
	return Reduction{Kind: ReductionPercent, Value: NewMoneyFromDecimal(percent)}
}

// ReduceToExact 一口价
func ReduceToExact(amount decimal.Decimal) Reduction {
	return Reduction{Kind: ReductionExact, Value: NewMoneyFromDecimal(amount)}
}

// NewReduction 由表单的三个可选字段构造减价规则，多于一个非空时返回 ErrReductionConflict
func NewReduction(deduct, percent, exact *decimal.Decimal) (Reduction, error) {
	set := 0
	for _, v := range []*decimal.Decimal{deduct, percent, exact} {
		if v != nil {
			set++
		}
	}
	if set > 1 {
		return Reduction{}, ErrReductionConflict
	}
	var r Reduction
	switch {
	case deduct != nil:
		r = DeductBy(*deduct)
	case percent != nil:
		r = PercentBy(*percent)
	case exact != nil:
		r = ReduceToExact(*exact)
	default:
		return Reduction{}, nil
	}
	return r, r.Validate()
}

// Validate 校验数值范围
func (r Reduction) Validate() error {
	if r.Kind == ReductionNone {
		return nil
	}
	if !r.Value.GreaterThan(decimal.Zero) {
		return ErrReductionInvalid
	}
	if r.Kind == ReductionPercent && r.Value.GreaterThan(hundred) {
		return ErrReductionPercentRange
	}
	return nil
}

// IsNone 是否未设置减价
func (r Reduction) IsNone() bool {
	return r.Kind == ReductionNone
}

// SalePrice 计算促销价；第二个返回值为 false 表示该单价不适用（不写入促销价）
func (r Reduction) SalePrice(unit decimal.Decimal) (decimal.Decimal, bool) {
	value := r.Value.Decimal
	switch r.Kind {
	case ReductionDeduct:
		if !unit.GreaterThan(value) {
			return decimal.Zero, false
		}
		return unit.Sub(value).Round(2), true
	case ReductionPercent:
		price := unit.Sub(unit.Div(hundred).Mul(value)).Round(2)
		if price.IsNegative() {
			price = decimal.Zero
		}
		return price, true
	case ReductionExact:
		if !unit.GreaterThan(value) {
			return decimal.Zero, false
		}
		return value.Round(2), true
	default:
		return decimal.Zero, false
	}
}

// Discount 计算订单金额可抵扣的优惠：立减金额超过订单金额时为 0
func (r Reduction) Discount(amount decimal.Decimal) decimal.Decimal {
	value := r.Value.Decimal
	switch r.Kind {
	case ReductionDeduct:
		if value.LessThanOrEqual(amount) {
			return value.Round(2)
		}
		return decimal.Zero
	case ReductionPercent:
		return amount.Div(hundred).Mul(value).Round(2)
	default:
		return decimal.Zero
	}
}
