package checkout

import (
	"strings"

	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

// Session 结算会话（仅保存非敏感字段，卡信息不在此结构中）
type Session struct {
	Step                   int            `json:"step"`
	Billing                models.Address `json:"billing"`
	Shipping               models.Address `json:"shipping"`
	SameBillingShipping    bool           `json:"same_billing_shipping"`
	AdditionalInstructions string         `json:"additional_instructions"`
	ShippingType           string         `json:"shipping_type"`
	ShippingTotal          models.Money   `json:"shipping_total"`
	TaxType                string         `json:"tax_type"`
	TaxTotal               models.Money   `json:"tax_total"`
	DiscountCode           string         `json:"discount_code"`
	DiscountTotal          models.Money   `json:"discount_total"`
	FreeShipping           bool           `json:"free_shipping"`
	CompletedOrderID       uint           `json:"completed_order_id,omitempty"`
}

// SetShipping 设置运费
func (s *Session) SetShipping(shippingType string, amount decimal.Decimal) {
	s.ShippingType = shippingType
	s.ShippingTotal = models.NewMoneyFromDecimal(amount)
}

// SetTax 设置税费
func (s *Session) SetTax(taxType string, amount decimal.Decimal) {
	s.TaxType = taxType
	s.TaxTotal = models.NewMoneyFromDecimal(amount)
}

// SetDiscount 设置优惠码与优惠额
func (s *Session) SetDiscount(code string, amount decimal.Decimal, freeShipping bool) {
	s.DiscountCode = code
	s.DiscountTotal = models.NewMoneyFromDecimal(amount)
	s.FreeShipping = freeShipping
}

// ClearDiscount 清除优惠码
func (s *Session) ClearDiscount() {
	s.DiscountCode = ""
	s.DiscountTotal = models.Money{}
	s.FreeShipping = false
}

// ApplyForm 保存表单中的非敏感字段
func (s *Session) ApplyForm(form Form) {
	s.Billing = form.Billing
	s.Shipping = form.Shipping
	s.SameBillingShipping = form.SameBillingShipping
	s.AdditionalInstructions = strings.TrimSpace(form.AdditionalInstructions)
}

// Prefill 用会话字段预填表单
func (s *Session) Prefill() Form {
	return Form{
		Billing:                s.Billing,
		Shipping:               s.Shipping,
		SameBillingShipping:    s.SameBillingShipping,
		AdditionalInstructions: s.AdditionalInstructions,
		DiscountCode:           s.DiscountCode,
	}
}

// HasAddress 是否已保存账单地址
func (s *Session) HasAddress() bool {
	return strings.TrimSpace(s.Billing.FirstName) != "" || strings.TrimSpace(s.Billing.Email) != ""
}

// ClearOrderFields 清除下单时复制到订单的字段
func (s *Session) ClearOrderFields() {
	s.ShippingType = ""
	s.ShippingTotal = models.Money{}
	s.TaxType = ""
	s.TaxTotal = models.Money{}
	s.ClearDiscount()
	s.AdditionalInstructions = ""
}

// Finish 订单完成后重置会话，仅保留完成的订单ID
func (s *Session) Finish(orderID uint) {
	s.ClearOrderFields()
	s.Billing = models.Address{}
	s.Shipping = models.Address{}
	s.SameBillingShipping = false
	s.Step = 1
	s.CompletedOrderID = orderID
}
