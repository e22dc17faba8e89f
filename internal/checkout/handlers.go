package checkout

import (
	"context"

	"github.com/storefront-next/internal/models"
)

// Request 处理器调用上下文
type Request struct {
	Key     string
	Session *Session
	Form    *Form
	Cart    *models.Cart
}

// BillingShippingHandler 地址步骤提交时调用，可通过 Session.SetShipping 设置运费
type BillingShippingHandler func(ctx context.Context, req *Request) error

// TaxHandler 地址步骤提交时在运费之后调用，可通过 Session.SetTax 设置税费
type TaxHandler func(ctx context.Context, req *Request) error

// PaymentHandler 最后一步调用，返回交易号；返回 CheckoutError 时订单被丢弃
type PaymentHandler func(ctx context.Context, req *Request, order *models.Order) (string, error)

// OrderHandler 订单完成后调用的后置处理
type OrderHandler func(ctx context.Context, req *Request, order *models.Order) error

// Handlers 结算处理器集合
type Handlers struct {
	BillingShipping BillingShippingHandler
	Tax             TaxHandler
	Payment         PaymentHandler
	Order           OrderHandler
}

// WithDefaults 未设置的处理器使用空实现
func (h Handlers) WithDefaults() Handlers {
	if h.BillingShipping == nil {
		h.BillingShipping = func(context.Context, *Request) error { return nil }
	}
	if h.Tax == nil {
		h.Tax = func(context.Context, *Request) error { return nil }
	}
	if h.Payment == nil {
		h.Payment = GeneratedTransactionPayment()
	}
	if h.Order == nil {
		h.Order = func(context.Context, *Request, *models.Order) error { return nil }
	}
	return h
}
