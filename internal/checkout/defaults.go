package checkout

import (
	"context"
	"strings"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FlatRateShipping 按配置的固定运费设置运费
func FlatRateShipping(cfg config.ShippingConfig) BillingShippingHandler {
	amount, err := decimal.NewFromString(strings.TrimSpace(cfg.Amount))
	if err != nil {
		logger.Warnw("checkout_shipping_amount_invalid", "amount", cfg.Amount, "error", err)
		amount = decimal.Zero
	}
	shippingType := strings.TrimSpace(cfg.Type)
	return func(_ context.Context, req *Request) error {
		if shippingType == "" {
			return nil
		}
		req.Session.SetShipping(shippingType, amount)
		return nil
	}
}

// FlatPercentTax 按购物车金额的固定百分比计税（百分比为 0 时不计税）
func FlatPercentTax(cfg config.TaxConfig) TaxHandler {
	percent, err := decimal.NewFromString(strings.TrimSpace(cfg.Percent))
	if err != nil {
		logger.Warnw("checkout_tax_percent_invalid", "percent", cfg.Percent, "error", err)
		percent = decimal.Zero
	}
	taxType := strings.TrimSpace(cfg.Type)
	return func(_ context.Context, req *Request) error {
		if !percent.IsPositive() || req.Cart == nil {
			return nil
		}
		amount := req.Cart.TotalPrice().Div(hundred).Mul(percent).Round(2)
		req.Session.SetTax(taxType, amount)
		return nil
	}
}

// GeneratedTransactionPayment 不对接支付网关，直接生成交易号
func GeneratedTransactionPayment() PaymentHandler {
	return func(context.Context, *Request, *models.Order) (string, error) {
		return uuid.NewString(), nil
	}
}

// EnqueueOrderCompleted 订单完成后推送异步任务
func EnqueueOrderCompleted(client *queue.Client) OrderHandler {
	return func(_ context.Context, _ *Request, order *models.Order) error {
		if order == nil || !client.Enabled() {
			return nil
		}
		return client.EnqueueOrderCompleted(queue.OrderCompletedPayload{
			OrderID:       order.ID,
			TransactionID: order.TransactionID,
			Total:         order.Total.String(),
			Email:         order.Billing.Email,
		})
	}
}

// DefaultHandlers 按配置组装默认处理器
func DefaultHandlers(cfg *config.Config, client *queue.Client) Handlers {
	return Handlers{
		BillingShipping: FlatRateShipping(cfg.Shipping),
		Tax:             FlatPercentTax(cfg.Tax),
		Payment:         GeneratedTransactionPayment(),
		Order:           EnqueueOrderCompleted(client),
	}
}
