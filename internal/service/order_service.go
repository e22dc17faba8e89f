package service

import (
	"errors"
	"time"

	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	cartRepo      repository.CartRepository
	productRepo   repository.ProductRepository
	variationRepo repository.VariationRepository
	codeRepo      repository.DiscountCodeRepository
	shop          config.ShopConfig
	now           func() time.Time
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, variationRepo repository.VariationRepository, codeRepo repository.DiscountCodeRepository, shop config.ShopConfig) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		cartRepo:      cartRepo,
		productRepo:   productRepo,
		variationRepo: variationRepo,
		codeRepo:      codeRepo,
		shop:          shop,
		now:           time.Now,
	}
}

// Setup 根据购物车与结算会话创建未完成订单并冻结订单项
func (s *OrderService) Setup(key string, cart *models.Cart, sess *checkout.Session) (*models.Order, error) {
	if !cart.HasItems() {
		return nil, ErrCartEmpty
	}
	if sess == nil {
		sess = &checkout.Session{}
	}
	order := &models.Order{
		Key:                    key,
		Billing:                sess.Billing,
		Shipping:               sess.Shipping,
		AdditionalInstructions: sess.AdditionalInstructions,
		Time:                   s.now(),
		ShippingType:           sess.ShippingType,
		ShippingTotal:          sess.ShippingTotal,
		TaxType:                sess.TaxType,
		TaxTotal:               sess.TaxTotal,
		DiscountCode:           sess.DiscountCode,
		DiscountTotal:          sess.DiscountTotal,
		ItemTotal:              models.NewMoneyFromDecimal(cart.TotalPrice()),
		Status:                 s.shop.DefaultOrderStatus,
	}
	if sess.SameBillingShipping {
		order.Shipping = sess.Billing
	}
	order.Total = models.NewMoneyFromDecimal(order.ComputeTotal())

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, models.OrderItem{
			SKU:         item.SKU,
			Description: item.Description,
			URL:         item.URL,
			Image:       item.Image,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice,
		})
	}
	if err := s.orderRepo.Create(order, items); err != nil {
		return nil, err
	}
	logger.Infow("order_setup",
		"order_id", order.ID,
		"item_count", len(items),
		"total", order.Total.String(),
	)
	return order, nil
}

// Complete 支付成功后完成订单：写入交易号、扣减库存、累计销量、扣减优惠码次数并删除购物车（单事务）
func (s *OrderService) Complete(orderID uint, transactionID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.IsCompleted() {
		return nil, ErrOrderAlreadyCompleted
	}
	completedAt := s.now()

	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		affected, err := s.orderRepo.WithTx(tx).MarkCompleted(order.ID, transactionID, completedAt)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderAlreadyCompleted
		}

		ledger := NewStockLedger(s.cartRepo, s.variationRepo, s.shop).WithTx(tx)
		variationRepo := s.variationRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		for _, item := range order.Items {
			variation, err := variationRepo.GetBySKU(item.SKU)
			if err != nil {
				return err
			}
			if variation == nil {
				logger.Warnw("order_complete_variation_missing", "order_id", order.ID, "sku", item.SKU)
				continue
			}
			if err := ledger.Commit(variation, -item.Quantity); err != nil {
				return err
			}
			if err := productRepo.IncrementTotalPurchase(variation.ProductID, 1); err != nil {
				return err
			}
		}

		if order.DiscountCode != "" {
			codeRepo := s.codeRepo.WithTx(tx)
			discount, err := codeRepo.GetByCode(order.DiscountCode)
			if err != nil {
				return err
			}
			if discount != nil && discount.UsesRemaining != nil {
				affected, err := codeRepo.DecrementUses(discount.Code)
				if err != nil {
					return err
				}
				if affected == 0 {
					return ErrDiscountUsageExhausted
				}
			}
		}

		return s.cartRepo.WithTx(tx).DeleteByKey(order.Key)
	})
	if err != nil {
		return nil, err
	}

	order.TransactionID = transactionID
	order.CompletedAt = &completedAt
	logger.Infow("order_completed",
		"order_id", order.ID,
		"transaction_id", transactionID,
		"total", order.Total.String(),
	)
	return order, nil
}

// Discard 丢弃未完成订单（库存与优惠码次数不受影响）
func (s *OrderService) Discard(orderID uint) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	if order.IsCompleted() {
		return ErrOrderAlreadyCompleted
	}
	if err := s.orderRepo.Delete(order.ID); err != nil {
		return err
	}
	logger.Infow("order_discarded", "order_id", order.ID)
	return nil
}

// GetByID 获取订单详情
func (s *OrderService) GetByID(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetByKey 获取会话 Key 最近完成的订单
func (s *OrderService) GetByKey(key string) (*models.Order, error) {
	if key == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetLatestByKey(key)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// IsOrderNotFound 判断订单不存在错误
func IsOrderNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}
