package service

import (
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// StockLedger 实时库存计算（每个请求一个实例，结果按 SKU 缓存）
type StockLedger struct {
	cartRepo      repository.CartRepository
	variationRepo repository.VariationRepository
	expiry        time.Duration
	now           func() time.Time
	cache         map[string]*int
}

// NewStockLedger 创建库存台账
func NewStockLedger(cartRepo repository.CartRepository, variationRepo repository.VariationRepository, shop config.ShopConfig) *StockLedger {
	return &StockLedger{
		cartRepo:      cartRepo,
		variationRepo: variationRepo,
		expiry:        time.Duration(shop.CartExpiryMinutes) * time.Minute,
		now:           time.Now,
		cache:         make(map[string]*int),
	}
}

// WithTx 绑定事务（缓存不共享）
func (l *StockLedger) WithTx(tx *gorm.DB) *StockLedger {
	if tx == nil {
		return l
	}
	return &StockLedger{
		cartRepo:      l.cartRepo.WithTx(tx),
		variationRepo: l.variationRepo.WithTx(tx),
		expiry:        l.expiry,
		now:           l.now,
		cache:         make(map[string]*int),
	}
}

// LiveStock 实时库存 = 库存 - 未过期购物车占用；返回 nil 表示不跟踪库存
func (l *StockLedger) LiveStock(variation *models.Variation) (*int, error) {
	if variation == nil || variation.NumInStock == nil {
		return nil, nil
	}
	if cached, ok := l.cache[variation.SKU]; ok {
		return cached, nil
	}
	reserved, err := l.cartRepo.ReservedQuantity(variation.SKU, l.cutoff())
	if err != nil {
		return nil, err
	}
	live := *variation.NumInStock - reserved
	l.cache[variation.SKU] = &live
	return &live, nil
}

// HasStock 是否有足够库存：不跟踪库存、数量为 0 或实时库存不少于数量
func (l *StockLedger) HasStock(variation *models.Variation, quantity int) (bool, error) {
	if variation == nil {
		return false, nil
	}
	if variation.NumInStock == nil || quantity == 0 {
		return true, nil
	}
	live, err := l.LiveStock(variation)
	if err != nil {
		return false, err
	}
	return *live >= quantity, nil
}

// Forget 清除 SKU 缓存（购物车占用变化后调用）
func (l *StockLedger) Forget(sku string) {
	delete(l.cache, sku)
}

// Commit 原子调整库存（订单完成时调用，delta 为负表示售出）
func (l *StockLedger) Commit(variation *models.Variation, delta int) error {
	stock, err := l.variationRepo.CommitStock(variation, delta)
	if err != nil {
		return err
	}
	l.Forget(variation.SKU)
	if stock != nil && *stock < 0 {
		logger.Warnw("stock_commit_oversold",
			"sku", variation.SKU,
			"product_id", variation.ProductID,
			"delta", delta,
			"num_in_stock", *stock,
		)
	}
	return nil
}

func (l *StockLedger) cutoff() time.Time {
	return l.now().Add(-l.expiry)
}
