package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"gorm.io/gorm"
)

// AddItemInput 加入购物车输入（VariationID 与 Options 二选一）
type AddItemInput struct {
	ProductID   uint
	VariationID uint
	Options     models.OptionValues
	Quantity    int
}

// CartItemError 购物车项级别的错误（用于定位到具体商品）
type CartItemError struct {
	ItemID uint
	SKU    string
	Err    error
}

func (e *CartItemError) Error() string {
	return fmt.Sprintf("cart item %s: %v", e.SKU, e.Err)
}

func (e *CartItemError) Unwrap() error {
	return e.Err
}

// CartService 购物车服务
type CartService struct {
	cartRepo         repository.CartRepository
	productRepo      repository.ProductRepository
	variationRepo    repository.VariationRepository
	variationService *VariationService
	shop             config.ShopConfig
	now              func() time.Time
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, variationRepo repository.VariationRepository, shop config.ShopConfig) *CartService {
	return &CartService{
		cartRepo:         cartRepo,
		productRepo:      productRepo,
		variationRepo:    variationRepo,
		variationService: NewVariationService(productRepo, variationRepo, shop),
		shop:             shop,
		now:              time.Now,
	}
}

// NewLedger 创建请求级库存台账
func (s *CartService) NewLedger() *StockLedger {
	ledger := NewStockLedger(s.cartRepo, s.variationRepo, s.shop)
	ledger.now = s.now
	return ledger
}

// Lookup 清理过期购物车后按 Key 获取购物车并刷新访问时间，不存在时返回 nil
func (s *CartService) Lookup(key string) (*models.Cart, error) {
	if key == "" {
		return nil, nil
	}
	if err := s.SweepExpired(); err != nil {
		return nil, err
	}
	cart, err := s.cartRepo.GetByKey(key)
	if err != nil || cart == nil {
		return cart, err
	}
	now := s.now()
	if err := s.cartRepo.Touch(cart.ID, now); err != nil {
		return nil, err
	}
	cart.LastUpdated = now
	return cart, nil
}

// SweepExpired 删除过期购物车
func (s *CartService) SweepExpired() error {
	removed, err := s.cartRepo.DeleteExpired(s.cutoff())
	if err != nil {
		return err
	}
	if removed > 0 {
		logger.Infow("cart_sweep_expired", "removed", removed, "expiry_minutes", s.shop.CartExpiryMinutes)
	}
	return nil
}

// AddItem 加入购物车：同 SKU 合并数量，否则按当前规格生成快照
func (s *CartService) AddItem(key string, input AddItemInput) (*models.Cart, error) {
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Available {
		return nil, ErrProductNotFound
	}
	variation, err := s.resolveVariation(product, input)
	if err != nil {
		return nil, err
	}

	cart, err := s.getOrCreate(key)
	if err != nil {
		return nil, err
	}
	ledger := s.NewLedger()
	ok, err := ledger.HasStock(variation, input.Quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStockInsufficient
	}

	existing, err := s.cartRepo.GetItemBySKU(cart.ID, variation.SKU)
	if err != nil {
		return nil, err
	}
	var item *models.CartItem
	if existing == nil {
		item, err = s.snapshotItem(cart.ID, product, variation, input.Quantity)
		if err != nil {
			return nil, err
		}
	}
	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		if existing != nil {
			existing.SetQuantity(existing.Quantity + input.Quantity)
			if err := cartRepo.UpdateItemQuantity(existing); err != nil {
				return err
			}
		} else if err := cartRepo.CreateItem(item); err != nil {
			return err
		}
		return s.productRepo.WithTx(tx).IncrementTotalCart(product.ID, 1)
	})
	if err != nil {
		return nil, err
	}
	return s.reload(key)
}

// UpdateQuantities 更新购物车项数量（数量小于等于 0 时删除），仅对增量校验库存
func (s *CartService) UpdateQuantities(key string, quantities map[uint]int) (*models.Cart, error) {
	cart, err := s.Lookup(key)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	items := make(map[uint]models.CartItem, len(cart.Items))
	for _, item := range cart.Items {
		items[item.ID] = item
	}
	ledger := s.NewLedger()
	for itemID, quantity := range quantities {
		item, ok := items[itemID]
		if !ok {
			return nil, &CartItemError{ItemID: itemID, Err: ErrCartItemNotFound}
		}
		if quantity <= 0 {
			if err := s.cartRepo.DeleteItem(cart.ID, itemID); err != nil {
				return nil, err
			}
			continue
		}
		if delta := quantity - item.Quantity; delta > 0 {
			variation, err := s.variationRepo.GetBySKU(item.SKU)
			if err != nil {
				return nil, err
			}
			if variation == nil {
				return nil, &CartItemError{ItemID: itemID, SKU: item.SKU, Err: ErrVariationNotFound}
			}
			ok, err := ledger.HasStock(variation, delta)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, &CartItemError{ItemID: itemID, SKU: item.SKU, Err: ErrStockInsufficient}
			}
		}
		item.SetQuantity(quantity)
		if err := s.cartRepo.UpdateItemQuantity(&item); err != nil {
			return nil, err
		}
		ledger.Forget(item.SKU)
	}
	return s.reload(key)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(key string, itemID uint) (*models.Cart, error) {
	return s.UpdateQuantities(key, map[uint]int{itemID: 0})
}

// Clear 删除购物车
func (s *CartService) Clear(key string) error {
	return s.cartRepo.DeleteByKey(key)
}

// OutOfStockItems 返回规格已不存在或实时库存不足的购物车项
func (s *CartService) OutOfStockItems(cart *models.Cart) ([]models.CartItem, error) {
	if cart == nil {
		return nil, nil
	}
	ledger := s.NewLedger()
	out := make([]models.CartItem, 0)
	for _, item := range cart.Items {
		variation, err := s.variationRepo.GetBySKU(item.SKU)
		if err != nil {
			return nil, err
		}
		if variation == nil {
			out = append(out, item)
			continue
		}
		live, err := ledger.LiveStock(variation)
		if err != nil {
			return nil, err
		}
		if live != nil && *live < 0 {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *CartService) resolveVariation(product *models.Product, input AddItemInput) (*models.Variation, error) {
	var variation *models.Variation
	if input.VariationID != 0 {
		found, err := s.variationRepo.GetByID(input.VariationID)
		if err != nil {
			return nil, err
		}
		if found != nil && found.ProductID == product.ID {
			variation = found
		}
	} else {
		found, err := s.variationService.FindByOptions(product.ID, input.Options)
		if err != nil {
			return nil, err
		}
		variation = found
	}
	if variation == nil || !variation.HasPriceAt(s.now()) {
		return nil, ErrVariationNotFound
	}
	variation.Product = product
	return variation, nil
}

func (s *CartService) snapshotItem(cartID uint, product *models.Product, variation *models.Variation, quantity int) (*models.CartItem, error) {
	image, err := s.snapshotImage(product, variation)
	if err != nil {
		return nil, err
	}
	item := &models.CartItem{
		CartID:      cartID,
		SKU:         variation.SKU,
		Description: variation.Description(),
		URL:         "/products/" + product.Slug,
		Image:       image,
		UnitPrice:   models.NewMoneyFromDecimal(variation.PriceAt(s.now())),
	}
	item.SetQuantity(quantity)
	return item, nil
}

func (s *CartService) snapshotImage(product *models.Product, variation *models.Variation) (string, error) {
	if variation.Image != nil {
		return variation.Image.File, nil
	}
	images, err := s.productRepo.ListImages(product.ID)
	if err != nil {
		return "", err
	}
	for _, image := range images {
		if variation.ImageID != nil && image.ID == *variation.ImageID {
			return image.File, nil
		}
	}
	if len(images) > 0 {
		return images[0].File, nil
	}
	return "", nil
}

func (s *CartService) getOrCreate(key string) (*models.Cart, error) {
	cart, err := s.Lookup(key)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}
	cart = &models.Cart{Key: key, LastUpdated: s.now()}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) reload(key string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	return cart, nil
}

func (s *CartService) cutoff() time.Time {
	return s.now().Add(-time.Duration(s.shop.CartExpiryMinutes) * time.Minute)
}

// IsStockError 是否为库存类错误（无匹配规格或库存不足）
func IsStockError(err error) bool {
	return errors.Is(err, ErrVariationNotFound) || errors.Is(err, ErrStockInsufficient)
}
