package service

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
)

// DiscountCodeService 优惠码服务
type DiscountCodeService struct {
	codeRepo  repository.DiscountCodeRepository
	scopeRepo repository.DiscountScopeRepository
	now       func() time.Time
}

// NewDiscountCodeService 创建优惠码服务
func NewDiscountCodeService(codeRepo repository.DiscountCodeRepository, scopeRepo repository.DiscountScopeRepository) *DiscountCodeService {
	return &DiscountCodeService{
		codeRepo:  codeRepo,
		scopeRepo: scopeRepo,
		now:       time.Now,
	}
}

// DiscountCodeInput 优惠码编辑输入（Deduct / Percent 至多一个）
type DiscountCodeInput struct {
	Code          string
	Title         string
	Active        bool
	Deduct        *decimal.Decimal
	Percent       *decimal.Decimal
	MinPurchase   *decimal.Decimal
	FreeShipping  bool
	UsesRemaining *int
	ValidFrom     *time.Time
	ValidTo       *time.Time
	ProductIDs    []uint
	CategoryIDs   []uint
	Combined      bool
}

// Save 创建或更新优惠码（id 为 0 时创建）
func (s *DiscountCodeService) Save(id uint, input DiscountCodeInput) (*models.DiscountCode, error) {
	reduction, err := models.NewReduction(input.Deduct, input.Percent, nil)
	if err != nil {
		return nil, err
	}
	if reduction.Kind == models.ReductionExact {
		return nil, ErrDiscountKindUnsupported
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, ErrDiscountCodeNotFound
	}
	if input.UsesRemaining != nil && *input.UsesRemaining < 0 {
		return nil, ErrInvalidQuantity
	}
	existing, err := s.codeRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, ErrDiscountCodeExists
	}

	discount := &models.DiscountCode{}
	if id != 0 {
		current, err := s.codeRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, ErrDiscountCodeNotFound
		}
		discount = current
	}
	discount.Code = code
	discount.Title = strings.TrimSpace(input.Title)
	discount.Active = input.Active
	discount.Reduction = reduction
	discount.MinPurchase = nil
	if input.MinPurchase != nil {
		discount.MinPurchase = models.NewMoneyPtr(*input.MinPurchase)
	}
	discount.FreeShipping = input.FreeShipping
	discount.UsesRemaining = input.UsesRemaining
	discount.ValidFrom = input.ValidFrom
	discount.ValidTo = input.ValidTo
	discount.ProductIDs = models.UintArray(input.ProductIDs)
	discount.CategoryIDs = models.UintArray(input.CategoryIDs)
	discount.Combined = input.Combined

	if discount.ID == 0 {
		err = s.codeRepo.Create(discount)
	} else {
		err = s.codeRepo.Update(discount)
	}
	if err != nil {
		return nil, err
	}
	return discount, nil
}

// GetValid 校验优惠码：启用、在有效期内、有剩余次数、满足门槛，限定范围时购物车需包含范围内 SKU
func (s *DiscountCodeService) GetValid(code string, cart *models.Cart) (*models.DiscountCode, error) {
	code = strings.TrimSpace(code)
	if code == "" || cart == nil {
		return nil, ErrDiscountCodeNotFound
	}
	discount, err := s.codeRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if discount == nil || !discount.Active {
		return nil, ErrDiscountCodeNotFound
	}
	now := s.now()
	if discount.ValidFrom != nil && discount.ValidFrom.After(now) {
		return nil, ErrDiscountCodeNotFound
	}
	if discount.ValidTo != nil && discount.ValidTo.Before(now) {
		return nil, ErrDiscountCodeNotFound
	}
	if discount.UsesRemaining != nil && *discount.UsesRemaining <= 0 {
		return nil, ErrDiscountCodeNotFound
	}
	if discount.MinPurchase != nil && cart.TotalPrice().LessThan(discount.MinPurchase.Decimal) {
		return nil, ErrDiscountCodeNotFound
	}
	scope := discount.Scope()
	if scope.IsEmpty() {
		return discount, nil
	}
	skus, err := s.scopeSKUs(scope)
	if err != nil {
		return nil, err
	}
	for _, sku := range cart.SKUs() {
		if _, ok := skus[sku]; ok {
			return discount, nil
		}
	}
	return nil, ErrDiscountCodeNotFound
}

// CalculateForCart 计算购物车优惠：无范围时按购物车总额计算，否则仅范围内商品按单价计算后乘以数量累加
func (s *DiscountCodeService) CalculateForCart(cart *models.Cart, discount *models.DiscountCode) (decimal.Decimal, error) {
	if cart == nil || discount == nil {
		return decimal.Zero, nil
	}
	scope := discount.Scope()
	if scope.IsEmpty() {
		return discount.Calculate(cart.TotalPrice()), nil
	}
	skus, err := s.scopeSKUs(scope)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, item := range cart.Items {
		if _, ok := skus[item.SKU]; !ok {
			continue
		}
		perUnit := discount.Calculate(item.UnitPrice.Decimal)
		total = total.Add(perUnit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total.Round(2), nil
}

func (s *DiscountCodeService) scopeSKUs(scope models.DiscountScope) (map[string]struct{}, error) {
	skus, err := s.scopeRepo.ResolveSKUs(scope)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(skus))
	for _, sku := range skus {
		set[sku] = struct{}{}
	}
	return set, nil
}
