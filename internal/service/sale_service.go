package service

import (
	"strings"
	"time"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleService 促销活动服务
type SaleService struct {
	saleRepo      repository.SaleRepository
	productRepo   repository.ProductRepository
	variationRepo repository.VariationRepository
	scopeRepo     repository.DiscountScopeRepository
}

// NewSaleService 创建促销活动服务
func NewSaleService(saleRepo repository.SaleRepository, productRepo repository.ProductRepository, variationRepo repository.VariationRepository, scopeRepo repository.DiscountScopeRepository) *SaleService {
	return &SaleService{
		saleRepo:      saleRepo,
		productRepo:   productRepo,
		variationRepo: variationRepo,
		scopeRepo:     scopeRepo,
	}
}

// SaleInput 促销活动编辑输入（Deduct / Percent / Exact 至多一个）
type SaleInput struct {
	Title       string
	Active      bool
	Deduct      *decimal.Decimal
	Percent     *decimal.Decimal
	Exact       *decimal.Decimal
	ValidFrom   *time.Time
	ValidTo     *time.Time
	ProductIDs  []uint
	CategoryIDs []uint
	Combined    bool
}

// Save 创建或更新促销活动并重新写入促销价（id 为 0 时创建）
func (s *SaleService) Save(id uint, input SaleInput) (*models.Sale, error) {
	reduction, err := models.NewReduction(input.Deduct, input.Percent, input.Exact)
	if err != nil {
		return nil, err
	}
	sale := &models.Sale{}
	if id != 0 {
		existing, err := s.saleRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, ErrSaleNotFound
		}
		sale = existing
	}
	sale.Title = strings.TrimSpace(input.Title)
	sale.Active = input.Active
	sale.Reduction = reduction
	sale.ValidFrom = input.ValidFrom
	sale.ValidTo = input.ValidTo
	sale.ProductIDs = models.UintArray(input.ProductIDs)
	sale.CategoryIDs = models.UintArray(input.CategoryIDs)
	sale.Combined = input.Combined

	if sale.ID == 0 {
		err = s.saleRepo.Create(sale)
	} else {
		err = s.saleRepo.Update(sale)
	}
	if err != nil {
		return nil, err
	}
	if err := s.UpdateProducts(sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// Activate 启用促销活动
func (s *SaleService) Activate(id uint) (*models.Sale, error) {
	return s.setActive(id, true)
}

// Deactivate 停用促销活动并清除促销价
func (s *SaleService) Deactivate(id uint) (*models.Sale, error) {
	return s.setActive(id, false)
}

// Apply 按当前配置重新写入促销价
func (s *SaleService) Apply(id uint) (*models.Sale, error) {
	sale, err := s.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	return sale, s.UpdateProducts(sale)
}

// Delete 删除促销活动并清除促销价
func (s *SaleService) Delete(id uint) error {
	sale, err := s.saleRepo.GetByID(id)
	if err != nil {
		return err
	}
	if sale == nil {
		return ErrSaleNotFound
	}
	return s.saleRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.clearStamps(tx, sale.ID); err != nil {
			return err
		}
		return s.saleRepo.WithTx(tx).Delete(sale.ID)
	})
}

// UpdateProducts 清除本促销此前写入的促销价，启用时按减价规则重新写入（幂等）
func (s *SaleService) UpdateProducts(sale *models.Sale) error {
	if sale == nil {
		return ErrSaleNotFound
	}
	stamped := 0
	err := s.saleRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.clearStamps(tx, sale.ID); err != nil {
			return err
		}
		if !sale.Active || sale.Reduction.IsNone() {
			return nil
		}
		productIDs, err := s.scopeRepo.WithTx(tx).ResolveProductIDs(sale.Scope())
		if err != nil {
			return err
		}
		if len(productIDs) == 0 {
			return nil
		}
		productRepo := s.productRepo.WithTx(tx)
		variationRepo := s.variationRepo.WithTx(tx)

		products, err := productRepo.ListByIDs(productIDs)
		if err != nil {
			return err
		}
		for _, product := range products {
			price, ok := saleStampPrice(sale.Reduction, product.UnitPrice)
			if !ok {
				continue
			}
			if err := productRepo.StampSale(product.ID, price, sale.ValidFrom, sale.ValidTo, sale.ID); err != nil {
				return err
			}
		}
		variations, err := variationRepo.ListByProducts(productIDs)
		if err != nil {
			return err
		}
		for _, variation := range variations {
			price, ok := saleStampPrice(sale.Reduction, variation.UnitPrice)
			if !ok {
				continue
			}
			if err := variationRepo.StampSale(variation.ID, price, sale.ValidFrom, sale.ValidTo, sale.ID); err != nil {
				return err
			}
			stamped++
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Infow("sale_products_updated", "sale_id", sale.ID, "active", sale.Active, "variations_stamped", stamped)
	return nil
}

func (s *SaleService) setActive(id uint, active bool) (*models.Sale, error) {
	sale, err := s.saleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	sale.Active = active
	if err := s.saleRepo.Update(sale); err != nil {
		return nil, err
	}
	if err := s.UpdateProducts(sale); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *SaleService) clearStamps(tx *gorm.DB, saleID uint) error {
	if err := s.productRepo.WithTx(tx).ClearSale(saleID); err != nil {
		return err
	}
	return s.variationRepo.WithTx(tx).ClearSale(saleID)
}

func saleStampPrice(reduction models.Reduction, unitPrice *models.Money) (decimal.Decimal, bool) {
	if unitPrice == nil {
		return decimal.Zero, false
	}
	return reduction.SalePrice(unitPrice.Decimal)
}
