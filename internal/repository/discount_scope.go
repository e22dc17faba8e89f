package repository

import (
	"github.com/storefront-next/internal/models"

	"gorm.io/gorm"
)

// DiscountScopeRepository 促销与优惠码适用范围解析
type DiscountScopeRepository interface {
	ResolveProductIDs(scope models.DiscountScope) ([]uint, error)
	ResolveSKUs(scope models.DiscountScope) ([]string, error)
	WithTx(tx *gorm.DB) DiscountScopeRepository
}

// GormDiscountScopeRepository GORM 实现
type GormDiscountScopeRepository struct {
	db *gorm.DB
}

// NewDiscountScopeRepository 创建范围解析仓库
func NewDiscountScopeRepository(db *gorm.DB) *GormDiscountScopeRepository {
	return &GormDiscountScopeRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountScopeRepository) WithTx(tx *gorm.DB) DiscountScopeRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountScopeRepository{db: tx}
}

// ResolveProductIDs 解析范围内的商品ID：Combined 时取显式商品与分类商品的交集（任一侧为空则只用另一侧），否则取并集
func (r *GormDiscountScopeRepository) ResolveProductIDs(scope models.DiscountScope) ([]uint, error) {
	explicit := make([]uint, 0, len(scope.ProductIDs))
	if len(scope.ProductIDs) > 0 {
		if err := r.db.Model(&models.Product{}).Where("id IN ?", []uint(scope.ProductIDs)).Order("id ASC").Pluck("id", &explicit).Error; err != nil {
			return nil, err
		}
	}
	byCategory := make([]uint, 0)
	if len(scope.CategoryIDs) > 0 {
		if err := r.db.Model(&models.Product{}).Where("category_id IN ?", []uint(scope.CategoryIDs)).Order("id ASC").Pluck("id", &byCategory).Error; err != nil {
			return nil, err
		}
	}
	return combineScopeIDs(explicit, byCategory, scope.Combined, len(scope.ProductIDs) > 0, len(scope.CategoryIDs) > 0), nil
}

// ResolveSKUs 解析范围内全部规格的 SKU
func (r *GormDiscountScopeRepository) ResolveSKUs(scope models.DiscountScope) ([]string, error) {
	ids, err := r.ResolveProductIDs(scope)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []string{}, nil
	}
	var skus []string
	if err := r.db.Model(&models.Variation{}).Where("product_id IN ?", ids).Pluck("sku", &skus).Error; err != nil {
		return nil, err
	}
	return skus, nil
}

func combineScopeIDs(explicit, byCategory []uint, combined, hasProducts, hasCategories bool) []uint {
	if combined && hasProducts && hasCategories {
		inCategory := make(map[uint]struct{}, len(byCategory))
		for _, id := range byCategory {
			inCategory[id] = struct{}{}
		}
		out := make([]uint, 0, len(explicit))
		for _, id := range explicit {
			if _, ok := inCategory[id]; ok {
				out = append(out, id)
			}
		}
		return out
	}
	seen := make(map[uint]struct{}, len(explicit)+len(byCategory))
	out := make([]uint, 0, len(explicit)+len(byCategory))
	for _, list := range [][]uint{explicit, byCategory} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
