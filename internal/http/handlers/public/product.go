package public

import (
	"strings"

	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ProductListQuery 商品列表查询参数
type ProductListQuery struct {
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
	CategoryID uint   `form:"category_id"`
	Search     string `form:"search"`
}

// VariationResponse 前台规格展示
type VariationResponse struct {
	ID          uint                `json:"id"`
	SKU         string              `json:"sku"`
	Options     models.OptionValues `json:"options"`
	Label       string              `json:"label"`
	UnitPrice   *models.Money       `json:"unit_price"`
	Price       models.Money        `json:"price"`
	OnSale      bool                `json:"on_sale"`
	Default     bool                `json:"default"`
	TracksStock bool                `json:"tracks_stock"`
	LiveStock   *int                `json:"live_stock"`
	InStock     bool                `json:"in_stock"`
}

// ProductDetailResponse 商品详情
type ProductDetailResponse struct {
	models.Product
	Price      models.Money        `json:"price"`
	OnSale     bool                `json:"on_sale"`
	Variations []VariationResponse `json:"variations"`
}

// ListProducts 商品列表（仅上架商品）
func (h *Handler) ListProducts(c *gin.Context) {
	var query ProductListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	page, pageSize := shared.NormalizePagination(query.Page, query.PageSize)
	products, total, err := h.ProductRepo.List(repository.ProductListFilter{
		Page:          page,
		PageSize:      pageSize,
		CategoryID:    query.CategoryID,
		Search:        strings.TrimSpace(query.Search),
		OnlyAvailable: true,
		WithCategory:  true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetProduct 商品详情（含规格与实时库存）
func (h *Handler) GetProduct(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	if slug == "" {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	product, err := h.ProductRepo.GetBySlug(slug, true)
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	if product == nil {
		respondError(c, response.CodeNotFound, "error.product_not_found", nil)
		return
	}

	ledger := h.CartService.NewLedger()
	variations := make([]VariationResponse, 0, len(product.Variations))
	for i := range product.Variations {
		variation := product.Variations[i]
		live, err := ledger.LiveStock(&variation)
		if err != nil {
			respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
			return
		}
		variations = append(variations, VariationResponse{
			ID:          variation.ID,
			SKU:         variation.SKU,
			Options:     variation.Options,
			Label:       variation.Options.Label(),
			UnitPrice:   variation.UnitPrice,
			Price:       models.NewMoneyFromDecimal(variation.Price()),
			OnSale:      variation.OnSale(),
			Default:     variation.Default,
			TracksStock: variation.TracksStock(),
			LiveStock:   live,
			InStock:     live == nil || *live > 0,
		})
	}
	detail := ProductDetailResponse{
		Product:    *product,
		Price:      models.NewMoneyFromDecimal(product.Price()),
		OnSale:     product.OnSale(),
		Variations: variations,
	}
	detail.Product.Variations = nil
	response.Success(c, detail)
}

// ListCategories 分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.product_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}
