package repository

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page          int
	PageSize      int
	CategoryID    uint
	Search        string
	OnlyAvailable bool
	WithCategory  bool
}
