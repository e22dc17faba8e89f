package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart 购物车（通过会话 Key 访问，不绑定用户）
type Cart struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                              // 主键
	Key         string    `gorm:"column:session_key;type:varchar(64);uniqueIndex;not null" json:"-"` // 会话 Key
	LastUpdated time.Time `gorm:"index;not null" json:"last_updated"`                                // 最后访问时间（决定过期）
	CreatedAt   time.Time `json:"created_at"`                                                        // 创建时间

	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"` // 购物车项
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

// TotalQuantity 商品总数量
func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice 商品总金额
func (c *Cart) TotalPrice() decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice.Decimal)
	}
	return total.Round(2)
}

// HasItems 是否有商品
func (c *Cart) HasItems() bool {
	return c != nil && len(c.Items) > 0
}

// SKUs 购物车内的 SKU 列表
func (c *Cart) SKUs() []string {
	if c == nil {
		return nil
	}
	skus := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		skus = append(skus, item.SKU)
	}
	return skus
}

// CartItem 购物车项（SKU 快照，不关联实时商品）
type CartItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                                          // 主键
	CartID      uint      `gorm:"not null;index;uniqueIndex:idx_cart_item_sku" json:"-"`                         // 购物车ID
	SKU         string    `gorm:"column:sku;type:varchar(64);not null;uniqueIndex:idx_cart_item_sku" json:"sku"` // SKU 快照
	Description string    `gorm:"type:varchar(255)" json:"description"`                                          // 描述快照
	URL         string    `gorm:"type:varchar(500)" json:"url"`                                                  // 商品链接快照
	Image       string    `gorm:"type:varchar(500)" json:"image"`                                                // 图片快照
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`                       // 加入时单价
	Quantity    int       `gorm:"not null" json:"quantity"`                                                      // 数量
	TotalPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`                      // 小计
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                                       // 创建时间
	UpdatedAt   time.Time `json:"updated_at"`                                                                    // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// SetQuantity 更新数量并同步小计
func (i *CartItem) SetQuantity(quantity int) {
	i.Quantity = quantity
	i.TotalPrice = NewMoneyFromDecimal(i.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(quantity))))
}
