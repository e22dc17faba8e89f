package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Address 地址字段（账单与收货共用）
type Address struct {
	FirstName string `gorm:"type:varchar(100)" json:"first_name" validate:"required,max=100"` // 名
	LastName  string `gorm:"type:varchar(100)" json:"last_name" validate:"required,max=100"`  // 姓
	Street    string `gorm:"type:varchar(255)" json:"street" validate:"required,max=255"`     // 街道
	City      string `gorm:"type:varchar(100)" json:"city" validate:"required,max=100"`       // 城市
	State     string `gorm:"type:varchar(100)" json:"state" validate:"required,max=100"`      // 州/省
	Postcode  string `gorm:"type:varchar(20)" json:"postcode" validate:"required,max=20"`     // 邮编
	Country   string `gorm:"type:varchar(100)" json:"country" validate:"required,max=100"`    // 国家
	Phone     string `gorm:"type:varchar(30)" json:"phone" validate:"required,max=30"`        // 电话
	Email     string `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`       // 邮箱（账单地址必填）
}

// Order 订单表（完成后为冻结的财务记录）
type Order struct {
	ID                     uint       `gorm:"primarykey" json:"id"`                                        // 主键
	Key                    string     `gorm:"column:session_key;type:varchar(64);index;not null" json:"-"` // 来源会话 Key
	Billing                Address    `gorm:"embedded;embeddedPrefix:billing_" json:"billing"`             // 账单地址
	Shipping               Address    `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`           // 收货地址
	AdditionalInstructions string     `gorm:"type:text" json:"additional_instructions"`                    // 备注
	Time                   time.Time  `gorm:"index" json:"time"`                                           // 下单时间
	ShippingType           string     `gorm:"type:varchar(100)" json:"shipping_type"`                      // 运费类型
	ShippingTotal          Money      `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_total"` // 运费
	TaxType                string     `gorm:"type:varchar(100)" json:"tax_type"`                           // 税费类型
	TaxTotal               Money      `gorm:"type:decimal(20,2);not null;default:0" json:"tax_total"`      // 税费
	DiscountCode           string     `gorm:"type:varchar(64)" json:"discount_code"`                       // 优惠码
	DiscountTotal          Money      `gorm:"type:decimal(20,2);not null;default:0" json:"discount_total"` // 优惠金额
	ItemTotal              Money      `gorm:"type:decimal(20,2);not null;default:0" json:"item_total"`     // 商品金额
	Total                  Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total"`          // 订单总额
	Status                 int        `gorm:"not null;index" json:"status"`                                // 订单状态（配置枚举）
	TransactionID          string     `gorm:"type:varchar(255);index" json:"transaction_id"`               // 支付交易号
	CompletedAt            *time.Time `gorm:"index" json:"completed_at"`                                   // 完成时间
	CreatedAt              time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt              time.Time  `json:"updated_at"`                                                  // 更新时间

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// IsCompleted 是否已完成
func (o *Order) IsCompleted() bool {
	return o != nil && o.CompletedAt != nil
}

// ComputeTotal 订单总额 = 商品金额 + 运费 - 优惠 + 税费
func (o *Order) ComputeTotal() decimal.Decimal {
	return o.ItemTotal.Decimal.
		Add(o.ShippingTotal.Decimal).
		Sub(o.DiscountTotal.Decimal).
		Add(o.TaxTotal.Decimal).
		Round(2)
}

// OrderItem 订单项（购物车项的冻结副本）
type OrderItem struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID     uint      `gorm:"index;not null" json:"order_id"`                           // 订单ID
	SKU         string    `gorm:"column:sku;type:varchar(64);not null;index" json:"sku"`    // SKU
	Description string    `gorm:"type:varchar(255)" json:"description"`                     // 描述
	URL         string    `gorm:"type:varchar(500)" json:"url"`                             // 商品链接
	Image       string    `gorm:"type:varchar(500)" json:"image"`                           // 图片
	UnitPrice   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`  // 单价
	Quantity    int       `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                  // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}
