package constants

// 队列与任务常量
const (
	QueueDefault       = "default"
	TaskOrderCompleted = "order:completed"
)

// 结算步骤类型
const (
	CheckoutStepAddress      = "address"
	CheckoutStepPayment      = "payment"
	CheckoutStepConfirmation = "confirmation"
)

// 结算步骤标题
const (
	CheckoutTitleDetails      = "Details"
	CheckoutTitleAddress      = "Address"
	CheckoutTitlePayment      = "Payment"
	CheckoutTitleConfirmation = "Confirmation"
)

// 缓存键前缀
const (
	CacheKeyCheckoutSession = "checkout"
)

// 运费类型
const (
	ShippingTypeFree = "Free shipping"
)

// 会话字段
const (
	SessionValueKey = "key"
)

// 分页默认值
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)
