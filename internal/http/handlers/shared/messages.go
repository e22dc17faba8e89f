package shared

// messages 错误提示文案
var messages = map[string]string{
	"error.bad_request":               "Invalid request.",
	"error.internal":                  "Something went wrong, please try again.",
	"error.not_found":                 "Not found.",
	"error.rate_limited":              "Too many requests, please retry in %d seconds.",
	"error.rate_limit_unavailable":    "Rate limiter unavailable.",
	"error.session_unavailable":       "Session unavailable.",
	"error.product_not_found":         "Product not found.",
	"error.product_fetch_failed":      "Failed to load products.",
	"error.variation_not_found":       "The selected options are currently unavailable.",
	"error.stock_insufficient":        "The selected quantity is not in stock.",
	"error.quantity_invalid":          "Quantity must be positive.",
	"error.cart_not_found":            "Your cart is empty.",
	"error.cart_empty":                "Your cart is empty.",
	"error.cart_item_not_found":       "Cart item not found.",
	"error.cart_out_of_stock":         "Some items in your cart are no longer available.",
	"error.cart_update_failed":        "Failed to update the cart.",
	"error.discount_code_invalid":     "Invalid discount code.",
	"error.discount_usage_exhausted":  "The discount code has no remaining uses.",
	"error.checkout_failed":           "Checkout failed.",
	"error.checkout_validation":       "Please correct the errors below.",
	"error.order_not_found":           "Order not found.",
	"error.order_already_completed":   "The order has already been completed.",
	"error.reduction_conflict":        "Please enter a value for only one type of reduction.",
	"error.reduction_percent_invalid": "Percentage reductions must be between 0 and 100.",
}

// Message 返回文案，未定义时返回 key 本身
func Message(key string) string {
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
