package public

import (
	"errors"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var cartItemErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, key: "error.product_not_found"},
	{target: service.ErrVariationNotFound, code: response.CodeBadRequest, key: "error.variation_not_found"},
	{target: service.ErrStockInsufficient, code: response.CodeConflict, key: "error.stock_insufficient"},
	{target: service.ErrInvalidQuantity, code: response.CodeBadRequest, key: "error.quantity_invalid"},
	{target: service.ErrCartItemNotFound, code: response.CodeNotFound, key: "error.cart_item_not_found"},
	{target: service.ErrCartNotFound, code: response.CodeNotFound, key: "error.cart_not_found"},
}

var discountErrorRules = []mappedHandlerError{
	{target: service.ErrDiscountCodeNotFound, code: response.CodeBadRequest, key: "error.discount_code_invalid"},
	{target: service.ErrDiscountUsageExhausted, code: response.CodeConflict, key: "error.discount_usage_exhausted"},
}

var checkoutErrorRules = concatMappedHandlerErrors(
	[]mappedHandlerError{
		{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
		{target: service.ErrCartOutOfStock, code: response.CodeConflict, key: "error.cart_out_of_stock"},
		{target: service.ErrOrderAlreadyCompleted, code: response.CodeConflict, key: "error.order_already_completed"},
	},
	discountErrorRules,
)
