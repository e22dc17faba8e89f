package service

import "errors"

var (
	// 商品与规格
	ErrProductNotFound           = errors.New("product not found")
	ErrVariationNotFound         = errors.New("no variation matches the selected options")
	ErrStockInsufficient         = errors.New("insufficient stock for the requested quantity")
	ErrMultipleDefaultVariations = errors.New("only one variation may be the default")
	ErrUnknownOptionAxis         = errors.New("unknown option axis")
	ErrEmptyOptionValue          = errors.New("option value must not be empty")
	ErrProductImageInvalid       = errors.New("product image file is required")

	// 购物车
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartEmpty        = errors.New("cart is empty")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrInvalidQuantity  = errors.New("quantity must be positive")
	ErrCartOutOfStock   = errors.New("some items in the cart are no longer available")

	// 促销与优惠码
	ErrSaleNotFound            = errors.New("sale not found")
	ErrDiscountCodeNotFound    = errors.New("invalid discount code")
	ErrDiscountCodeExists      = errors.New("discount code already exists")
	ErrDiscountKindUnsupported = errors.New("discount codes support deduct or percent only")
	ErrDiscountUsageExhausted  = errors.New("discount code has no remaining uses")

	// 订单
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderAlreadyCompleted = errors.New("order already completed")
)
