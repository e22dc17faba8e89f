package public

import (
	"errors"

	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求（variation_id 与 options 二选一）
type AddCartItemRequest struct {
	ProductID   uint                `json:"product_id" binding:"required"`
	VariationID uint                `json:"variation_id"`
	Options     models.OptionValues `json:"options"`
	Quantity    int                 `json:"quantity" binding:"required"`
}

// UpdateCartItemsRequest 批量更新数量请求（数量小于等于 0 表示删除）
type UpdateCartItemsRequest struct {
	Items []struct {
		ID       uint `json:"id" binding:"required"`
		Quantity int  `json:"quantity"`
	} `json:"items" binding:"required"`
}

// ApplyDiscountRequest 应用优惠码请求
type ApplyDiscountRequest struct {
	Code string `json:"code"`
}

// CartResponse 购物车响应
type CartResponse struct {
	Items         []models.CartItem `json:"items"`
	TotalQuantity int               `json:"total_quantity"`
	TotalPrice    models.Money      `json:"total_price"`
	DiscountCode  string            `json:"discount_code,omitempty"`
	DiscountTotal models.Money      `json:"discount_total"`
	FreeShipping  bool              `json:"free_shipping"`
	OutOfStock    []string          `json:"out_of_stock,omitempty"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	key, ok := shared.GetSessionKey(c)
	if !ok {
		return
	}
	cart, err := h.CartService.Lookup(key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	h.respondCart(c, key, cart)
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	key, ok := shared.GetSessionKey(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	cart, err := h.CartService.AddItem(key, service.AddItemInput{
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Options:     req.Options,
		Quantity:    req.Quantity,
	})
	if err != nil {
		respondWithMappedError(c, err, cartItemErrorRules, response.CodeInternal, "error.cart_update_failed")
		return
	}
	h.respondCart(c, key, cart)
}

// UpdateCartItems 批量更新购物车数量
func (h *Handler) UpdateCartItems(c *gin.Context) {
	key, ok := shared.GetSessionKey(c)
	if !ok {
		return
	}
	var req UpdateCartItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	quantities := make(map[uint]int, len(req.Items))
	for _, item := range req.Items {
		quantities[item.ID] = item.Quantity
	}
	cart, err := h.CartService.UpdateQuantities(key, quantities)
	if err != nil {
		respondCartItemError(c, err)
		return
	}
	h.respondCart(c, key, cart)
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	key, ok := shared.GetSessionKey(c)
	if !ok {
		return
	}
	itemID, ok := shared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	cart, err := h.CartService.RemoveItem(key, itemID)
	if err != nil {
		respondCartItemError(c, err)
		return
	}
	h.respondCart(c, key, cart)
}

// ApplyDiscount 应用优惠码（空字符串表示移除）
func (h *Handler) ApplyDiscount(c *gin.Context) {
	key, ok := shared.GetSessionKey(c)
	if !ok {
		return
	}
	var req ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	sess, err := h.Sessions.LoadCheckout(c.Request.Context(), c.Request, key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.session_unavailable", err)
		return
	}
	if err := h.CheckoutService.ApplyDiscountCode(key, sess, req.Code); err != nil {
		respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.internal")
		return
	}
	if err := h.Sessions.SaveCheckout(c.Request.Context(), c.Writer, c.Request, key, sess); err != nil {
		respondError(c, response.CodeInternal, "error.session_unavailable", err)
		return
	}
	cart, err := h.CartService.Lookup(key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	h.respondCartWithSession(c, cart, sess)
}

func (h *Handler) respondCart(c *gin.Context, key string, cart *models.Cart) {
	sess, err := h.Sessions.LoadCheckout(c.Request.Context(), c.Request, key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.session_unavailable", err)
		return
	}
	h.respondCartWithSession(c, cart, sess)
}

func (h *Handler) respondCartWithSession(c *gin.Context, cart *models.Cart, sess *checkout.Session) {
	resp := CartResponse{Items: []models.CartItem{}}
	if cart != nil {
		resp.Items = cart.Items
		resp.TotalQuantity = cart.TotalQuantity()
		resp.TotalPrice = models.NewMoneyFromDecimal(cart.TotalPrice())
		outOfStock, err := h.CartService.OutOfStockItems(cart)
		if err != nil {
			respondError(c, response.CodeInternal, "error.internal", err)
			return
		}
		for _, item := range outOfStock {
			resp.OutOfStock = append(resp.OutOfStock, item.SKU)
		}
	}
	if sess != nil {
		resp.DiscountCode = sess.DiscountCode
		resp.DiscountTotal = sess.DiscountTotal
		resp.FreeShipping = sess.FreeShipping
	}
	response.Success(c, resp)
}

func respondCartItemError(c *gin.Context, err error) {
	var itemErr *service.CartItemError
	if errors.As(err, &itemErr) {
		for _, rule := range cartItemErrorRules {
			if errors.Is(itemErr.Err, rule.target) {
				response.ErrorWithData(c, rule.code, shared.Message(rule.key), gin.H{
					"item_id": itemErr.ItemID,
					"sku":     itemErr.SKU,
				})
				return
			}
		}
	}
	respondWithMappedError(c, err, cartItemErrorRules, response.CodeInternal, "error.cart_update_failed")
}
