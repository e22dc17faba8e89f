package public

import (
	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CompletedOrderResponse 订单完成页响应
type CompletedOrderResponse struct {
	models.Order
	StatusLabel string `json:"status_label"`
}

// GetCompletedOrder 获取当前会话最近完成的订单
func (h *Handler) GetCompletedOrder(c *gin.Context) {
	key, ok := shared.GetSessionKey(c)
	if !ok {
		return
	}
	sess, err := h.Sessions.LoadCheckout(c.Request.Context(), c.Request, key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.session_unavailable", err)
		return
	}
	if sess.CompletedOrderID == 0 {
		respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		return
	}
	order, err := h.OrderService.GetByID(sess.CompletedOrderID)
	if err != nil {
		if service.IsOrderNotFound(err) {
			respondError(c, response.CodeNotFound, "error.order_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	if order.Key != key || !order.IsCompleted() {
		respondError(c, response.CodeNotFound, "error.order_not_found", nil)
		return
	}
	response.Success(c, CompletedOrderResponse{
		Order:       *order,
		StatusLabel: h.Config.Shop.OrderStatusLabel(order.Status),
	})
}
