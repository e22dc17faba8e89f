package public

import (
	"errors"

	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算提交请求
type CheckoutRequest struct {
	Back bool          `json:"back"`
	Form checkout.Form `json:"form"`
}

// GetCheckout 获取当前结算步骤
func (h *Handler) GetCheckout(c *gin.Context) {
	key, ok := shared.GetSessionKey(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	sess, err := h.Sessions.LoadCheckout(ctx, c.Request, key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.session_unavailable", err)
		return
	}
	view, err := h.CheckoutService.Get(ctx, key, sess, h.Sessions.RememberedKey(c.Request))
	if err != nil {
		respondCheckoutError(c, err)
		return
	}
	if err := h.Sessions.SaveCheckout(ctx, c.Writer, c.Request, key, sess); err != nil {
		respondError(c, response.CodeInternal, "error.session_unavailable", err)
		return
	}
	response.Success(c, view)
}

// SubmitCheckout 提交当前结算步骤
func (h *Handler) SubmitCheckout(c *gin.Context) {
	key, ok := shared.GetSessionKey(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	ctx := c.Request.Context()
	sess, err := h.Sessions.LoadCheckout(ctx, c.Request, key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.session_unavailable", err)
		return
	}

	view, submitErr := h.CheckoutService.Submit(ctx, key, sess, service.SubmitInput{
		Back: req.Back,
		Form: req.Form,
	})
	if err := h.Sessions.SaveCheckout(ctx, c.Writer, c.Request, key, sess); err != nil {
		respondError(c, response.CodeInternal, "error.session_unavailable", err)
		return
	}
	if submitErr != nil {
		respondCheckoutError(c, submitErr)
		return
	}

	if view.Completed {
		if req.Form.Remember {
			if err := h.Sessions.Remember(c.Writer, key); err != nil {
				shared.RequestLog(c).Warnw("checkout_remember_failed", "error", err)
			}
		} else {
			h.Sessions.Forget(c.Writer)
		}
		response.Success(c, view)
		return
	}
	if !view.Errors.Empty() || view.Error != "" {
		msg := view.Error
		if msg == "" {
			msg = shared.Message("error.checkout_validation")
		}
		response.ErrorWithData(c, response.CodeValidation, msg, gin.H{
			"errors":   view.Errors,
			"checkout": view,
		})
		return
	}
	response.Success(c, view)
}

func respondCheckoutError(c *gin.Context, err error) {
	var itemErr *service.CartItemError
	if errors.As(err, &itemErr) && errors.Is(itemErr.Err, service.ErrCartOutOfStock) {
		response.ErrorWithData(c, response.CodeConflict, shared.Message("error.cart_out_of_stock"), gin.H{
			"item_id": itemErr.ItemID,
			"sku":     itemErr.SKU,
		})
		return
	}
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.checkout_failed")
}
