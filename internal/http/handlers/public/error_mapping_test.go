package public

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
)

type mappedResponse struct {
	StatusCode int                    `json:"status_code"`
	Msg        string                 `json:"msg"`
	Data       map[string]interface{} `json:"data"`
}

func runMapped(t *testing.T, fn func(c *gin.Context)) mappedResponse {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)
	var resp mappedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func TestRespondCartItemErrorIncludesItem(t *testing.T) {
	err := &service.CartItemError{ItemID: 7, SKU: "TEE-S", Err: service.ErrStockInsufficient}
	resp := runMapped(t, func(c *gin.Context) { respondCartItemError(c, err) })
	if resp.StatusCode != response.CodeConflict {
		t.Fatalf("status_code want %d got %d", response.CodeConflict, resp.StatusCode)
	}
	if resp.Data["sku"] != "TEE-S" {
		t.Fatalf("sku want TEE-S got %v", resp.Data["sku"])
	}
}

func TestRespondCheckoutErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{name: "empty cart", err: service.ErrCartEmpty, code: response.CodeBadRequest},
		{name: "wrapped usage", err: fmt.Errorf("complete: %w", service.ErrDiscountUsageExhausted), code: response.CodeConflict},
		{name: "out of stock", err: &service.CartItemError{SKU: "MUG", Err: service.ErrCartOutOfStock}, code: response.CodeConflict},
		{name: "unknown", err: errors.New("gateway timeout"), code: response.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := runMapped(t, func(c *gin.Context) { respondCheckoutError(c, tc.err) })
			if resp.StatusCode != tc.code {
				t.Fatalf("status_code want %d got %d", tc.code, resp.StatusCode)
			}
		})
	}
}
