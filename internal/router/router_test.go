package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

// shopClient 在多次请求间保留 Cookie 的测试客户端
type shopClient struct {
	t       *testing.T
	engine  *gin.Engine
	cookies map[string]*http.Cookie
}

func (s *shopClient) do(method, path string, body interface{}) envelope {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range s.cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	require.Equal(s.t, http.StatusOK, w.Code)
	for _, cookie := range w.Result().Cookies() {
		s.cookies[cookie.Name] = cookie
	}
	var resp envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func newRouterTestEnv(t *testing.T) (*shopClient, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	cfg := config.Default()
	container := provider.NewContainerWithDB(cfg, db, nil)
	engine := SetupRouter(cfg, container)
	return &shopClient{t: t, engine: engine, cookies: map[string]*http.Cookie{}}, container
}

func seedKettle(t *testing.T, c *provider.Container, stock int) (*models.Product, *models.Variation) {
	t.Helper()
	unit := models.NewMoneyFromDecimal(decimal.NewFromInt(20))
	product := &models.Product{
		Slug:       "kettle",
		Title:      "Kettle",
		Available:  true,
		Priced:     models.Priced{UnitPrice: &unit},
		NumInStock: &stock,
	}
	require.NoError(t, c.ProductRepo.Create(product))
	variations, err := c.VariationService.ManageEmpty(product.ID)
	require.NoError(t, err)
	require.Len(t, variations, 1)
	return product, &variations[0]
}

func checkoutAddress() models.Address {
	return models.Address{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Street:    "12 St James's Square",
		City:      "London",
		State:     "London",
		Postcode:  "SW1Y 4JH",
		Country:   "United Kingdom",
		Phone:     "02070000000",
		Email:     "ada@example.com",
	}
}

func checkoutCard() map[string]interface{} {
	return map[string]interface{}{
		"card_name":         "Ada Lovelace",
		"card_type":         "Visa",
		"card_number":       "4111111111111111",
		"card_expiry_month": 12,
		"card_expiry_year":  time.Now().Year() + 1,
		"card_ccv":          "123",
	}
}

func TestProductDetailShowsLiveStock(t *testing.T) {
	client, container := newRouterTestEnv(t)
	_, variation := seedKettle(t, container, 4)

	resp := client.do(http.MethodGet, "/api/v1/products/kettle", nil)
	require.Equal(t, 0, resp.StatusCode)
	var detail struct {
		Variations []struct {
			SKU       string `json:"sku"`
			LiveStock *int   `json:"live_stock"`
			InStock   bool   `json:"in_stock"`
		} `json:"variations"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	require.Len(t, detail.Variations, 1)
	require.Equal(t, variation.SKU, detail.Variations[0].SKU)
	require.NotNil(t, detail.Variations[0].LiveStock)
	require.Equal(t, 4, *detail.Variations[0].LiveStock)
	require.True(t, detail.Variations[0].InStock)

	missing := client.do(http.MethodGet, "/api/v1/products/teapot", nil)
	require.Equal(t, 404, missing.StatusCode)
}

func TestCartAddBeyondStockRejected(t *testing.T) {
	client, container := newRouterTestEnv(t)
	product, variation := seedKettle(t, container, 2)

	resp := client.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id":   product.ID,
		"variation_id": variation.ID,
		"quantity":     3,
	})
	require.Equal(t, 409, resp.StatusCode)

	resp = client.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id":   product.ID,
		"variation_id": variation.ID,
		"quantity":     2,
	})
	require.Equal(t, 0, resp.StatusCode)
	var cart struct {
		TotalQuantity int    `json:"total_quantity"`
		TotalPrice    string `json:"total_price"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &cart))
	require.Equal(t, 2, cart.TotalQuantity)
	require.Equal(t, "40.00", cart.TotalPrice)
}

func TestCheckoutFlowOverHTTP(t *testing.T) {
	client, container := newRouterTestEnv(t)
	product, variation := seedKettle(t, container, 5)

	resp := client.do(http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"product_id":   product.ID,
		"variation_id": variation.ID,
		"quantity":     2,
	})
	require.Equal(t, 0, resp.StatusCode)

	resp = client.do(http.MethodGet, "/api/v1/checkout", nil)
	require.Equal(t, 0, resp.StatusCode)

	resp = client.do(http.MethodPost, "/api/v1/checkout", map[string]interface{}{
		"form": map[string]interface{}{"billing": checkoutAddress()},
	})
	require.Equal(t, 422, resp.StatusCode)

	resp = client.do(http.MethodPost, "/api/v1/checkout", map[string]interface{}{
		"form": map[string]interface{}{
			"billing":               checkoutAddress(),
			"same_billing_shipping": true,
		},
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var view struct {
		Step      int  `json:"step"`
		Completed bool `json:"completed"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	require.Equal(t, 2, view.Step)

	resp = client.do(http.MethodPost, "/api/v1/checkout", map[string]interface{}{
		"form": map[string]interface{}{"card": checkoutCard()},
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	require.Equal(t, 3, view.Step)

	resp = client.do(http.MethodPost, "/api/v1/checkout", map[string]interface{}{
		"form": map[string]interface{}{"card": checkoutCard(), "remember": true},
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	require.True(t, view.Completed)
	require.Contains(t, client.cookies, container.Config.Session.RememberCookieName)

	resp = client.do(http.MethodGet, "/api/v1/orders/complete", nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var order struct {
		Total       string `json:"total"`
		StatusLabel string `json:"status_label"`
		Items       []struct {
			SKU      string `json:"sku"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &order))
	require.Equal(t, "50.00", order.Total)
	require.Equal(t, "Unprocessed", order.StatusLabel)
	require.Len(t, order.Items, 1)
	require.Equal(t, 2, order.Items[0].Quantity)

	reloaded, err := container.VariationRepo.GetByID(variation.ID)
	require.NoError(t, err)
	require.Equal(t, 3, *reloaded.NumInStock)

	resp = client.do(http.MethodGet, "/api/v1/checkout", nil)
	require.Equal(t, 400, resp.StatusCode)
}
