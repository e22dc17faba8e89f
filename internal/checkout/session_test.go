package checkout

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSessionCarriesNoCardFields(t *testing.T) {
	sess := &Session{Step: 2}
	sess.ApplyForm(Form{Billing: validAddress(), SameBillingShipping: true, Card: CardForm{Number: "4111111111111111", CCV: "123"}})

	raw, err := json.Marshal(sess)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "4111111111111111")
	require.NotContains(t, string(raw), "card")
}

func TestSessionFinishResetsOrderFields(t *testing.T) {
	sess := &Session{Step: 3}
	sess.ApplyForm(Form{Billing: validAddress(), AdditionalInstructions: " leave at door "})
	require.Equal(t, "leave at door", sess.AdditionalInstructions)
	sess.SetShipping("Flat rate shipping", decimal.NewFromInt(10))
	sess.SetTax("GST", decimal.NewFromInt(2))
	sess.SetDiscount("SAVE10", decimal.NewFromInt(5), true)

	sess.Finish(42)

	require.Equal(t, 1, sess.Step)
	require.Equal(t, uint(42), sess.CompletedOrderID)
	require.Empty(t, sess.ShippingType)
	require.True(t, sess.ShippingTotal.Decimal.IsZero())
	require.Empty(t, sess.DiscountCode)
	require.False(t, sess.FreeShipping)
	require.False(t, sess.HasAddress())
}

func TestDefaultHandlersSetShippingAndTax(t *testing.T) {
	cfg := config.Default()
	cfg.Tax = config.TaxConfig{Type: "GST", Percent: "10"}
	handlers := DefaultHandlers(cfg, nil).WithDefaults()

	cart := &models.Cart{Items: []models.CartItem{{SKU: "A", UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(20)), Quantity: 5}}}
	cart.Items[0].SetQuantity(5)
	req := &Request{Key: "k", Session: &Session{}, Cart: cart}

	require.NoError(t, handlers.BillingShipping(context.Background(), req))
	require.NoError(t, handlers.Tax(context.Background(), req))
	require.Equal(t, "Flat rate shipping", req.Session.ShippingType)
	require.Equal(t, "10", req.Session.ShippingTotal.Decimal.String())
	require.Equal(t, "GST", req.Session.TaxType)
	require.Equal(t, "10", req.Session.TaxTotal.Decimal.String())

	txID, err := handlers.Payment(context.Background(), req, &models.Order{})
	require.NoError(t, err)
	require.NotEmpty(t, txID)
	require.NoError(t, handlers.Order(context.Background(), req, &models.Order{ID: 1}))
}

func TestFlatPercentTaxZeroDisables(t *testing.T) {
	handler := FlatPercentTax(config.TaxConfig{Type: "GST", Percent: "0"})
	req := &Request{Session: &Session{}, Cart: &models.Cart{}}
	require.NoError(t, handler(context.Background(), req))
	require.Empty(t, req.Session.TaxType)
}
