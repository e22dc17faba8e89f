package service

import (
	"context"
	"errors"
	"testing"

	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/models"

	"github.com/stretchr/testify/require"
)

var fullCheckout = config.CheckoutConfig{StepsSplit: true, StepsPayment: true, StepsConfirmation: true}

func addressForm() checkout.Form {
	return checkout.Form{Billing: testAddress(), SameBillingShipping: true}
}

// walkToLastStep 提交地址与支付步骤，停在最后一步
func walkToLastStep(t *testing.T, svc *CheckoutService, key string, sess *checkout.Session, form checkout.Form) {
	t.Helper()
	view, err := svc.Submit(context.Background(), key, sess, SubmitInput{Form: form})
	require.NoError(t, err)
	require.Empty(t, view.Errors)
	require.Empty(t, view.Error)
	require.Equal(t, 2, sess.Step)

	view, err = svc.Submit(context.Background(), key, sess, SubmitInput{Form: checkout.Form{Card: testCard()}})
	require.NoError(t, err)
	require.Empty(t, view.Errors)
	require.Equal(t, 3, sess.Step)
}

func TestCheckoutCompletesOrder(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "kettle", 20, intPtr(5))
	_, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 2})
	require.NoError(t, err)

	var handled *models.Order
	handlers := checkout.DefaultHandlers(env.cfg, nil)
	handlers.Order = func(_ context.Context, _ *checkout.Request, order *models.Order) error {
		handled = order
		return nil
	}
	svc := env.checkoutService(fullCheckout, handlers)
	sess := &checkout.Session{}

	view, err := svc.Get(context.Background(), "shopper", sess, "")
	require.NoError(t, err)
	require.Equal(t, 1, view.Step)
	require.False(t, view.CardRequired)

	walkToLastStep(t, svc, "shopper", sess, addressForm())
	require.Equal(t, "Flat rate shipping", sess.ShippingType)

	view, err = svc.Submit(context.Background(), "shopper", sess, SubmitInput{Form: checkout.Form{Card: testCard()}})
	require.NoError(t, err)
	require.True(t, view.Completed)
	require.NotNil(t, view.Order)
	require.Equal(t, "50", view.Order.Total.Decimal.String())
	require.NotEmpty(t, view.Order.TransactionID)
	require.NotNil(t, handled)
	require.Equal(t, view.Order.ID, handled.ID)

	require.Equal(t, 1, sess.Step)
	require.Equal(t, view.Order.ID, sess.CompletedOrderID)
	require.Empty(t, sess.ShippingType)

	require.Equal(t, 3, *env.reloadVariation(t, variation.ID).NumInStock)
	cart, err := env.cartRepo.GetByKey("shopper")
	require.NoError(t, err)
	require.Nil(t, cart)
	reloaded, err := env.productRepo.GetByID(product.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.TotalPurchase)

	latest, err := env.orders.GetByKey("shopper")
	require.NoError(t, err)
	require.Equal(t, view.Order.ID, latest.ID)
}

func TestCheckoutPaymentErrorDiscardsOrder(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "toaster", 35, intPtr(5))
	_, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 1})
	require.NoError(t, err)

	handlers := checkout.DefaultHandlers(env.cfg, nil)
	handlers.Payment = func(context.Context, *checkout.Request, *models.Order) (string, error) {
		return "", checkout.NewCheckoutError("Card declined")
	}
	svc := env.checkoutService(fullCheckout, handlers)
	sess := &checkout.Session{}
	walkToLastStep(t, svc, "shopper", sess, addressForm())

	view, err := svc.Submit(context.Background(), "shopper", sess, SubmitInput{Form: checkout.Form{Card: testCard()}})
	require.NoError(t, err)
	require.False(t, view.Completed)
	require.Equal(t, "Card declined", view.Error)
	require.Equal(t, 2, sess.Step)
	require.Empty(t, view.Form.Card.Number)

	require.Equal(t, int64(0), env.countOrders(t))
	require.Equal(t, 5, *env.reloadVariation(t, variation.ID).NumInStock)
	cart, err := env.cartRepo.GetByKey("shopper")
	require.NoError(t, err)
	require.NotNil(t, cart)
	require.Len(t, cart.Items, 1)
	require.Equal(t, 1, cart.Items[0].Quantity)
}

func TestCheckoutPaymentErrorStaysOnLastWithoutSeparateStep(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "blender", 45, nil)
	_, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 1})
	require.NoError(t, err)

	handlers := checkout.DefaultHandlers(env.cfg, nil)
	handlers.Payment = func(context.Context, *checkout.Request, *models.Order) (string, error) {
		return "", checkout.NewCheckoutError("Gateway unavailable")
	}
	svc := env.checkoutService(config.CheckoutConfig{StepsSplit: true, StepsPayment: true, StepsConfirmation: false}, handlers)
	sess := &checkout.Session{}

	_, err = svc.Submit(context.Background(), "shopper", sess, SubmitInput{Form: addressForm()})
	require.NoError(t, err)
	require.Equal(t, 2, sess.Step)

	view, err := svc.Submit(context.Background(), "shopper", sess, SubmitInput{Form: checkout.Form{Card: testCard()}})
	require.NoError(t, err)
	require.Equal(t, "Gateway unavailable", view.Error)
	require.Equal(t, 2, sess.Step)
	require.Equal(t, int64(0), env.countOrders(t))
}

func TestCheckoutFatalPaymentErrorPropagates(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "grill", 90, intPtr(2))
	_, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 1})
	require.NoError(t, err)

	boom := errors.New("gateway exploded")
	handlers := checkout.DefaultHandlers(env.cfg, nil)
	handlers.Payment = func(context.Context, *checkout.Request, *models.Order) (string, error) {
		return "", boom
	}
	svc := env.checkoutService(fullCheckout, handlers)
	sess := &checkout.Session{}
	walkToLastStep(t, svc, "shopper", sess, addressForm())

	_, err = svc.Submit(context.Background(), "shopper", sess, SubmitInput{Form: checkout.Form{Card: testCard()}})
	require.ErrorIs(t, err, boom)
	require.Equal(t, int64(0), env.countOrders(t))
	require.Equal(t, 2, *env.reloadVariation(t, variation.ID).NumInStock)
}

func TestCheckoutValidationAndBack(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "pan", 15, nil)
	_, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 1})
	require.NoError(t, err)
	svc := env.checkoutService(fullCheckout, checkout.DefaultHandlers(env.cfg, nil))
	sess := &checkout.Session{}

	view, err := svc.Submit(context.Background(), "shopper", sess, SubmitInput{Form: checkout.Form{SameBillingShipping: true}})
	require.NoError(t, err)
	require.Contains(t, view.Errors, "billing.first_name")
	require.Equal(t, 1, sess.Step)

	_, err = svc.Submit(context.Background(), "shopper", sess, SubmitInput{Form: addressForm()})
	require.NoError(t, err)
	require.Equal(t, 2, sess.Step)

	view, err = svc.Submit(context.Background(), "shopper", sess, SubmitInput{Back: true})
	require.NoError(t, err)
	require.Equal(t, 1, sess.Step)
	require.Equal(t, testAddress(), view.Form.Billing)

	view, err = svc.Submit(context.Background(), "shopper", sess, SubmitInput{Back: true})
	require.NoError(t, err)
	require.Equal(t, 1, view.Step)
}

func TestCheckoutInvalidDiscountCodeKeepsStep(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "pot", 15, nil)
	_, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 1})
	require.NoError(t, err)
	svc := env.checkoutService(fullCheckout, checkout.DefaultHandlers(env.cfg, nil))
	sess := &checkout.Session{}

	form := addressForm()
	form.DiscountCode = "NOPE"
	view, err := svc.Submit(context.Background(), "shopper", sess, SubmitInput{Form: form})
	require.NoError(t, err)
	require.Contains(t, view.Errors, "discount_code")
	require.Equal(t, 1, sess.Step)
}

func TestCheckoutFreeShippingCode(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "bowl", 40, nil)
	_, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = env.codes.Save(0, DiscountCodeInput{Code: "SHIPFREE", Active: true, Deduct: decimalPtr("5"), FreeShipping: true})
	require.NoError(t, err)

	svc := env.checkoutService(config.CheckoutConfig{StepsSplit: true, StepsPayment: false, StepsConfirmation: true}, checkout.DefaultHandlers(env.cfg, nil))
	sess := &checkout.Session{}
	form := addressForm()
	form.DiscountCode = "shipfree"
	_, err = svc.Submit(context.Background(), "shopper", sess, SubmitInput{Form: form})
	require.NoError(t, err)
	require.Equal(t, 2, sess.Step)
	require.Equal(t, "Free shipping", sess.ShippingType)
	require.True(t, sess.ShippingTotal.Decimal.IsZero())
	require.Equal(t, "5", sess.DiscountTotal.Decimal.String())

	view, err := svc.Submit(context.Background(), "shopper", sess, SubmitInput{})
	require.NoError(t, err)
	require.True(t, view.Completed)
	require.Equal(t, "35", view.Order.Total.Decimal.String())
}

func TestCheckoutRefusesEmptyCart(t *testing.T) {
	env := newServiceTestEnv(t)
	svc := env.checkoutService(fullCheckout, checkout.Handlers{})
	_, err := svc.Get(context.Background(), "nobody", &checkout.Session{}, "")
	require.ErrorIs(t, err, ErrCartEmpty)
}

func TestCheckoutPrefillsRememberedAddress(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "spoon", 3, nil)
	svc := env.checkoutService(config.CheckoutConfig{StepsSplit: false, StepsPayment: false, StepsConfirmation: false}, checkout.DefaultHandlers(env.cfg, nil))

	_, err := env.carts.AddItem("first-visit", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 1})
	require.NoError(t, err)
	view, err := svc.Submit(context.Background(), "first-visit", &checkout.Session{}, SubmitInput{Form: addressForm()})
	require.NoError(t, err)
	require.True(t, view.Completed)

	_, err = env.carts.AddItem("second-visit", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 1})
	require.NoError(t, err)
	view, err = svc.Get(context.Background(), "second-visit", &checkout.Session{}, "first-visit")
	require.NoError(t, err)
	require.Equal(t, testAddress(), view.Form.Billing)
	require.True(t, view.Form.SameBillingShipping)
}

func TestCheckoutRevalidatesExhaustedCodeBeforePayment(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "lamp", 30, intPtr(10))
	_, err := env.codes.Save(0, DiscountCodeInput{Code: "ONCE", Active: true, Deduct: decimalPtr("5"), UsesRemaining: intPtr(1)})
	require.NoError(t, err)

	charges := 0
	handlers := checkout.DefaultHandlers(env.cfg, nil)
	pay := handlers.Payment
	handlers.Payment = func(ctx context.Context, req *checkout.Request, order *models.Order) (string, error) {
		charges++
		return pay(ctx, req, order)
	}
	svc := env.checkoutService(fullCheckout, handlers)

	sessions := map[string]*checkout.Session{}
	for _, key := range []string{"first", "second"} {
		_, err := env.carts.AddItem(key, AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 1})
		require.NoError(t, err)
		form := addressForm()
		form.DiscountCode = "ONCE"
		sessions[key] = &checkout.Session{}
		walkToLastStep(t, svc, key, sessions[key], form)
		require.Equal(t, "ONCE", sessions[key].DiscountCode)
	}

	view, err := svc.Submit(context.Background(), "first", sessions["first"], SubmitInput{Form: checkout.Form{Card: testCard()}})
	require.NoError(t, err)
	require.True(t, view.Completed)

	sess := sessions["second"]
	view, err = svc.Submit(context.Background(), "second", sess, SubmitInput{Form: checkout.Form{Card: testCard()}})
	require.NoError(t, err)
	require.False(t, view.Completed)
	require.Contains(t, view.Errors, "discount_code")
	require.Equal(t, 1, sess.Step)
	require.Empty(t, sess.DiscountCode)
	require.True(t, sess.DiscountTotal.Decimal.IsZero())

	require.Equal(t, 1, charges)
	require.Equal(t, int64(1), env.countOrders(t))
	require.Equal(t, 9, *env.reloadVariation(t, variation.ID).NumInStock)
}

func TestCheckoutKeepsCartPageDiscountWhenFieldEmpty(t *testing.T) {
	env := newServiceTestEnv(t)
	product, variation := env.createStockedProduct(t, "vase", 20, nil)
	_, err := env.carts.AddItem("shopper", AddItemInput{ProductID: product.ID, VariationID: variation.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = env.codes.Save(0, DiscountCodeInput{Code: "TENOFF", Active: true, Percent: decimalPtr("10")})
	require.NoError(t, err)

	svc := env.checkoutService(fullCheckout, checkout.DefaultHandlers(env.cfg, nil))
	sess := &checkout.Session{}
	require.NoError(t, svc.ApplyDiscountCode("shopper", sess, "tenoff"))
	require.Equal(t, "TENOFF", sess.DiscountCode)

	_, err = svc.Submit(context.Background(), "shopper", sess, SubmitInput{Form: addressForm()})
	require.NoError(t, err)
	require.Equal(t, 2, sess.Step)
	require.Equal(t, "TENOFF", sess.DiscountCode)
	require.Equal(t, "4", sess.DiscountTotal.Decimal.String())

	require.NoError(t, svc.ApplyDiscountCode("shopper", sess, " "))
	require.Empty(t, sess.DiscountCode)
}
