package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/storefront-next/internal/checkout"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"

	"github.com/shopspring/decimal"
)

// CheckoutView 当前结算步骤的展示数据
type CheckoutView struct {
	Step         int                       `json:"step"`
	Steps        []checkout.Step           `json:"steps"`
	Current      checkout.Step             `json:"current"`
	CardRequired bool                      `json:"card_required"`
	Form         checkout.Form             `json:"form"`
	Errors       checkout.ValidationErrors `json:"errors,omitempty"`
	Error        string                    `json:"error,omitempty"`
	Session      *checkout.Session         `json:"session"`
	Cart         *models.Cart              `json:"cart,omitempty"`
	Completed    bool                      `json:"completed"`
	Order        *models.Order             `json:"order,omitempty"`
}

// SubmitInput 结算提交输入
type SubmitInput struct {
	Back bool
	Form checkout.Form
}

// CheckoutService 结算流程服务
type CheckoutService struct {
	cartService  *CartService
	codeService  *DiscountCodeService
	orderService *OrderService
	cfg          config.CheckoutConfig
	steps        checkout.Steps
	handlers     checkout.Handlers
	now          func() time.Time
}

// NewCheckoutService 创建结算服务
func NewCheckoutService(cartService *CartService, codeService *DiscountCodeService, orderService *OrderService, cfg config.CheckoutConfig, handlers checkout.Handlers) *CheckoutService {
	return &CheckoutService{
		cartService:  cartService,
		codeService:  codeService,
		orderService: orderService,
		cfg:          cfg,
		steps:        checkout.NewSteps(cfg),
		handlers:     handlers.WithDefaults(),
		now:          time.Now,
	}
}

// Steps 返回步骤配置
func (s *CheckoutService) Steps() checkout.Steps {
	return s.steps
}

// Get 获取当前步骤视图；首步且会话无地址时使用记住的上一笔订单地址预填
func (s *CheckoutService) Get(ctx context.Context, key string, sess *checkout.Session, rememberedKey string) (*CheckoutView, error) {
	cart, err := s.loadCart(key)
	if err != nil {
		return nil, err
	}
	sess.Step = s.steps.Clamp(sess.Step)
	form := sess.Prefill()
	if sess.Step == s.steps.First() && !sess.HasAddress() && rememberedKey != "" {
		s.prefillRemembered(&form, rememberedKey)
	}
	return s.view(sess, cart, form, nil, ""), nil
}

// Submit 提交当前步骤：返回上一步、校验并推进，最后一步完成支付与下单
func (s *CheckoutService) Submit(ctx context.Context, key string, sess *checkout.Session, input SubmitInput) (*CheckoutView, error) {
	cart, err := s.loadCart(key)
	if err != nil {
		return nil, err
	}
	step := s.steps.Clamp(sess.Step)
	defer func() {
		sess.Step = step
	}()

	if input.Back {
		if step > s.steps.First() {
			step--
		}
		sess.Step = step
		return s.view(sess, cart, sess.Prefill(), nil, ""), nil
	}

	form := input.Form
	form.Normalize()
	if errs := form.Validate(step, s.steps, s.cfg.StepsPayment, s.now()); !errs.Empty() {
		sess.Step = step
		return s.view(sess, cart, form, errs, ""), nil
	}
	req := &checkout.Request{Key: key, Session: sess, Form: &form, Cart: cart}

	if step == s.steps.First() {
		sess.ApplyForm(form)
		view, err := s.runAddressHandlers(ctx, req, step)
		if view != nil || err != nil {
			return view, err
		}
	}

	if step == s.steps.Last() {
		view, err := s.finalize(ctx, req)
		if view != nil {
			step = view.Step
		}
		return view, err
	}

	step++
	sess.Step = step
	return s.view(sess, cart, sess.Prefill(), nil, ""), nil
}

func (s *CheckoutService) runAddressHandlers(ctx context.Context, req *checkout.Request, step int) (*CheckoutView, error) {
	sess := req.Session
	sess.Step = step
	if err := s.handlers.BillingShipping(ctx, req); err != nil {
		return s.handlerFailure(req, *req.Form, err)
	}
	if err := s.handlers.Tax(ctx, req); err != nil {
		return s.handlerFailure(req, *req.Form, err)
	}
	if errs, err := s.applyDiscount(req, req.Form.DiscountCode); err != nil || !errs.Empty() {
		if err != nil {
			return nil, err
		}
		return s.view(sess, req.Cart, *req.Form, errs, ""), nil
	}
	return nil, nil
}

// ApplyDiscountCode 在购物车页应用优惠码（空字符串表示移除），校验失败返回 ErrDiscountCodeNotFound
func (s *CheckoutService) ApplyDiscountCode(key string, sess *checkout.Session, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		sess.ClearDiscount()
		return nil
	}
	cart, err := s.loadCart(key)
	if err != nil {
		return err
	}
	errs, err := s.applyDiscount(&checkout.Request{
		Key:     key,
		Session: sess,
		Form:    &checkout.Form{DiscountCode: code},
		Cart:    cart,
	}, code)
	if err != nil {
		return err
	}
	if !errs.Empty() {
		return ErrDiscountCodeNotFound
	}
	return nil
}

// applyDiscount 校验并写入优惠码；表单未填写时沿用会话中已应用的优惠码
func (s *CheckoutService) applyDiscount(req *checkout.Request, code string) (checkout.ValidationErrors, error) {
	sess := req.Session
	if code == "" {
		code = sess.DiscountCode
	}
	if code == "" {
		return nil, nil
	}
	discount, err := s.codeService.GetValid(code, req.Cart)
	if err != nil {
		if errors.Is(err, ErrDiscountCodeNotFound) {
			sess.ClearDiscount()
			errs := checkout.ValidationErrors{}
			errs.Add("discount_code", err.Error())
			return errs, nil
		}
		return nil, err
	}
	amount, err := s.codeService.CalculateForCart(req.Cart, discount)
	if err != nil {
		return nil, err
	}
	sess.SetDiscount(discount.Code, amount, discount.FreeShipping)
	if discount.FreeShipping {
		sess.SetShipping(constants.ShippingTypeFree, decimal.Zero)
	}
	return nil, nil
}

func (s *CheckoutService) finalize(ctx context.Context, req *checkout.Request) (*CheckoutView, error) {
	sess := req.Session
	// 优惠码可能在地址步骤之后失效，支付前重新校验
	if code := sess.DiscountCode; code != "" {
		errs, err := s.applyDiscount(req, code)
		if err != nil {
			return nil, err
		}
		if !errs.Empty() {
			logger.Warnw("checkout_discount_code_expired", "code", code)
			sess.Step = s.steps.First()
			return s.view(sess, req.Cart, sess.Prefill(), errs, ""), nil
		}
	}

	order, err := s.orderService.Setup(req.Key, req.Cart, sess)
	if err != nil {
		return nil, err
	}

	transactionID, err := s.handlers.Payment(ctx, req, order)
	if err != nil {
		if discardErr := s.orderService.Discard(order.ID); discardErr != nil {
			logger.Errorw("checkout_order_discard_failed", "order_id", order.ID, "error", discardErr)
		}
		var validationErrs checkout.ValidationErrors
		_, isCheckoutErr := checkout.AsCheckoutError(err)
		if !isCheckoutErr && !errors.As(err, &validationErrs) {
			logger.Errorw("checkout_payment_error", "order_id", order.ID, "error", err)
			return nil, err
		}
		logger.Warnw("checkout_payment_failed", "order_id", order.ID, "error", err)
		sess.Step = s.steps.RetryStep()
		form := *req.Form
		form.Card = checkout.CardForm{}
		if validationErrs != nil {
			return s.view(sess, req.Cart, form, validationErrs, ""), nil
		}
		return s.view(sess, req.Cart, form, nil, err.Error()), nil
	}

	completed, err := s.orderService.Complete(order.ID, transactionID)
	if err != nil {
		logger.Errorw("checkout_complete_failed",
			"order_id", order.ID,
			"transaction_id", transactionID,
			"error", err,
		)
		return nil, err
	}
	if err := s.handlers.Order(ctx, req, completed); err != nil {
		logger.Warnw("checkout_order_handler_failed", "order_id", completed.ID, "error", err)
	}
	sess.Finish(completed.ID)
	return &CheckoutView{
		Step:      sess.Step,
		Steps:     s.steps.All(),
		Session:   sess,
		Completed: true,
		Order:     completed,
	}, nil
}

func (s *CheckoutService) handlerFailure(req *checkout.Request, form checkout.Form, err error) (*CheckoutView, error) {
	if checkoutErr, ok := checkout.AsCheckoutError(err); ok {
		return s.view(req.Session, req.Cart, form, nil, checkoutErr.Message), nil
	}
	var validationErrs checkout.ValidationErrors
	if errors.As(err, &validationErrs) {
		return s.view(req.Session, req.Cart, form, validationErrs, ""), nil
	}
	return nil, err
}

func (s *CheckoutService) loadCart(key string) (*models.Cart, error) {
	cart, err := s.cartService.Lookup(key)
	if err != nil {
		return nil, err
	}
	if !cart.HasItems() {
		return nil, ErrCartEmpty
	}
	missing, err := s.cartService.OutOfStockItems(cart)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &CartItemError{ItemID: missing[0].ID, SKU: missing[0].SKU, Err: ErrCartOutOfStock}
	}
	return cart, nil
}

func (s *CheckoutService) prefillRemembered(form *checkout.Form, rememberedKey string) {
	previous, err := s.orderService.GetByKey(rememberedKey)
	if err != nil {
		if !IsOrderNotFound(err) {
			logger.Warnw("checkout_remembered_order_lookup_failed", "error", err)
		}
		return
	}
	form.Billing = previous.Billing
	form.Shipping = previous.Shipping
	form.SameBillingShipping = previous.Billing == previous.Shipping
}

func (s *CheckoutService) view(sess *checkout.Session, cart *models.Cart, form checkout.Form, errs checkout.ValidationErrors, message string) *CheckoutView {
	step := s.steps.Clamp(sess.Step)
	current, _ := s.steps.Get(step)
	form.Card = checkout.CardForm{}
	return &CheckoutView{
		Step:         step,
		Steps:        s.steps.All(),
		Current:      current,
		CardRequired: checkout.CardRequired(step, s.steps, s.cfg.StepsPayment),
		Form:         form,
		Errors:       errs,
		Error:        message,
		Session:      sess,
		Cart:         cart,
	}
}
