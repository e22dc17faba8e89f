package checkout

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/storefront-next/internal/models"

	"github.com/go-playground/validator/v10"
)

// CardForm 卡信息（仅用于当次请求，不写入会话）
type CardForm struct {
	Name        string `json:"card_name" validate:"required,max=100"`
	Type        string `json:"card_type" validate:"required,oneof=Visa Mastercard Diners Amex"`
	Number      string `json:"card_number" validate:"required,numeric,min=12,max=19"`
	ExpiryMonth int    `json:"card_expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"card_expiry_year" validate:"required,min=2000,max=2100"`
	CCV         string `json:"card_ccv" validate:"required,numeric,min=3,max=4"`
}

// Form 结算表单
type Form struct {
	Billing                models.Address `json:"billing"`
	Shipping               models.Address `json:"shipping"`
	SameBillingShipping    bool           `json:"same_billing_shipping"`
	AdditionalInstructions string         `json:"additional_instructions"`
	DiscountCode           string         `json:"discount_code"`
	Remember               bool           `json:"remember"`
	Card                   CardForm       `json:"card"`
}

const maxInstructionsLength = 2000

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func formValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Normalize 勾选“收货地址同账单地址”时复制账单地址
func (f *Form) Normalize() {
	f.DiscountCode = strings.TrimSpace(f.DiscountCode)
	if f.SameBillingShipping {
		f.Shipping = f.Billing
	}
}

// CardRequired 当前步骤是否需要卡信息
func CardRequired(step int, steps Steps, paymentEnabled bool) bool {
	if !paymentEnabled {
		return false
	}
	return step == steps.Payment() || step == steps.Last()
}

// Validate 只校验当前步骤对应的字段
func (f *Form) Validate(step int, steps Steps, paymentEnabled bool, now time.Time) ValidationErrors {
	errs := ValidationErrors{}
	if step == steps.First() {
		collectFieldErrors(errs, "billing", formValidator().Struct(f.Billing))
		if strings.TrimSpace(f.Billing.Email) == "" {
			errs.Add("billing.email", messageFor("required"))
		}
		if !f.SameBillingShipping {
			collectFieldErrors(errs, "shipping", formValidator().Struct(f.Shipping))
		}
		if len(f.AdditionalInstructions) > maxInstructionsLength {
			errs.Add("additional_instructions", messageFor("max"))
		}
	}
	if CardRequired(step, steps, paymentEnabled) {
		collectFieldErrors(errs, "card", formValidator().Struct(f.Card))
		if _, ok := errs["card.card_expiry_year"]; !ok && f.Card.ExpiryYear > 0 && f.Card.ExpiryMonth > 0 {
			if cardExpired(f.Card.ExpiryYear, f.Card.ExpiryMonth, now) {
				errs.Add("card.card_expiry_year", "A valid expiry date is required.")
			}
		}
	}
	return errs
}

func cardExpired(year, month int, now time.Time) bool {
	// 卡在到期月份的最后一天之后失效
	expiry := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	return !now.Before(expiry)
}

func collectFieldErrors(errs ValidationErrors, prefix string, err error) {
	if err == nil {
		return
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		errs.Add(prefix, err.Error())
		return
	}
	for _, fieldErr := range fieldErrors {
		errs.Add(prefix+"."+fieldErr.Field(), messageFor(fieldErr.Tag()))
	}
}

func messageFor(tag string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "numeric":
		return "Enter digits only."
	case "oneof":
		return "Select a valid choice."
	case "max":
		return "Ensure this value is not too long."
	case "min":
		return "Ensure this value is not too short."
	default:
		return "Enter a valid value."
	}
}
