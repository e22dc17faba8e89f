package checkout

import (
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"
)

// Step 结算步骤
type Step struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

// Steps 由配置决定的结算步骤序列（位置从 1 开始）
type Steps struct {
	list    []Step
	payment int
}

// NewSteps 根据配置构建步骤：地址步骤始终存在；拆分且启用支付时有独立支付步骤；启用确认时追加确认步骤
func NewSteps(cfg config.CheckoutConfig) Steps {
	title := constants.CheckoutTitleDetails
	if cfg.StepsSplit {
		title = constants.CheckoutTitleAddress
	}
	steps := Steps{list: []Step{{Kind: constants.CheckoutStepAddress, Title: title}}}
	steps.payment = steps.First()
	if cfg.StepsSplit && cfg.StepsPayment {
		steps.list = append(steps.list, Step{Kind: constants.CheckoutStepPayment, Title: constants.CheckoutTitlePayment})
		steps.payment = len(steps.list)
	}
	if cfg.StepsConfirmation {
		steps.list = append(steps.list, Step{Kind: constants.CheckoutStepConfirmation, Title: constants.CheckoutTitleConfirmation})
	}
	return steps
}

// All 返回全部步骤
func (s Steps) All() []Step {
	out := make([]Step, len(s.list))
	copy(out, s.list)
	return out
}

// First 第一步
func (s Steps) First() int {
	return 1
}

// Payment 填写支付信息的步骤（无独立支付步骤时等于第一步）
func (s Steps) Payment() int {
	return s.payment
}

// Last 最后一步
func (s Steps) Last() int {
	return len(s.list)
}

// Get 获取指定位置的步骤
func (s Steps) Get(position int) (Step, bool) {
	if position < s.First() || position > s.Last() {
		return Step{}, false
	}
	return s.list[position-1], true
}

// Clamp 将步骤限制在有效范围内
func (s Steps) Clamp(position int) int {
	if position < s.First() {
		return s.First()
	}
	if position > s.Last() {
		return s.Last()
	}
	return position
}

// RetryStep 支付失败后回到的步骤：支付步骤在最后一步之前时回到支付步骤，否则停留在最后一步
func (s Steps) RetryStep() int {
	if s.Payment() < s.Last() {
		return s.Payment()
	}
	return s.Last()
}
