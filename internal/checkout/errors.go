package checkout

import (
	"errors"
	"sort"
	"strings"
)

// CheckoutError 外部处理器抛出的业务错误，展示在当前步骤且不推进步骤
type CheckoutError struct {
	Message string
}

// NewCheckoutError 创建结算错误
func NewCheckoutError(message string) *CheckoutError {
	return &CheckoutError{Message: message}
}

func (e *CheckoutError) Error() string {
	return e.Message
}

// AsCheckoutError 判断是否为结算错误
func AsCheckoutError(err error) (*CheckoutError, bool) {
	var checkoutErr *CheckoutError
	if errors.As(err, &checkoutErr) {
		return checkoutErr, true
	}
	return nil, false
}

// ValidationErrors 字段级校验错误（字段名 -> 提示）
type ValidationErrors map[string]string

// Add 添加字段错误（同一字段保留第一条）
func (v ValidationErrors) Add(field, message string) {
	if _, ok := v[field]; ok {
		return
	}
	v[field] = message
}

// Empty 是否无错误
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+v[field])
	}
	return strings.Join(parts, "; ")
}
