package queue

import (
	"encoding/json"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderCompleted 订单完成后处理任务
	TaskOrderCompleted = constants.TaskOrderCompleted
)

// OrderCompletedPayload 订单完成任务载荷
type OrderCompletedPayload struct {
	OrderID       uint   `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	Total         string `json:"total"`
	Email         string `json:"email"`
}

// NewOrderCompletedTask 创建订单完成任务
func NewOrderCompletedTask(payload OrderCompletedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCompleted, body), nil
}

// ParseOrderCompletedPayload 解析订单完成任务载荷
func ParseOrderCompletedPayload(body []byte) (OrderCompletedPayload, error) {
	var payload OrderCompletedPayload
	err := json.Unmarshal(body, &payload)
	return payload, err
}
