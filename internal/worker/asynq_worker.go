package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/provider"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderCompleted, c.handleOrderCompleted)
}

func (c *Consumer) handleOrderCompleted(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_completed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseOrderCompletedPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_order_completed_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_completed_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderService.GetByID(payload.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Debugw("worker_order_completed_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_order_completed_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if !order.IsCompleted() {
		logger.Warnw("worker_order_completed_skip_incomplete", "order_id", order.ID)
		return nil
	}
	if payload.Total != "" && payload.Total != order.Total.String() {
		logger.Warnw("worker_order_completed_total_mismatch",
			"order_id", order.ID,
			"payload_total", payload.Total,
			"order_total", order.Total.String(),
		)
	}
	logger.Infow("order_completed_task_processed",
		"order_id", order.ID,
		"transaction_id", order.TransactionID,
		"email", strings.TrimSpace(order.Billing.Email),
		"status", c.Config.Shop.OrderStatusLabel(order.Status),
		"summary", buildOrderSummary(order),
	)
	return nil
}

// buildOrderSummary 生成订单摘要文本（每行一个订单项，最后一行为合计）
func buildOrderSummary(order *models.Order) string {
	if order == nil {
		return ""
	}
	lines := make([]string, 0, len(order.Items)+1)
	for _, item := range order.Items {
		description := strings.TrimSpace(item.Description)
		if description == "" {
			description = item.SKU
		}
		lines = append(lines, fmt.Sprintf("%s x%d = %s", description, item.Quantity, item.TotalPrice.StringFixed(2)))
	}
	lines = append(lines, fmt.Sprintf("total %s", order.Total.StringFixed(2)))
	return strings.Join(lines, "\n")
}
