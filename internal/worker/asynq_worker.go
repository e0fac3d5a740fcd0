package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/Leclee/lecfaka/internal/logger"
	"github.com/Leclee/lecfaka/internal/provider"
	"github.com/Leclee/lecfaka/internal/queue"
	"github.com/Leclee/lecfaka/internal/service"

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
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
	mux.HandleFunc(queue.TaskOrderPaidNotify, c.handleOrderPaidNotify)
}

func (c *Consumer) handleOrderTimeoutCancel(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.TradeNo == "" {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload")
		return nil
	}
	if c.OrderService == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "trade_no", payload.TradeNo)
		return nil
	}
	if err := c.OrderService.CancelExpiredOrder(payload.TradeNo); err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			logger.Debugw("worker_order_timeout_cancel_skip_order_not_found", "trade_no", payload.TradeNo)
			return nil
		}
		logger.Warnw("worker_order_timeout_cancel_failed", "trade_no", payload.TradeNo, "error", err)
		return err
	}
	return nil
}

// handleOrderPaidNotify 支付成功后的异步通知位。
// 当前只落结构化日志，外部通知渠道接入时在这里扩展。
func (c *Consumer) handleOrderPaidNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderPaidNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_paid_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.TradeNo == "" {
		return nil
	}
	order, err := c.OrderRepo.GetByTradeNo(payload.TradeNo)
	if err != nil {
		logger.Warnw("worker_order_paid_notify_fetch_failed", "trade_no", payload.TradeNo, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_paid_notify_skip_order_not_found", "trade_no", payload.TradeNo)
		return nil
	}
	logger.Infow("order_paid_notified",
		"trade_no", order.TradeNo,
		"amount", order.Amount.String(),
		"delivery_status", order.DeliveryStatus,
	)
	return nil
}
