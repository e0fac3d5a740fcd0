package queue

import (
	"encoding/json"

	"github.com/Leclee/lecfaka/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderTimeoutCancel 超时关单任务
	TaskOrderTimeoutCancel = constants.TaskOrderTimeoutCancel
	// TaskOrderPaidNotify 支付成功通知任务
	TaskOrderPaidNotify = constants.TaskOrderPaidNotify
)

// OrderTimeoutCancelPayload 超时关单任务载荷
type OrderTimeoutCancelPayload struct {
	TradeNo string `json:"trade_no"`
}

// OrderPaidNotifyPayload 支付成功通知任务载荷
type OrderPaidNotifyPayload struct {
	TradeNo string `json:"trade_no"`
}

// NewOrderTimeoutCancelTask 创建超时关单任务
func NewOrderTimeoutCancelTask(payload OrderTimeoutCancelPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderTimeoutCancel, body), nil
}

// NewOrderPaidNotifyTask 创建支付成功通知任务
func NewOrderPaidNotifyTask(payload OrderPaidNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPaidNotify, body), nil
}
