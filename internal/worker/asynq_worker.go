package worker

import (
	"context"
	"encoding/json"

	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/provider"
	"github.com/paygate-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer async task consumer
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register registers the task handlers
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPaymentCompletedNotify, c.handlePaymentCompleted)
	mux.HandleFunc(queue.TaskRefundRequestedAlert, c.handleRefundRequested)
}

func (c *Consumer) handlePaymentCompleted(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_completed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PaymentCompletedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_completed_unmarshal_failed", "error", err)
		return err
	}
	if payload.PaymentID == "" {
		logger.Debugw("worker_payment_completed_skip_invalid_payload")
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_payment_completed_skip_notification_service_nil", "payment_id", payload.PaymentID)
		return nil
	}
	if err := c.NotificationService.NotifyPaymentCompleted(payload); err != nil {
		logger.Warnw("worker_payment_completed_notify_failed",
			"payment_id", payload.PaymentID,
			"order_id", payload.OrderID,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleRefundRequested(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_refund_requested_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.RefundRequestedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_refund_requested_unmarshal_failed", "error", err)
		return err
	}
	if payload.RefundID == "" {
		logger.Debugw("worker_refund_requested_skip_invalid_payload")
		return nil
	}
	if c.NotificationService == nil {
		logger.Warnw("worker_refund_requested_skip_notification_service_nil", "refund_id", payload.RefundID)
		return nil
	}
	if err := c.NotificationService.AlertRefundRequested(payload); err != nil {
		logger.Warnw("worker_refund_requested_alert_failed",
			"refund_id", payload.RefundID,
			"payment_id", payload.PaymentID,
			"error", err,
		)
		return err
	}
	return nil
}
