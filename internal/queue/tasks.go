package queue

import (
	"encoding/json"

	"github.com/paygate-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPaymentCompletedNotify buyer notification after a completed payment
	TaskPaymentCompletedNotify = constants.TaskPaymentCompletedNotify
	// TaskRefundRequestedAlert ops alert after a refund request is filed
	TaskRefundRequestedAlert = constants.TaskRefundRequestedAlert
)

// PaymentCompletedPayload completed payment task payload
type PaymentCompletedPayload struct {
	PaymentID    string `json:"payment_id"`
	OrderID      string `json:"order_id"`
	UserID       uint   `json:"user_id"`
	Method       string `json:"method"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	GatewayTxnID string `json:"gateway_txn_id"`
}

// RefundRequestedPayload refund request task payload
type RefundRequestedPayload struct {
	RefundID  string `json:"refund_id"`
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Amount    string `json:"amount"`
	Reason    string `json:"reason"`
}

// NewPaymentCompletedTask creates the completed payment notification task
func NewPaymentCompletedTask(payload PaymentCompletedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentCompletedNotify, body), nil
}

// NewRefundRequestedTask creates the refund requested alert task
func NewRefundRequestedTask(payload RefundRequestedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefundRequestedAlert, body), nil
}
