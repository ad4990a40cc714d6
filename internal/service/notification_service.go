package service

import (
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/queue"
	"github.com/paygate-next/internal/repository"
)

// NotificationService delivers post-payment notifications. Delivery channels
// (mail, chat ops) live outside this repo; this service resolves the payload
// against current state and emits the structured event downstream systems
// consume from the log pipeline.
type NotificationService struct {
	attemptRepo repository.PaymentAttemptRepository
}

// NewNotificationService creates the notification service
func NewNotificationService(attemptRepo repository.PaymentAttemptRepository) *NotificationService {
	return &NotificationService{attemptRepo: attemptRepo}
}

// NotifyPaymentCompleted emits the buyer-facing completed payment event
func (s *NotificationService) NotifyPaymentCompleted(payload queue.PaymentCompletedPayload) error {
	attempt, err := s.attemptRepo.GetByPaymentID(payload.PaymentID)
	if err != nil {
		return err
	}
	if attempt == nil {
		logger.Warnw("notify_payment_completed_attempt_missing", "payment_id", payload.PaymentID)
		return nil
	}
	logger.Infow("notify_payment_completed",
		"payment_id", attempt.PaymentID,
		"order_id", attempt.OrderID,
		"user_id", attempt.UserID,
		"method", attempt.PaymentMethod,
		"amount", attempt.Amount.String(),
		"currency", attempt.Currency,
		"gateway_txn_id", attempt.GatewayTxnID,
	)
	return nil
}

// AlertRefundRequested emits the ops-facing refund request alert
func (s *NotificationService) AlertRefundRequested(payload queue.RefundRequestedPayload) error {
	logger.Infow("alert_refund_requested",
		"refund_id", payload.RefundID,
		"payment_id", payload.PaymentID,
		"order_id", payload.OrderID,
		"amount", payload.Amount,
		"reason", payload.Reason,
	)
	return nil
}
