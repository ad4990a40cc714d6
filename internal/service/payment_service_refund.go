package service

import (
	"strings"
	"time"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/queue"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefundRequestInput refund request against a completed payment
type RefundRequestInput struct {
	PaymentID   string
	Amount      models.Money
	Reason      string
	RequestedBy uint
}

// RefundResult refund request outcome
type RefundResult struct {
	IsSuccess bool         `json:"is_success"`
	RefundID  string       `json:"refund_id,omitempty"`
	PaymentID string       `json:"payment_id"`
	Status    string       `json:"status,omitempty"`
	Amount    models.Money `json:"amount"`
	Message   string       `json:"message,omitempty"`
}

// RequestRefund files a refund request. The sum of all non-rejected refunds
// for a payment can never exceed the captured amount; the cap is checked
// under a row lock on the attempt.
func (s *PaymentService) RequestRefund(input RefundRequestInput) *RefundResult {
	log := paymentLogger(
		"payment_id", input.PaymentID,
		"refund_amount", input.Amount.String(),
		"requested_by", input.RequestedBy,
	)

	failure := func(message string) *RefundResult {
		return &RefundResult{
			IsSuccess: false,
			PaymentID: input.PaymentID,
			Amount:    input.Amount,
			Message:   message,
		}
	}

	if strings.TrimSpace(input.PaymentID) == "" {
		log.Warnw("refund_rejected_missing_payment")
		return failure("payment id is required")
	}
	if !input.Amount.IsPositive() {
		log.Warnw("refund_rejected_invalid_amount")
		return failure("refund amount must be positive")
	}

	var refund *models.RefundRequest
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		attemptRepo := s.attemptRepo.WithTx(tx)
		refundRepo := s.refundRepo.WithTx(tx)

		attempt, err := attemptRepo.GetByPaymentIDForUpdate(input.PaymentID)
		if err != nil {
			return ErrRefundCreateFailed
		}
		if attempt == nil {
			return ErrPaymentNotFound
		}
		// another user's payment is reported as not found, not as forbidden
		if attempt.UserID != input.RequestedBy {
			return ErrPaymentNotFound
		}
		if attempt.Status != constants.PaymentStatusCompleted {
			return ErrPaymentNotCompleted
		}

		refunded, err := refundRepo.SumRefundedByPayment(input.PaymentID)
		if err != nil {
			return ErrRefundCreateFailed
		}
		if refunded.Add(input.Amount.Decimal).GreaterThan(attempt.Amount.Decimal) {
			return ErrRefundExceedsCap
		}

		refund = &models.RefundRequest{
			RefundID:    uuid.NewString(),
			PaymentID:   attempt.PaymentID,
			OrderID:     attempt.OrderID,
			Amount:      input.Amount,
			Reason:      strings.TrimSpace(input.Reason),
			Status:      constants.RefundStatusPending,
			RequestedBy: input.RequestedBy,
			CreatedAt:   time.Now(),
		}
		if err := refundRepo.Create(refund); err != nil {
			return ErrRefundCreateFailed
		}
		return nil
	})
	if err != nil {
		switch err {
		case ErrPaymentNotFound:
			log.Warnw("refund_rejected_payment_not_found")
			return failure("payment not found")
		case ErrPaymentNotCompleted:
			log.Warnw("refund_rejected_payment_not_completed")
			return failure("only completed payments can be refunded")
		case ErrRefundExceedsCap:
			log.Warnw("refund_rejected_exceeds_cap")
			return failure("refund exceeds the refundable amount")
		default:
			log.Errorw("refund_create_failed", "error", err)
			return failure("refund request could not be created")
		}
	}

	log.Infow("refund_requested", "refund_id", refund.RefundID)
	s.enqueueRefundRequestedAsync(refund)

	return &RefundResult{
		IsSuccess: true,
		RefundID:  refund.RefundID,
		PaymentID: refund.PaymentID,
		Status:    refund.Status,
		Amount:    refund.Amount,
		Message:   "refund request recorded, awaiting review",
	}
}

func (s *PaymentService) enqueueRefundRequestedAsync(refund *models.RefundRequest) {
	if s.queueClient == nil {
		return
	}
	err := s.queueClient.EnqueueRefundRequested(queue.RefundRequestedPayload{
		RefundID:  refund.RefundID,
		PaymentID: refund.PaymentID,
		OrderID:   refund.OrderID,
		Amount:    refund.Amount.String(),
		Reason:    refund.Reason,
	})
	if err != nil {
		paymentLogger("refund_id", refund.RefundID).Warnw("refund_enqueue_alert_failed", "error", err)
	}
}
