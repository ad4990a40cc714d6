package service

import (
	"context"
	"fmt"
	"time"

	"github.com/paygate-next/internal/cache"
	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/models"

	"gorm.io/gorm"
)

// CallbackResult callback processing outcome
type CallbackResult struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandleCallback authenticates a gateway callback and applies its outcome to
// the attempt. Repeat deliveries of the same outcome are no-ops; a callback
// that contradicts a terminal state is logged and ignored.
func (s *PaymentService) HandleCallback(ctx context.Context, method string, params map[string]string) (*CallbackResult, error) {
	log := paymentLogger("method", method)

	adapter, ok := s.registry.Resolve(method)
	if !ok {
		log.Warnw("payment_callback_unknown_method")
		return nil, ErrPaymentMethodUnknown
	}

	notice, err := adapter.VerifyCallback(params)
	if err != nil {
		// treated as a potential forgery attempt, attempt state untouched
		log.Warnw("payment_callback_signature_rejected", "error", err)
		return nil, ErrCallbackSignature
	}
	if notice.PaymentID == "" {
		log.Warnw("payment_callback_missing_reference")
		return nil, ErrCallbackInvalid
	}
	log = log.With(
		"payment_id", notice.PaymentID,
		"gateway_txn_id", notice.GatewayTxnID,
		"response_code", notice.ResponseCode,
		"succeeded", notice.Succeeded,
	)
	log.Infow("payment_callback_received")

	fingerprint := fmt.Sprintf("%s:%s:%s", notice.PaymentID, notice.GatewayTxnID, notice.ResponseCode)
	seen, err := cache.CallbackSeen(ctx, adapter.Method(), fingerprint)
	if err != nil {
		// the row-locked state machine below still absorbs repeats
		log.Warnw("payment_callback_replay_guard_failed", "error", err)
		seen = false
	}
	if seen {
		attempt, err := s.attemptRepo.GetByPaymentID(notice.PaymentID)
		if err != nil {
			return nil, ErrPaymentUpdateFailed
		}
		if attempt == nil {
			return nil, ErrPaymentNotFound
		}
		log.Infow("payment_callback_replay_ignored")
		return &CallbackResult{
			PaymentID: attempt.PaymentID,
			OrderID:   attempt.OrderID,
			Status:    attempt.Status,
			Duplicate: true,
		}, nil
	}

	targetStatus := constants.PaymentStatusFailed
	if notice.Succeeded {
		targetStatus = constants.PaymentStatusCompleted
	} else if notice.Cancelled {
		targetStatus = constants.PaymentStatusCancelled
	}

	var result *CallbackResult
	var completedNow *models.PaymentAttempt
	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		attemptRepo := s.attemptRepo.WithTx(tx)
		attempt, err := attemptRepo.GetByPaymentIDForUpdate(notice.PaymentID)
		if err != nil {
			return ErrPaymentUpdateFailed
		}
		if attempt == nil {
			return ErrPaymentNotFound
		}

		if attempt.IsTerminal() {
			if attempt.Status != targetStatus {
				log.Warnw("payment_callback_conflicting_terminal",
					"current_status", attempt.Status,
					"callback_status", targetStatus,
				)
			} else {
				log.Infow("payment_callback_idempotent_terminal",
					"current_status", attempt.Status,
				)
			}
			result = &CallbackResult{
				PaymentID: attempt.PaymentID,
				OrderID:   attempt.OrderID,
				Status:    attempt.Status,
				Duplicate: true,
			}
			return nil
		}

		attempt.Status = targetStatus
		if notice.GatewayTxnID != "" {
			attempt.GatewayTxnID = notice.GatewayTxnID
		}
		if notice.Raw != nil {
			attempt.GatewayExtra = models.JSON(notice.Raw)
		}
		switch targetStatus {
		case constants.PaymentStatusCompleted:
			attempt.CompletedAt = &now
		case constants.PaymentStatusCancelled:
			attempt.ErrorMessage = "cancelled by the customer, code " + notice.ResponseCode
		default:
			attempt.ErrorMessage = "gateway reported failure, code " + notice.ResponseCode
		}
		if err := attemptRepo.Update(attempt); err != nil {
			return ErrPaymentUpdateFailed
		}

		if targetStatus == constants.PaymentStatusCompleted {
			if err := s.orderRepo.WithTx(tx).MarkPaid(attempt.OrderID, now); err != nil {
				return ErrPaymentUpdateFailed
			}
			completedNow = attempt
		}
		result = &CallbackResult{
			PaymentID: attempt.PaymentID,
			OrderID:   attempt.OrderID,
			Status:    attempt.Status,
		}
		return nil
	})
	if err != nil {
		// nothing is marked in the guard, so the gateway's redelivery gets a
		// clean retry instead of a duplicate ack
		log.Errorw("payment_callback_apply_failed", "error", err)
		return nil, err
	}

	if markErr := cache.MarkCallbackProcessed(ctx, adapter.Method(), fingerprint, s.replayTTL); markErr != nil {
		log.Warnw("payment_callback_replay_mark_failed", "error", markErr)
	}

	// the pending -> completed transition commits at most once, so at most
	// one notification is enqueued per payment
	if completedNow != nil {
		s.enqueuePaymentCompletedAsync(completedNow, log)
	}

	log.Infow("payment_callback_processed", "status", result.Status, "duplicate", result.Duplicate)
	return result, nil
}
