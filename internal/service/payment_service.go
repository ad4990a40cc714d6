package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/logger"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/payment"
	"github.com/paygate-next/internal/queue"
	"github.com/paygate-next/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService routes payment requests to gateway adapters and reconciles
// the resulting attempts
type PaymentService struct {
	attemptRepo repository.PaymentAttemptRepository
	refundRepo  repository.RefundRepository
	orderRepo   repository.OrderRepository
	registry    *payment.Registry
	queueClient *queue.Client
	replayTTL   time.Duration
}

// NewPaymentService creates the payment service
func NewPaymentService(attemptRepo repository.PaymentAttemptRepository, refundRepo repository.RefundRepository, orderRepo repository.OrderRepository, registry *payment.Registry, queueClient *queue.Client, replayTTL time.Duration) *PaymentService {
	return &PaymentService{
		attemptRepo: attemptRepo,
		refundRepo:  refundRepo,
		orderRepo:   orderRepo,
		registry:    registry,
		queueClient: queueClient,
		replayTTL:   replayTTL,
	}
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// ProcessPaymentInput normalized payment request
type ProcessPaymentInput struct {
	OrderID   string
	UserID    uint
	Amount    models.Money
	Currency  string
	Method    string
	OrderInfo string
	ClientIP  string
	UserAgent string
	Context   context.Context
}

// PaymentResult payment request outcome; failures are folded into the value
type PaymentResult struct {
	IsSuccess    bool         `json:"is_success"`
	PaymentID    string       `json:"payment_id"`
	OrderID      string       `json:"order_id"`
	Status       string       `json:"status"`
	Message      string       `json:"message"`
	PayURL       string       `json:"pay_url,omitempty"`
	QRCode       string       `json:"qr_code,omitempty"`
	Deeplink     string       `json:"deeplink,omitempty"`
	GatewayTxnID string       `json:"gateway_txn_id,omitempty"`
	ExpiresAt    *time.Time   `json:"expires_at,omitempty"`
	Amount       models.Money `json:"amount"`
	Currency     string       `json:"currency"`
}

// PaymentStatusResult status query outcome
type PaymentStatusResult struct {
	PaymentID    string       `json:"payment_id"`
	OrderID      string       `json:"order_id,omitempty"`
	Status       string       `json:"status"`
	Method       string       `json:"method,omitempty"`
	Amount       models.Money `json:"amount"`
	Currency     string       `json:"currency,omitempty"`
	GatewayTxnID string       `json:"gateway_txn_id,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// ProcessPayment validates the request, persists a pending attempt and hands
// it to the resolved gateway adapter
func (s *PaymentService) ProcessPayment(input ProcessPaymentInput) *PaymentResult {
	return s.process(input, false)
}

// ProcessQRPayment is ProcessPayment through the QR flow of gateways that
// support it
func (s *PaymentService) ProcessQRPayment(input ProcessPaymentInput) *PaymentResult {
	return s.process(input, true)
}

func (s *PaymentService) process(input ProcessPaymentInput, wantQR bool) *PaymentResult {
	log := paymentLogger(
		"order_id", input.OrderID,
		"user_id", input.UserID,
		"method", input.Method,
		"amount", input.Amount.String(),
		"qr", wantQR,
	)

	failure := func(message string) *PaymentResult {
		return &PaymentResult{
			IsSuccess: false,
			OrderID:   input.OrderID,
			Message:   message,
			Amount:    input.Amount,
			Currency:  input.Currency,
		}
	}

	if strings.TrimSpace(input.OrderID) == "" {
		log.Warnw("payment_rejected_missing_order")
		return failure("order id is required")
	}
	if !input.Amount.IsPositive() {
		log.Warnw("payment_rejected_invalid_amount")
		return failure("amount must be positive")
	}

	adapter, ok := s.registry.Resolve(input.Method)
	if !ok {
		log.Warnw("payment_rejected_unknown_method")
		return failure("unsupported payment method: " + input.Method)
	}

	qrAdapter, qrOK := adapter.(payment.QRAdapter)
	if wantQR && !qrOK {
		log.Warnw("payment_rejected_qr_unsupported")
		return failure("payment method does not support qr: " + input.Method)
	}

	exists, err := s.orderRepo.Exists(input.OrderID, input.UserID)
	if err != nil {
		log.Errorw("payment_order_lookup_failed", "error", err)
		return failure("payment could not be created")
	}
	if !exists {
		log.Warnw("payment_rejected_order_not_found")
		return failure("order not found")
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = constants.CurrencyVND
	}

	attempt := &models.PaymentAttempt{
		PaymentID:     uuid.NewString(),
		OrderID:       input.OrderID,
		UserID:        input.UserID,
		Amount:        input.Amount,
		Currency:      currency,
		PaymentMethod: adapter.Method(),
		Status:        constants.PaymentStatusPending,
		ClientIP:      input.ClientIP,
		UserAgent:     input.UserAgent,
	}
	if err := s.attemptRepo.Create(attempt); err != nil {
		log.Errorw("payment_attempt_create_failed", "error", err)
		return failure("payment could not be created")
	}
	log = log.With("payment_id", attempt.PaymentID)
	log.Infow("payment_attempt_created")

	ctx := input.Context
	if ctx == nil {
		ctx = context.Background()
	}
	createInput := payment.CreateInput{
		PaymentID: attempt.PaymentID,
		OrderID:   input.OrderID,
		Amount:    input.Amount,
		Currency:  currency,
		OrderInfo: input.OrderInfo,
		ClientIP:  input.ClientIP,
	}

	var created *payment.CreateResult
	if wantQR {
		created, err = qrAdapter.CreateQR(ctx, createInput)
	} else {
		created, err = adapter.CreatePayment(ctx, createInput)
	}
	if err != nil {
		return s.handleCreateFailure(attempt, err, log)
	}

	now := time.Now()
	attempt.GatewayTxnID = created.GatewayTxnID
	attempt.PayURL = created.PayURL
	attempt.QRCode = created.QRCode
	attempt.ExpiredAt = created.ExpiresAt
	if created.Extra != nil {
		attempt.GatewayExtra = models.JSON(created.Extra)
	}
	if created.Completed {
		attempt.Status = constants.PaymentStatusCompleted
		attempt.CompletedAt = &now
	}

	if err := s.attemptRepo.Update(attempt); err != nil {
		log.Errorw("payment_attempt_update_failed", "error", err)
		return failure("payment could not be created")
	}

	if created.Completed {
		s.finalizeCompleted(attempt, now, log)
	}

	log.Infow("payment_processed", "status", attempt.Status)
	return &PaymentResult{
		IsSuccess:    true,
		PaymentID:    attempt.PaymentID,
		OrderID:      attempt.OrderID,
		Status:       attempt.Status,
		PayURL:       created.PayURL,
		QRCode:       created.QRCode,
		Deeplink:     created.Deeplink,
		GatewayTxnID: created.GatewayTxnID,
		ExpiresAt:    created.ExpiresAt,
		Amount:       attempt.Amount,
		Currency:     attempt.Currency,
	}
}

// handleCreateFailure maps an adapter error onto the attempt. A timeout after
// the request may have reached the gateway leaves the attempt pending for the
// callback to settle; everything else is a terminal failure.
func (s *PaymentService) handleCreateFailure(attempt *models.PaymentAttempt, cause error, log *zap.SugaredLogger) *PaymentResult {
	if errors.Is(cause, context.DeadlineExceeded) {
		log.Warnw("payment_gateway_timeout", "error", cause)
		return &PaymentResult{
			IsSuccess: false,
			PaymentID: attempt.PaymentID,
			OrderID:   attempt.OrderID,
			Status:    attempt.Status,
			Message:   "gateway timed out, payment left pending",
			Amount:    attempt.Amount,
			Currency:  attempt.Currency,
		}
	}

	log.Warnw("payment_gateway_rejected", "error", cause)
	attempt.Status = constants.PaymentStatusFailed
	attempt.ErrorMessage = cause.Error()
	if err := s.attemptRepo.Update(attempt); err != nil {
		log.Errorw("payment_attempt_update_failed", "error", err)
	}
	return &PaymentResult{
		IsSuccess: false,
		PaymentID: attempt.PaymentID,
		OrderID:   attempt.OrderID,
		Status:    attempt.Status,
		Message:   "payment was not accepted by the gateway",
		Amount:    attempt.Amount,
		Currency:  attempt.Currency,
	}
}

// finalizeCompleted marks the order paid and enqueues the buyer notification
// after a synchronous gateway resolves
func (s *PaymentService) finalizeCompleted(attempt *models.PaymentAttempt, now time.Time, log *zap.SugaredLogger) {
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		return s.orderRepo.WithTx(tx).MarkPaid(attempt.OrderID, now)
	})
	if err != nil {
		log.Errorw("payment_order_mark_paid_failed", "error", err)
	}
	s.enqueuePaymentCompletedAsync(attempt, log)
}

func (s *PaymentService) enqueuePaymentCompletedAsync(attempt *models.PaymentAttempt, log *zap.SugaredLogger) {
	if s.queueClient == nil {
		return
	}
	err := s.queueClient.EnqueuePaymentCompleted(queue.PaymentCompletedPayload{
		PaymentID:    attempt.PaymentID,
		OrderID:      attempt.OrderID,
		UserID:       attempt.UserID,
		Method:       attempt.PaymentMethod,
		Amount:       attempt.Amount.String(),
		Currency:     attempt.Currency,
		GatewayTxnID: attempt.GatewayTxnID,
	})
	if err != nil {
		log.Warnw("payment_enqueue_completed_notify_failed", "error", err)
	}
}

// GetPaymentStatus reports the current state of an attempt. A payment id
// that does not exist, or that belongs to another user, is not an error;
// both report status unknown.
func (s *PaymentService) GetPaymentStatus(paymentID string, userID uint) (*PaymentStatusResult, error) {
	attempt, err := s.attemptRepo.GetByPaymentID(paymentID)
	if err != nil {
		paymentLogger("payment_id", paymentID).Errorw("payment_status_fetch_failed", "error", err)
		return nil, ErrPaymentUpdateFailed
	}
	if attempt == nil || attempt.UserID != userID {
		return &PaymentStatusResult{
			PaymentID: paymentID,
			Status:    constants.PaymentStatusUnknown,
		}, nil
	}
	return &PaymentStatusResult{
		PaymentID:    attempt.PaymentID,
		OrderID:      attempt.OrderID,
		Status:       attempt.Status,
		Method:       attempt.PaymentMethod,
		Amount:       attempt.Amount,
		Currency:     attempt.Currency,
		GatewayTxnID: attempt.GatewayTxnID,
		ErrorMessage: attempt.ErrorMessage,
		CompletedAt:  attempt.CompletedAt,
	}, nil
}
