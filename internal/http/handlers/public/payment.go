package public

import (
	"strconv"
	"strings"
	"time"

	"github.com/paygate-next/internal/cache"
	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/service"

	"github.com/gin-gonic/gin"
)

const paymentStatusCacheTTL = 5 * time.Minute

// CreatePaymentRequest create payment request
type CreatePaymentRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	Method    string `json:"method" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Currency  string `json:"currency"`
	OrderInfo string `json:"order_info"`
}

// RefundRequest refund request body
type RefundRequest struct {
	Amount string `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) buildProcessInput(c *gin.Context, uid uint, req CreatePaymentRequest) (service.ProcessPaymentInput, bool) {
	amount, err := models.NewMoneyFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "amount is not a valid number", nil)
		return service.ProcessPaymentInput{}, false
	}
	return service.ProcessPaymentInput{
		OrderID:   strings.TrimSpace(req.OrderID),
		UserID:    uid,
		Amount:    amount,
		Currency:  req.Currency,
		Method:    req.Method,
		OrderInfo: strings.TrimSpace(req.OrderInfo),
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Context:   c.Request.Context(),
	}, true
}

// CreatePayment starts a payment attempt for an order
func (h *Handler) CreatePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	input, ok := h.buildProcessInput(c, uid, req)
	if !ok {
		return
	}
	result := h.PaymentService.ProcessPayment(input)
	if !result.IsSuccess {
		response.Error(c, response.CodeBadRequest, result.Message)
		return
	}
	response.Success(c, result)
}

// CreateQRPayment starts a payment attempt through the QR flow
func (h *Handler) CreateQRPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	input, ok := h.buildProcessInput(c, uid, req)
	if !ok {
		return
	}
	result := h.PaymentService.ProcessQRPayment(input)
	if !result.IsSuccess {
		response.Error(c, response.CodeBadRequest, result.Message)
		return
	}
	response.Success(c, result)
}

// GetPaymentStatus reports the state of the caller's payment attempt
func (h *Handler) GetPaymentStatus(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	paymentID := strings.TrimSpace(c.Param("payment_id"))
	if paymentID == "" {
		respondError(c, response.CodeBadRequest, "payment id is required", nil)
		return
	}

	// terminal states are absorbing, so they cache safely; the key carries
	// the caller so a cached entry never crosses the ownership scope
	cacheKey := "payment:status:" + strconv.FormatUint(uint64(uid), 10) + ":" + paymentID
	var cached service.PaymentStatusResult
	if hit, err := cache.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	status, err := h.PaymentService.GetPaymentStatus(paymentID, uid)
	if err != nil {
		respondError(c, response.CodeInternal, "payment status query failed", err)
		return
	}
	switch status.Status {
	case constants.PaymentStatusCompleted, constants.PaymentStatusFailed, constants.PaymentStatusCancelled:
		_ = cache.SetJSON(c.Request.Context(), cacheKey, status, paymentStatusCacheTTL)
	}
	response.Success(c, status)
}

// ListPayments lists the caller's payment attempts, newest first
func (h *Handler) ListPayments(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	attempts, total, err := h.PaymentAttemptRepo.ListByUser(uid, repository.AttemptListFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Method:   strings.TrimSpace(c.Query("method")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "payment list query failed", err)
		return
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if page <= 0 {
		page = 1
	}
	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, attempts, pagination)
}

// ListRefunds lists refund requests filed against one of the caller's payments
func (h *Handler) ListRefunds(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	paymentID := strings.TrimSpace(c.Param("payment_id"))
	if paymentID == "" {
		respondError(c, response.CodeBadRequest, "payment id is required", nil)
		return
	}
	attempt, err := h.PaymentAttemptRepo.GetByPaymentID(paymentID)
	if err != nil {
		respondError(c, response.CodeInternal, "payment fetch failed", err)
		return
	}
	if attempt == nil || attempt.UserID != uid {
		respondError(c, response.CodeNotFound, "payment not found", nil)
		return
	}
	refunds, err := h.RefundRepo.ListByPaymentID(paymentID)
	if err != nil {
		respondError(c, response.CodeInternal, "refund list query failed", err)
		return
	}
	response.Success(c, refunds)
}

// RequestRefund files a refund request against a completed payment
func (h *Handler) RequestRefund(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	paymentID := strings.TrimSpace(c.Param("payment_id"))
	if paymentID == "" {
		respondError(c, response.CodeBadRequest, "payment id is required", nil)
		return
	}
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	amount, err := models.NewMoneyFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "amount is not a valid number", nil)
		return
	}
	result := h.PaymentService.RequestRefund(service.RefundRequestInput{
		PaymentID:   paymentID,
		Amount:      amount,
		Reason:      req.Reason,
		RequestedBy: uid,
	})
	if !result.IsSuccess {
		response.Error(c, response.CodeBadRequest, result.Message)
		return
	}
	response.Success(c, result)
}
