package public

import (
	"errors"
	"net/http"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/http/response"
	"github.com/paygate-next/internal/payment/vnpay"
	"github.com/paygate-next/internal/service"

	"github.com/gin-gonic/gin"
)

// HandleVNPayCallback processes the VNPay IPN. VNPay expects the literal
// RspCode body regardless of outcome, so every path answers 200.
func (h *Handler) HandleVNPayCallback(c *gin.Context) {
	log := requestLog(c)

	values := c.Request.URL.Query()
	if c.Request.Method == http.MethodPost {
		if err := c.Request.ParseForm(); err != nil {
			log.Warnw("vnpay_callback_form_parse_failed", "error", err)
			c.String(http.StatusOK, constants.VNPayCallbackFail)
			return
		}
		values = c.Request.Form
	}
	params := vnpay.ParseQuery(values)

	log.Infow("vnpay_callback_received",
		"client_ip", c.ClientIP(),
		"txn_ref", params["vnp_TxnRef"],
		"response_code", params["vnp_ResponseCode"],
		"transaction_no", params["vnp_TransactionNo"],
	)

	result, err := h.PaymentService.HandleCallback(c.Request.Context(), constants.PaymentMethodVNPay, params)
	if err != nil {
		log.Warnw("vnpay_callback_rejected", "error", err)
		c.String(http.StatusOK, constants.VNPayCallbackFail)
		return
	}

	log.Infow("vnpay_callback_processed",
		"payment_id", result.PaymentID,
		"status", result.Status,
		"duplicate", result.Duplicate,
	)
	c.String(http.StatusOK, constants.VNPayCallbackOK)
}

// HandleVNPayReturn handles the browser redirect back from VNPay. The
// redirect carries the same signed parameter set as the IPN, so it settles
// the attempt through the same path; whichever delivery arrives second is a
// no-op.
func (h *Handler) HandleVNPayReturn(c *gin.Context) {
	params := vnpay.ParseQuery(c.Request.URL.Query())

	result, err := h.PaymentService.HandleCallback(c.Request.Context(), constants.PaymentMethodVNPay, params)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCallbackSignature):
			respondError(c, response.CodeBadRequest, "signature verification failed", nil)
		case errors.Is(err, service.ErrPaymentNotFound):
			respondError(c, response.CodeNotFound, "payment not found", nil)
		default:
			respondError(c, response.CodeInternal, "payment return handling failed", err)
		}
		return
	}
	response.Success(c, result)
}
