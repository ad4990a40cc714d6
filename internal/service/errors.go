package service

import "errors"

var (
	ErrPaymentMethodUnknown = errors.New("payment method unknown")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentUpdateFailed  = errors.New("payment update failed")
	ErrPaymentNotCompleted  = errors.New("payment not completed")
	ErrCallbackInvalid      = errors.New("callback invalid")
	ErrCallbackSignature    = errors.New("callback signature invalid")
	ErrRefundExceedsCap     = errors.New("refund exceeds refundable amount")
	ErrRefundCreateFailed   = errors.New("refund create failed")
)
