// Package cod implements cash on delivery. There is no gateway; the payment
// is recorded as collected-on-delivery immediately.
package cod

import (
	"context"
	"errors"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/payment"
)

var (
	ErrRequestInvalid       = errors.New("cod request invalid")
	ErrCallbackNotSupported = errors.New("cod has no callback channel")
)

// Adapter implements the gateway contract for cash on delivery
type Adapter struct{}

// NewAdapter builds the adapter
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Method returns the payment method code
func (a *Adapter) Method() string {
	return constants.PaymentMethodCOD
}

// Synchronous reports that COD resolves inline
func (a *Adapter) Synchronous() bool {
	return true
}

// CreatePayment succeeds immediately with a deterministic transaction id
func (a *Adapter) CreatePayment(ctx context.Context, input payment.CreateInput) (*payment.CreateResult, error) {
	if input.PaymentID == "" || input.OrderID == "" {
		return nil, ErrRequestInvalid
	}
	if !input.Amount.IsPositive() {
		return nil, ErrRequestInvalid
	}
	return &payment.CreateResult{
		GatewayTxnID: "COD_" + input.OrderID,
		Completed:    true,
	}, nil
}

// VerifyCallback always fails; cash on delivery has no callbacks
func (a *Adapter) VerifyCallback(params map[string]string) (*payment.CallbackNotice, error) {
	return nil, ErrCallbackNotSupported
}
