// Package payment defines the gateway adapter contract and the registry the
// orchestrator resolves adapters from.
package payment

import (
	"context"
	"time"

	"github.com/paygate-next/internal/models"
)

// CreateInput normalized request to start a payment at a gateway
type CreateInput struct {
	PaymentID string
	OrderID   string
	Amount    models.Money
	Currency  string
	OrderInfo string
	ClientIP  string
}

// CreateResult gateway-specific artifacts produced by CreatePayment
type CreateResult struct {
	PayURL       string
	QRCode       string
	Deeplink     string
	GatewayTxnID string
	Completed    bool // synchronous gateways resolve in the same call
	ExpiresAt    *time.Time
	Extra        map[string]interface{}
}

// CallbackNotice normalized outcome extracted from a verified callback
type CallbackNotice struct {
	PaymentID    string
	GatewayTxnID string
	Succeeded    bool
	Cancelled    bool // the customer abandoned or declined the payment
	ResponseCode string
	Raw          map[string]interface{}
}

// Adapter is implemented by each gateway package
type Adapter interface {
	// Method returns the payment method code the adapter serves
	Method() string
	// Synchronous reports whether CreatePayment resolves the payment outcome
	// in the same call instead of waiting for a callback
	Synchronous() bool
	// CreatePayment starts a payment at the gateway
	CreatePayment(ctx context.Context, input CreateInput) (*CreateResult, error)
	// VerifyCallback authenticates a gateway callback and extracts its outcome.
	// Implementations must reject unsigned or tampered payloads.
	VerifyCallback(params map[string]string) (*CallbackNotice, error)
}

// QRAdapter is implemented by gateways that can produce scannable QR payments
type QRAdapter interface {
	Adapter
	CreateQR(ctx context.Context, input CreateInput) (*CreateResult, error)
}
