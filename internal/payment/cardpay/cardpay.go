// Package cardpay implements the card gateway. A payment intent is confirmed
// in a single bearer-authenticated API call, so the outcome is known before
// the create request returns.
package cardpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/payment"
)

const (
	statusSucceeded = "succeeded"

	defaultTimeout = 10 * time.Second
)

var (
	ErrConfigInvalid        = errors.New("cardpay config invalid")
	ErrRequestInvalid       = errors.New("cardpay request invalid")
	ErrRequestFailed        = errors.New("cardpay request failed")
	ErrResponseInvalid      = errors.New("cardpay response invalid")
	ErrPaymentDeclined      = errors.New("cardpay payment declined")
	ErrCallbackNotSupported = errors.New("cardpay has no callback channel")
)

// Config card gateway credentials
type Config struct {
	SecretKey string
	Endpoint  string
	Timeout   time.Duration
}

// ValidateConfig checks required credentials
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return fmt.Errorf("%w: endpoint is required", ErrConfigInvalid)
	}
	return nil
}

// Adapter implements the gateway contract for the card processor
type Adapter struct {
	cfg    Config
	client *http.Client
}

// NewAdapter validates the config and builds the adapter
func NewAdapter(cfg Config) (*Adapter, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{cfg: cfg, client: &http.Client{Timeout: timeout}}, nil
}

// Method returns the payment method code
func (a *Adapter) Method() string {
	return constants.PaymentMethodCard
}

// Synchronous reports that the card flow resolves inline
func (a *Adapter) Synchronous() bool {
	return true
}

type intentRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	Reference   string `json:"reference"`
	Confirm     bool   `json:"confirm"`
}

type intentResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	FailureReason string `json:"failure_reason"`
}

// CreatePayment confirms a payment intent. A non-succeeded status is a
// declined payment, reported as ErrPaymentDeclined.
func (a *Adapter) CreatePayment(ctx context.Context, input payment.CreateInput) (*payment.CreateResult, error) {
	if input.PaymentID == "" || input.OrderID == "" {
		return nil, ErrRequestInvalid
	}
	if !input.Amount.IsPositive() {
		return nil, ErrRequestInvalid
	}

	currency := strings.ToLower(input.Currency)
	if currency == "" {
		currency = strings.ToLower(constants.CurrencyVND)
	}
	body := intentRequest{
		Amount:      input.Amount.MinorUnits(),
		Currency:    currency,
		Description: input.OrderInfo,
		Reference:   input.PaymentID,
		Confirm:     true,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, ErrRequestInvalid
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, ErrRequestInvalid
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.SecretKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status=%d", ErrRequestFailed, resp.StatusCode)
	}
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	var intent intentResponse
	if err := json.Unmarshal(respBytes, &intent); err != nil {
		return nil, ErrResponseInvalid
	}
	if intent.ID == "" {
		return nil, ErrResponseInvalid
	}
	if intent.Status != statusSucceeded {
		reason := intent.FailureReason
		if reason == "" {
			reason = intent.Status
		}
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, reason)
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)
	return &payment.CreateResult{
		GatewayTxnID: intent.ID,
		Completed:    true,
		Extra:        raw,
	}, nil
}

// VerifyCallback always fails; the card flow has no asynchronous channel
func (a *Adapter) VerifyCallback(params map[string]string) (*payment.CallbackNotice, error) {
	return nil, ErrCallbackNotSupported
}
