// Package vnpay implements the VNPay bank-redirect gateway. Payments are
// started by sending the buyer to a signed payment URL; the outcome arrives
// on the IPN callback.
package vnpay

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/payment"
	"github.com/paygate-next/internal/signing"
)

const (
	version       = "2.1.0"
	commandPay    = "pay"
	orderTypeName = "other"
	localeVN      = "vn"
	timeLayout    = "20060102150405"

	// expireMinutes how long a generated payment URL stays payable
	expireMinutes = 15

	responseCodeSuccess = "00"
	// responseCodeCancelled the customer abandoned the payment at the bank page
	responseCodeCancelled = "24"
)

var (
	ErrConfigInvalid    = errors.New("vnpay config invalid")
	ErrRequestInvalid   = errors.New("vnpay request invalid")
	ErrSignatureInvalid = errors.New("vnpay signature invalid")
)

// Config VNPay merchant credentials
type Config struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
}

// ValidateConfig checks required credentials
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.TmnCode) == "" {
		return fmt.Errorf("%w: tmn_code is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.HashSecret) == "" {
		return fmt.Errorf("%w: hash_secret is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.PayURL) == "" {
		return fmt.Errorf("%w: pay_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ReturnURL) == "" {
		return fmt.Errorf("%w: return_url is required", ErrConfigInvalid)
	}
	return nil
}

// Adapter implements the gateway contract for VNPay
type Adapter struct {
	cfg    Config
	signer *signing.Signer
	now    func() time.Time
}

// NewAdapter validates the config and builds the adapter
func NewAdapter(cfg Config) (*Adapter, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	signer, err := signing.New(cfg.HashSecret, signing.HMACSHA512)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	return &Adapter{cfg: cfg, signer: signer, now: time.Now}, nil
}

// Method returns the payment method code
func (a *Adapter) Method() string {
	return constants.PaymentMethodVNPay
}

// Synchronous reports that VNPay resolves via callback, not inline
func (a *Adapter) Synchronous() bool {
	return false
}

// CreatePayment builds the signed redirect URL. No network call is made;
// the buyer's browser carries the request to VNPay.
func (a *Adapter) CreatePayment(ctx context.Context, input payment.CreateInput) (*payment.CreateResult, error) {
	if input.PaymentID == "" || input.OrderID == "" {
		return nil, ErrRequestInvalid
	}
	if !input.Amount.IsPositive() {
		return nil, ErrRequestInvalid
	}

	now := a.now()
	txnRef := fmt.Sprintf("%s_%s", input.PaymentID, now.Format(timeLayout))
	orderInfo := input.OrderInfo
	if orderInfo == "" {
		orderInfo = "Thanh toan don hang " + input.OrderID
	}
	currency := input.Currency
	if currency == "" {
		currency = constants.CurrencyVND
	}

	params := map[string]string{
		"vnp_Version":    version,
		"vnp_Command":    commandPay,
		"vnp_TmnCode":    a.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(input.Amount.MinorUnits(), 10),
		"vnp_CurrCode":   currency,
		"vnp_TxnRef":     txnRef,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  orderTypeName,
		"vnp_Locale":     localeVN,
		"vnp_ReturnUrl":  a.cfg.ReturnURL,
		"vnp_IpAddr":     input.ClientIP,
		"vnp_CreateDate": now.Format(timeLayout),
	}

	query := signing.BuildCanonical(params, true)
	signature := a.signer.Sign(query)
	payURL := a.cfg.PayURL + "?" + query + "&vnp_SecureHash=" + signature

	expiresAt := now.Add(expireMinutes * time.Minute)
	return &payment.CreateResult{
		PayURL:       payURL,
		GatewayTxnID: txnRef,
		ExpiresAt:    &expiresAt,
		Extra: map[string]interface{}{
			"txn_ref":     txnRef,
			"create_date": now.Format(timeLayout),
		},
	}, nil
}

// CreateQR returns the payment URL as QR content for counter display
func (a *Adapter) CreateQR(ctx context.Context, input payment.CreateInput) (*payment.CreateResult, error) {
	result, err := a.CreatePayment(ctx, input)
	if err != nil {
		return nil, err
	}
	result.QRCode = result.PayURL
	return result, nil
}

// VerifyCallback recomputes the secure hash over every vnp_ parameter and
// extracts the payment outcome. Unsigned or tampered payloads are rejected.
func (a *Adapter) VerifyCallback(params map[string]string) (*payment.CallbackNotice, error) {
	received := strings.TrimSpace(params["vnp_SecureHash"])
	if received == "" {
		return nil, ErrSignatureInvalid
	}

	signed := make(map[string]string, len(params))
	for k, v := range params {
		if !strings.HasPrefix(k, "vnp_") {
			continue
		}
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		signed[k] = v
	}
	canonical := signing.BuildCanonical(signed, true)
	if err := a.signer.Verify(canonical, received); err != nil {
		return nil, ErrSignatureInvalid
	}

	txnRef := params["vnp_TxnRef"]
	paymentID := txnRef
	if idx := strings.LastIndex(txnRef, "_"); idx > 0 {
		paymentID = txnRef[:idx]
	}
	responseCode := params["vnp_ResponseCode"]

	raw := make(map[string]interface{}, len(params))
	for k, v := range params {
		raw[k] = v
	}
	return &payment.CallbackNotice{
		PaymentID:    paymentID,
		GatewayTxnID: params["vnp_TransactionNo"],
		Succeeded:    responseCode == responseCodeSuccess,
		Cancelled:    responseCode == responseCodeCancelled,
		ResponseCode: responseCode,
		Raw:          raw,
	}, nil
}

// SignedQuery exposes the canonical signed query for a parameter set. Used by
// the return-page handler to re-check redirect parameters.
func (a *Adapter) SignedQuery(params map[string]string) (string, error) {
	if len(params) == 0 {
		return "", ErrRequestInvalid
	}
	query := signing.BuildCanonical(params, true)
	return query + "&vnp_SecureHash=" + a.signer.Sign(query), nil
}

// ParseQuery flattens URL query values for VerifyCallback
func ParseQuery(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) == 0 {
			continue
		}
		params[k] = vs[0]
	}
	return params
}
