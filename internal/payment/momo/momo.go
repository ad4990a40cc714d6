// Package momo implements the MoMo wallet gateway. Payments are created over
// a signed JSON API; the buyer pays in-app or by scanning the returned QR,
// and the outcome arrives on the IPN callback.
package momo

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
	"github.com/paygate-next/internal/signing"
)

const (
	requestTypeWallet = "captureWallet"
	requestTypeATM    = "payWithATM"
	langVI            = "vi"
	timeLayout        = "20060102150405"

	expireMinutes = 15

	resultCodeSuccess = "0"
	// resultCodeUserDenied the customer declined the payment in the app
	resultCodeUserDenied = "1006"

	defaultTimeout = 10 * time.Second
)

var (
	ErrConfigInvalid    = errors.New("momo config invalid")
	ErrRequestInvalid   = errors.New("momo request invalid")
	ErrRequestFailed    = errors.New("momo request failed")
	ErrResponseInvalid  = errors.New("momo response invalid")
	ErrSignatureInvalid = errors.New("momo signature invalid")
)

// Config MoMo partner credentials
type Config struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	Endpoint    string
	ReturnURL   string
	NotifyURL   string
	Timeout     time.Duration
}

// ValidateConfig checks required credentials
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.PartnerCode) == "" {
		return fmt.Errorf("%w: partner_code is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.AccessKey) == "" {
		return fmt.Errorf("%w: access_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return fmt.Errorf("%w: endpoint is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.NotifyURL) == "" {
		return fmt.Errorf("%w: notify_url is required", ErrConfigInvalid)
	}
	return nil
}

// Adapter implements the gateway contract for MoMo
type Adapter struct {
	cfg    Config
	signer *signing.Signer
	client *http.Client
	now    func() time.Time
}

// NewAdapter validates the config and builds the adapter
func NewAdapter(cfg Config) (*Adapter, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	signer, err := signing.New(cfg.SecretKey, signing.HMACSHA256)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Adapter{
		cfg:    cfg,
		signer: signer,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
	}, nil
}

// Method returns the payment method code
func (a *Adapter) Method() string {
	return constants.PaymentMethodMoMo
}

// Synchronous reports that MoMo resolves via IPN, not inline
func (a *Adapter) Synchronous() bool {
	return false
}

type createRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type createResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
	QRCodeURL  string `json:"qrCodeUrl"`
	Deeplink   string `json:"deeplink"`
	RequestID  string `json:"requestId"`
	OrderID    string `json:"orderId"`
}

// CreatePayment posts a signed create request and returns the pay artifacts
func (a *Adapter) CreatePayment(ctx context.Context, input payment.CreateInput) (*payment.CreateResult, error) {
	return a.create(ctx, input, requestTypeWallet)
}

// CreateQR is the wallet flow; MoMo returns QR content alongside the pay url
func (a *Adapter) CreateQR(ctx context.Context, input payment.CreateInput) (*payment.CreateResult, error) {
	return a.create(ctx, input, requestTypeWallet)
}

func (a *Adapter) create(ctx context.Context, input payment.CreateInput, requestType string) (*payment.CreateResult, error) {
	if input.PaymentID == "" || input.OrderID == "" {
		return nil, ErrRequestInvalid
	}
	if !input.Amount.IsPositive() {
		return nil, ErrRequestInvalid
	}

	now := a.now()
	orderID := fmt.Sprintf("%s_%s", input.PaymentID, now.Format(timeLayout))
	requestID := input.PaymentID
	orderInfo := input.OrderInfo
	if orderInfo == "" {
		orderInfo = "Thanh toan don hang " + input.OrderID
	}
	// VND carries no minor units; MoMo takes whole dong
	amount := input.Amount.IntPart()

	rawHash := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		a.cfg.AccessKey, amount, "", a.cfg.NotifyURL, orderID, orderInfo,
		a.cfg.PartnerCode, a.cfg.ReturnURL, requestID, requestType,
	)
	body := createRequest{
		PartnerCode: a.cfg.PartnerCode,
		RequestID:   requestID,
		Amount:      amount,
		OrderID:     orderID,
		OrderInfo:   orderInfo,
		RedirectURL: a.cfg.ReturnURL,
		IpnURL:      a.cfg.NotifyURL,
		RequestType: requestType,
		ExtraData:   "",
		Lang:        langVI,
		Signature:   a.signer.Sign(rawHash),
	}

	respBytes, err := a.postJSON(ctx, body)
	if err != nil {
		return nil, err
	}

	var resp createResponse
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, ErrResponseInvalid
	}
	if resp.ResultCode != 0 {
		return nil, fmt.Errorf("%w: result_code=%d %s", ErrResponseInvalid, resp.ResultCode, resp.Message)
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)

	expiresAt := now.Add(expireMinutes * time.Minute)
	return &payment.CreateResult{
		PayURL:       strings.TrimSpace(resp.PayURL),
		QRCode:       strings.TrimSpace(resp.QRCodeURL),
		Deeplink:     strings.TrimSpace(resp.Deeplink),
		GatewayTxnID: orderID,
		ExpiresAt:    &expiresAt,
		Extra:        raw,
	}, nil
}

func (a *Adapter) postJSON(ctx context.Context, body createRequest) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, ErrRequestInvalid
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, ErrRequestInvalid
	}
	req.Header.Set("Content-Type", "application/json")
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
	return respBytes, nil
}

// ipnSignedFields the IPN fields covered by the signature, in raw-hash order
var ipnSignedFields = []string{
	"amount", "extraData", "message", "orderId", "orderInfo", "orderType",
	"partnerCode", "payType", "requestId", "responseTime", "resultCode", "transId",
}

// VerifyCallback authenticates an IPN payload and extracts the outcome
func (a *Adapter) VerifyCallback(params map[string]string) (*payment.CallbackNotice, error) {
	received := strings.TrimSpace(params["signature"])
	if received == "" {
		return nil, ErrSignatureInvalid
	}
	if err := a.signer.Verify(a.ipnRawHash(params), received); err != nil {
		return nil, ErrSignatureInvalid
	}

	orderID := params["orderId"]
	paymentID := orderID
	if idx := strings.LastIndex(orderID, "_"); idx > 0 {
		paymentID = orderID[:idx]
	}
	resultCode := params["resultCode"]

	raw := make(map[string]interface{}, len(params))
	for k, v := range params {
		raw[k] = v
	}
	return &payment.CallbackNotice{
		PaymentID:    paymentID,
		GatewayTxnID: params["transId"],
		Succeeded:    resultCode == resultCodeSuccess,
		Cancelled:    resultCode == resultCodeUserDenied,
		ResponseCode: resultCode,
		Raw:          raw,
	}, nil
}

// SignIPN computes the IPN signature for a parameter set
func (a *Adapter) SignIPN(params map[string]string) string {
	return a.signer.Sign(a.ipnRawHash(params))
}

func (a *Adapter) ipnRawHash(params map[string]string) string {
	var b strings.Builder
	b.WriteString("accessKey=")
	b.WriteString(a.cfg.AccessKey)
	for _, field := range ipnSignedFields {
		b.WriteByte('&')
		b.WriteString(field)
		b.WriteByte('=')
		b.WriteString(params[field])
	}
	return b.String()
}
