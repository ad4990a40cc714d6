package momo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/payment"
	"github.com/shopspring/decimal"
)

func testConfig(endpoint string) Config {
	return Config{
		PartnerCode: "MOMOTEST",
		AccessKey:   "access-key",
		SecretKey:   "secret-key",
		Endpoint:    endpoint,
		ReturnURL:   "https://shop.example.com/payment/return",
		NotifyURL:   "https://shop.example.com/api/v1/payments/callback/momo",
	}
}

func testAdapter(t *testing.T, endpoint string) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(testConfig(endpoint))
	if err != nil {
		t.Fatalf("new adapter failed: %v", err)
	}
	adapter.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	return adapter
}

func testInput() payment.CreateInput {
	return payment.CreateInput{
		PaymentID: "pay-7001",
		OrderID:   "ORD-7001",
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(99000)),
		Currency:  "VND",
		OrderInfo: "Thanh toan don hang ORD-7001",
	}
}

func TestNewAdapterRejectsMissingCredentials(t *testing.T) {
	cfg := testConfig("https://example.com")
	cfg.SecretKey = ""
	if _, err := NewAdapter(cfg); err == nil || !strings.Contains(err.Error(), "secret_key") {
		t.Fatalf("expected secret_key error, got %v", err)
	}
}

func TestCreatePaymentSuccess(t *testing.T) {
	var captured createRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"resultCode": 0,
			"message":    "Success",
			"payUrl":     "https://test-payment.momo.vn/pay/abc",
			"qrCodeUrl":  "https://test-payment.momo.vn/qr/abc",
			"deeplink":   "momo://pay?t=abc",
		})
	}))
	defer server.Close()

	adapter := testAdapter(t, server.URL)
	result, err := adapter.CreatePayment(context.Background(), testInput())
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	if captured.PartnerCode != "MOMOTEST" {
		t.Fatalf("unexpected partner code: %s", captured.PartnerCode)
	}
	if captured.Amount != 99000 {
		t.Fatalf("momo takes whole dong, got %d", captured.Amount)
	}
	if captured.OrderID != "pay-7001_20260314093000" {
		t.Fatalf("unexpected order id: %s", captured.OrderID)
	}
	if captured.RequestType != "captureWallet" {
		t.Fatalf("unexpected request type: %s", captured.RequestType)
	}
	if captured.Signature == "" || len(captured.Signature) != 64 {
		t.Fatalf("request must carry a sha256 hex signature")
	}
	if result.PayURL != "https://test-payment.momo.vn/pay/abc" {
		t.Fatalf("unexpected pay url: %s", result.PayURL)
	}
	if result.QRCode != "https://test-payment.momo.vn/qr/abc" {
		t.Fatalf("unexpected qr code: %s", result.QRCode)
	}
	if result.Deeplink != "momo://pay?t=abc" {
		t.Fatalf("unexpected deeplink: %s", result.Deeplink)
	}
	if result.ExpiresAt == nil {
		t.Fatalf("expected an expiry")
	}
}

func TestCreatePaymentGatewayRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"resultCode": 41,
			"message":    "Duplicated order id",
		})
	}))
	defer server.Close()

	adapter := testAdapter(t, server.URL)
	_, err := adapter.CreatePayment(context.Background(), testInput())
	if err == nil || !strings.Contains(err.Error(), "result_code=41") {
		t.Fatalf("expected result_code error, got %v", err)
	}
}

func TestCreatePaymentHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := testAdapter(t, server.URL)
	_, err := adapter.CreatePayment(context.Background(), testInput())
	if err == nil || !strings.Contains(err.Error(), "status=502") {
		t.Fatalf("expected request failed error, got %v", err)
	}
}

func TestCreatePaymentTimeoutKeepsCause(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	adapter := testAdapter(t, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := adapter.CreatePayment(ctx, testInput())
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	// the deadline cause must survive the wrap so callers can tell a timeout
	// from a gateway rejection
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("deadline cause lost in wrapping: %v", err)
	}
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	adapter := testAdapter(t, "https://example.com")
	input := testInput()
	input.Amount = models.NewMoneyFromDecimal(decimal.Zero)
	if _, err := adapter.CreatePayment(context.Background(), input); err != ErrRequestInvalid {
		t.Fatalf("expected ErrRequestInvalid, got %v", err)
	}
}

func ipnParams() map[string]string {
	return map[string]string{
		"partnerCode":  "MOMOTEST",
		"orderId":      "pay-7001_20260314093000",
		"requestId":    "pay-7001",
		"amount":       "99000",
		"orderInfo":    "Thanh toan don hang ORD-7001",
		"orderType":    "momo_wallet",
		"transId":      "4088878653",
		"resultCode":   "0",
		"message":      "Successful.",
		"payType":      "qr",
		"responseTime": "1773998200000",
		"extraData":    "",
	}
}

func TestVerifyCallbackSuccess(t *testing.T) {
	adapter := testAdapter(t, "https://example.com")
	params := ipnParams()
	params["signature"] = adapter.SignIPN(params)

	notice, err := adapter.VerifyCallback(params)
	if err != nil {
		t.Fatalf("verify callback failed: %v", err)
	}
	if !notice.Succeeded {
		t.Fatalf("result code 0 must report success")
	}
	if notice.PaymentID != "pay-7001" {
		t.Fatalf("payment id not recovered from order id: %s", notice.PaymentID)
	}
	if notice.GatewayTxnID != "4088878653" {
		t.Fatalf("unexpected gateway txn id: %s", notice.GatewayTxnID)
	}
}

func TestVerifyCallbackUserDeniedOutcome(t *testing.T) {
	adapter := testAdapter(t, "https://example.com")
	params := ipnParams()
	params["resultCode"] = "1006"
	params["message"] = "Transaction denied by user."
	params["signature"] = adapter.SignIPN(params)

	notice, err := adapter.VerifyCallback(params)
	if err != nil {
		t.Fatalf("verify callback failed: %v", err)
	}
	if notice.Succeeded {
		t.Fatalf("non-zero result code must not report success")
	}
	if !notice.Cancelled {
		t.Fatalf("result code 1006 must report a customer cancel")
	}
	if notice.ResponseCode != "1006" {
		t.Fatalf("unexpected response code: %s", notice.ResponseCode)
	}
}

func TestVerifyCallbackFailureOutcome(t *testing.T) {
	adapter := testAdapter(t, "https://example.com")
	params := ipnParams()
	params["resultCode"] = "1000"
	params["message"] = "Transaction initiated."
	params["signature"] = adapter.SignIPN(params)

	notice, err := adapter.VerifyCallback(params)
	if err != nil {
		t.Fatalf("verify callback failed: %v", err)
	}
	if notice.Succeeded || notice.Cancelled {
		t.Fatalf("unexpected outcome for result code 1000: %+v", notice)
	}
}

func TestVerifyCallbackRejectsTamperedAmount(t *testing.T) {
	adapter := testAdapter(t, "https://example.com")
	params := ipnParams()
	params["signature"] = adapter.SignIPN(params)
	params["amount"] = "1000"

	if _, err := adapter.VerifyCallback(params); err != ErrSignatureInvalid {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyCallbackRejectsMissingSignature(t *testing.T) {
	adapter := testAdapter(t, "https://example.com")
	if _, err := adapter.VerifyCallback(ipnParams()); err != ErrSignatureInvalid {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}
