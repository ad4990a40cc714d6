package vnpay

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/payment"
	"github.com/shopspring/decimal"
)

func testAdapter(t *testing.T) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(Config{
		TmnCode:    "TESTTMN",
		HashSecret: "test-hash-secret",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://shop.example.com/payment/return",
	})
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
		PaymentID: "5f1c2a7e-0f4b-4f7a-9a6c-1d2e3f405060",
		OrderID:   "ORD-1001",
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(250000)),
		Currency:  "VND",
		OrderInfo: "Thanh toan don hang ORD-1001",
		ClientIP:  "203.0.113.9",
	}
}

func TestNewAdapterRejectsMissingSecret(t *testing.T) {
	_, err := NewAdapter(Config{TmnCode: "TMN", PayURL: "https://x", ReturnURL: "https://y"})
	if err == nil || !strings.Contains(err.Error(), "hash_secret") {
		t.Fatalf("expected hash_secret error, got %v", err)
	}
}

func TestCreatePaymentBuildsSignedURL(t *testing.T) {
	adapter := testAdapter(t)
	result, err := adapter.CreatePayment(context.Background(), testInput())
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	parsed, err := url.Parse(result.PayURL)
	if err != nil {
		t.Fatalf("pay url unparsable: %v", err)
	}
	q := parsed.Query()
	if got := q.Get("vnp_Version"); got != "2.1.0" {
		t.Fatalf("unexpected vnp_Version: %s", got)
	}
	if got := q.Get("vnp_Command"); got != "pay" {
		t.Fatalf("unexpected vnp_Command: %s", got)
	}
	if got := q.Get("vnp_Amount"); got != "25000000" {
		t.Fatalf("amount must be in minor units: %s", got)
	}
	if got := q.Get("vnp_CurrCode"); got != "VND" {
		t.Fatalf("unexpected vnp_CurrCode: %s", got)
	}
	if got := q.Get("vnp_TxnRef"); got != "5f1c2a7e-0f4b-4f7a-9a6c-1d2e3f405060_20260314093000" {
		t.Fatalf("unexpected vnp_TxnRef: %s", got)
	}
	if got := q.Get("vnp_CreateDate"); got != "20260314093000" {
		t.Fatalf("unexpected vnp_CreateDate: %s", got)
	}
	if q.Get("vnp_SecureHash") == "" {
		t.Fatalf("pay url must carry vnp_SecureHash")
	}
	if len(q.Get("vnp_SecureHash")) != 128 {
		t.Fatalf("secure hash must be sha512 hex")
	}
	if result.ExpiresAt == nil || result.ExpiresAt.Sub(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)) != 15*time.Minute {
		t.Fatalf("expected 15 minute expiry, got %v", result.ExpiresAt)
	}
}

func TestCreatePaymentDeterministicSignature(t *testing.T) {
	adapter := testAdapter(t)
	first, err := adapter.CreatePayment(context.Background(), testInput())
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	second, err := adapter.CreatePayment(context.Background(), testInput())
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if first.PayURL != second.PayURL {
		t.Fatalf("same input at same instant must produce the same url")
	}
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	adapter := testAdapter(t)
	input := testInput()
	input.Amount = models.NewMoneyFromDecimal(decimal.Zero)
	if _, err := adapter.CreatePayment(context.Background(), input); err != ErrRequestInvalid {
		t.Fatalf("expected ErrRequestInvalid, got %v", err)
	}
}

func TestCreateQRCarriesPayURL(t *testing.T) {
	adapter := testAdapter(t)
	result, err := adapter.CreateQR(context.Background(), testInput())
	if err != nil {
		t.Fatalf("create qr failed: %v", err)
	}
	if result.QRCode == "" || result.QRCode != result.PayURL {
		t.Fatalf("qr content must be the payment url")
	}
}

func TestVerifyCallbackRoundTrip(t *testing.T) {
	adapter := testAdapter(t)
	result, err := adapter.CreatePayment(context.Background(), testInput())
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	parsed, err := url.Parse(result.PayURL)
	if err != nil {
		t.Fatalf("pay url unparsable: %v", err)
	}

	notice, err := adapter.VerifyCallback(ParseQuery(parsed.Query()))
	if err != nil {
		t.Fatalf("verify callback failed: %v", err)
	}
	if notice.PaymentID != "5f1c2a7e-0f4b-4f7a-9a6c-1d2e3f405060" {
		t.Fatalf("payment id not recovered from txn ref: %s", notice.PaymentID)
	}
	if notice.Succeeded {
		t.Fatalf("callback without response code must not report success")
	}
}

func TestVerifyCallbackSuccessOutcome(t *testing.T) {
	adapter := testAdapter(t)
	params := map[string]string{
		"vnp_TxnRef":        "pay-123_20260314093000",
		"vnp_ResponseCode":  "00",
		"vnp_TransactionNo": "14226112",
		"vnp_Amount":        "25000000",
	}
	signed, err := adapter.SignedQuery(params)
	if err != nil {
		t.Fatalf("signed query failed: %v", err)
	}
	values, err := url.ParseQuery(signed)
	if err != nil {
		t.Fatalf("parse signed query failed: %v", err)
	}

	notice, err := adapter.VerifyCallback(ParseQuery(values))
	if err != nil {
		t.Fatalf("verify callback failed: %v", err)
	}
	if !notice.Succeeded {
		t.Fatalf("response code 00 must report success")
	}
	if notice.PaymentID != "pay-123" {
		t.Fatalf("unexpected payment id: %s", notice.PaymentID)
	}
	if notice.GatewayTxnID != "14226112" {
		t.Fatalf("unexpected gateway txn id: %s", notice.GatewayTxnID)
	}
}

func TestVerifyCallbackCustomerCancelOutcome(t *testing.T) {
	adapter := testAdapter(t)
	params := map[string]string{
		"vnp_TxnRef":        "pay-123_20260314093000",
		"vnp_ResponseCode":  "24",
		"vnp_TransactionNo": "0",
		"vnp_Amount":        "25000000",
	}
	signed, err := adapter.SignedQuery(params)
	if err != nil {
		t.Fatalf("signed query failed: %v", err)
	}
	values, err := url.ParseQuery(signed)
	if err != nil {
		t.Fatalf("parse signed query failed: %v", err)
	}

	notice, err := adapter.VerifyCallback(ParseQuery(values))
	if err != nil {
		t.Fatalf("verify callback failed: %v", err)
	}
	if notice.Succeeded {
		t.Fatalf("response code 24 must not report success")
	}
	if !notice.Cancelled {
		t.Fatalf("response code 24 must report a customer cancel")
	}
}

func TestVerifyCallbackRejectsTamperedAmount(t *testing.T) {
	adapter := testAdapter(t)
	params := map[string]string{
		"vnp_TxnRef":       "pay-123_20260314093000",
		"vnp_ResponseCode": "00",
		"vnp_Amount":       "25000000",
	}
	signed, err := adapter.SignedQuery(params)
	if err != nil {
		t.Fatalf("signed query failed: %v", err)
	}
	values, err := url.ParseQuery(signed)
	if err != nil {
		t.Fatalf("parse signed query failed: %v", err)
	}
	tampered := ParseQuery(values)
	tampered["vnp_Amount"] = "100"

	if _, err := adapter.VerifyCallback(tampered); err != ErrSignatureInvalid {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerifyCallbackRejectsMissingHash(t *testing.T) {
	adapter := testAdapter(t)
	if _, err := adapter.VerifyCallback(map[string]string{"vnp_TxnRef": "x"}); err != ErrSignatureInvalid {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}
