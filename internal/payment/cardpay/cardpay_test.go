package cardpay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/payment"
	"github.com/shopspring/decimal"
)

func testAdapter(t *testing.T, endpoint string) *Adapter {
	t.Helper()
	adapter, err := NewAdapter(Config{SecretKey: "sk_test_123", Endpoint: endpoint})
	if err != nil {
		t.Fatalf("new adapter failed: %v", err)
	}
	return adapter
}

func testInput() payment.CreateInput {
	return payment.CreateInput{
		PaymentID: "pay-3001",
		OrderID:   "ORD-3001",
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromFloat(125.50)),
		Currency:  "USD",
		OrderInfo: "Order ORD-3001",
	}
}

func TestNewAdapterRejectsMissingKey(t *testing.T) {
	if _, err := NewAdapter(Config{Endpoint: "https://example.com"}); err == nil || !strings.Contains(err.Error(), "secret_key") {
		t.Fatalf("expected secret_key error, got %v", err)
	}
}

func TestCreatePaymentSucceeded(t *testing.T) {
	var captured intentRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "pi_9f3k2",
			"status": "succeeded",
		})
	}))
	defer server.Close()

	adapter := testAdapter(t, server.URL)
	result, err := adapter.CreatePayment(context.Background(), testInput())
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	if auth != "Bearer sk_test_123" {
		t.Fatalf("unexpected authorization header: %s", auth)
	}
	if captured.Amount != 12550 {
		t.Fatalf("amount must be in minor units, got %d", captured.Amount)
	}
	if captured.Currency != "usd" {
		t.Fatalf("unexpected currency: %s", captured.Currency)
	}
	if captured.Reference != "pay-3001" {
		t.Fatalf("unexpected reference: %s", captured.Reference)
	}
	if !captured.Confirm {
		t.Fatalf("intent must be confirmed inline")
	}
	if !result.Completed {
		t.Fatalf("card flow must resolve synchronously")
	}
	if result.GatewayTxnID != "pi_9f3k2" {
		t.Fatalf("unexpected gateway txn id: %s", result.GatewayTxnID)
	}
}

func TestCreatePaymentDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             "pi_declined",
			"status":         "requires_payment_method",
			"failure_reason": "card_declined",
		})
	}))
	defer server.Close()

	adapter := testAdapter(t, server.URL)
	_, err := adapter.CreatePayment(context.Background(), testInput())
	if !errors.Is(err, ErrPaymentDeclined) {
		t.Fatalf("expected ErrPaymentDeclined, got %v", err)
	}
	if !strings.Contains(err.Error(), "card_declined") {
		t.Fatalf("expected decline reason in error, got %v", err)
	}
}

func TestCreatePaymentHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := testAdapter(t, server.URL)
	_, err := adapter.CreatePayment(context.Background(), testInput())
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
}

func TestCreatePaymentInvalidBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not-json"))
	}))
	defer server.Close()

	adapter := testAdapter(t, server.URL)
	if _, err := adapter.CreatePayment(context.Background(), testInput()); !errors.Is(err, ErrResponseInvalid) {
		t.Fatalf("expected ErrResponseInvalid, got %v", err)
	}
}

func TestCreatePaymentContextTimeoutSurfaces(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server's background read can observe the
		// client disconnect and cancel the request context.
		_, _ = io.Copy(io.Discard, r.Body)
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	adapter := testAdapter(t, server.URL)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	_, err := adapter.CreatePayment(ctx, testInput())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation to surface, got %v", err)
	}
}

func TestVerifyCallbackNotSupported(t *testing.T) {
	adapter := testAdapter(t, "https://example.com")
	if _, err := adapter.VerifyCallback(nil); err != ErrCallbackNotSupported {
		t.Fatalf("expected ErrCallbackNotSupported, got %v", err)
	}
}
