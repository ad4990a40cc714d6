package cod

import (
	"context"
	"testing"

	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/payment"
	"github.com/shopspring/decimal"
)

func TestCreatePaymentImmediateSuccess(t *testing.T) {
	adapter := NewAdapter()
	result, err := adapter.CreatePayment(context.Background(), payment.CreateInput{
		PaymentID: "pay-555",
		OrderID:   "ORD-555",
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(50000)),
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if !result.Completed {
		t.Fatalf("cod must resolve synchronously")
	}
	if result.GatewayTxnID != "COD_ORD-555" {
		t.Fatalf("unexpected txn id: %s", result.GatewayTxnID)
	}
}

func TestCreatePaymentRejectsInvalidInput(t *testing.T) {
	adapter := NewAdapter()
	if _, err := adapter.CreatePayment(context.Background(), payment.CreateInput{}); err != ErrRequestInvalid {
		t.Fatalf("expected ErrRequestInvalid, got %v", err)
	}

	input := payment.CreateInput{
		PaymentID: "pay-1",
		OrderID:   "ORD-1",
		Amount:    models.NewMoneyFromDecimal(decimal.NewFromInt(-5)),
	}
	if _, err := adapter.CreatePayment(context.Background(), input); err != ErrRequestInvalid {
		t.Fatalf("expected ErrRequestInvalid for negative amount, got %v", err)
	}
}

func TestVerifyCallbackNotSupported(t *testing.T) {
	if _, err := NewAdapter().VerifyCallback(nil); err != ErrCallbackNotSupported {
		t.Fatalf("expected ErrCallbackNotSupported, got %v", err)
	}
}
