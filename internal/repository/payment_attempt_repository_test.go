package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:attempt_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Order{},
		&models.PaymentAttempt{},
		&models.RefundRequest{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func newAttempt(paymentID, orderID, status string, amount int64) models.PaymentAttempt {
	return models.PaymentAttempt{
		PaymentID:     paymentID,
		OrderID:       orderID,
		UserID:        1,
		Amount:        models.NewMoneyFromDecimal(decimal.NewFromInt(amount)),
		Currency:      "VND",
		PaymentMethod: constants.PaymentMethodVNPay,
		Status:        status,
	}
}

func TestPaymentAttemptRepositoryGetByPaymentID(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewPaymentAttemptRepository(db)

	attempt := newAttempt("pay-100", "ORD-100", constants.PaymentStatusPending, 250000)
	if err := repo.Create(&attempt); err != nil {
		t.Fatalf("create attempt failed: %v", err)
	}

	got, err := repo.GetByPaymentID("pay-100")
	if err != nil {
		t.Fatalf("get attempt failed: %v", err)
	}
	if got == nil || got.OrderID != "ORD-100" {
		t.Fatalf("unexpected attempt: %+v", got)
	}

	missing, err := repo.GetByPaymentID("pay-does-not-exist")
	if err != nil {
		t.Fatalf("get missing attempt failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("missing attempt must be nil, got %+v", missing)
	}

	blank, err := repo.GetByPaymentID("  ")
	if err != nil || blank != nil {
		t.Fatalf("blank payment id must resolve to nil, nil")
	}
}

func TestPaymentAttemptRepositoryUniquePaymentID(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewPaymentAttemptRepository(db)

	first := newAttempt("pay-200", "ORD-200", constants.PaymentStatusPending, 100)
	if err := repo.Create(&first); err != nil {
		t.Fatalf("create attempt failed: %v", err)
	}
	dup := newAttempt("pay-200", "ORD-201", constants.PaymentStatusPending, 100)
	if err := repo.Create(&dup); err == nil {
		t.Fatalf("duplicate payment id must be rejected")
	}
}

func TestPaymentAttemptRepositoryGetForUpdateInsideTx(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewPaymentAttemptRepository(db)

	attempt := newAttempt("pay-300", "ORD-300", constants.PaymentStatusPending, 500)
	if err := repo.Create(&attempt); err != nil {
		t.Fatalf("create attempt failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).GetByPaymentIDForUpdate("pay-300")
		if err != nil {
			return err
		}
		if locked == nil {
			t.Fatalf("expected locked attempt")
		}
		locked.Status = constants.PaymentStatusCompleted
		return repo.WithTx(tx).Update(locked)
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	got, err := repo.GetByPaymentID("pay-300")
	if err != nil {
		t.Fatalf("get attempt failed: %v", err)
	}
	if got.Status != constants.PaymentStatusCompleted {
		t.Fatalf("update inside tx not visible: %s", got.Status)
	}
}

func TestPaymentAttemptRepositoryListByUserFilters(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewPaymentAttemptRepository(db)

	a1 := newAttempt("pay-401", "ORD-401", constants.PaymentStatusPending, 100)
	a2 := newAttempt("pay-402", "ORD-402", constants.PaymentStatusCompleted, 200)
	a3 := newAttempt("pay-403", "ORD-403", constants.PaymentStatusCompleted, 300)
	a3.PaymentMethod = constants.PaymentMethodMoMo
	for _, a := range []*models.PaymentAttempt{&a1, &a2, &a3} {
		if err := repo.Create(a); err != nil {
			t.Fatalf("create attempt failed: %v", err)
		}
	}

	completed, total, err := repo.ListByUser(1, AttemptListFilter{Status: constants.PaymentStatusCompleted})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(completed) != 2 {
		t.Fatalf("expected 2 completed attempts, got total=%d len=%d", total, len(completed))
	}
	if completed[0].PaymentID != "pay-403" {
		t.Fatalf("expected newest first, got %s", completed[0].PaymentID)
	}

	momoOnly, total, err := repo.ListByUser(1, AttemptListFilter{Method: constants.PaymentMethodMoMo})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || momoOnly[0].PaymentID != "pay-403" {
		t.Fatalf("unexpected momo filter result")
	}
}

func TestRefundRepositorySumSkipsRejected(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewRefundRepository(db)

	refunds := []models.RefundRequest{
		{RefundID: "ref-1", PaymentID: "pay-500", OrderID: "ORD-500", Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)), Status: constants.RefundStatusPending},
		{RefundID: "ref-2", PaymentID: "pay-500", OrderID: "ORD-500", Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(150)), Status: constants.RefundStatusCompleted},
		{RefundID: "ref-3", PaymentID: "pay-500", OrderID: "ORD-500", Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(999)), Status: constants.RefundStatusRejected},
		{RefundID: "ref-4", PaymentID: "pay-OTHER", OrderID: "ORD-501", Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)), Status: constants.RefundStatusPending},
	}
	for i := range refunds {
		if err := repo.Create(&refunds[i]); err != nil {
			t.Fatalf("create refund failed: %v", err)
		}
	}

	total, err := repo.SumRefundedByPayment("pay-500")
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected 250, got %s", total)
	}

	empty, err := repo.SumRefundedByPayment("pay-none")
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !empty.IsZero() {
		t.Fatalf("expected zero for unknown payment, got %s", empty)
	}
}

func TestOrderRepositoryExistsAndMarkPaid(t *testing.T) {
	db := setupRepositoryTest(t)
	repo := NewOrderRepository(db)

	order := models.Order{
		OrderNo:     "ORD-600",
		UserID:      7,
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(80000)),
		Currency:    "VND",
		Status:      constants.OrderStatusPendingPayment,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	ok, err := repo.Exists("ORD-600", 7)
	if err != nil || !ok {
		t.Fatalf("expected order to exist for owner: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Exists("ORD-600", 8)
	if err != nil || ok {
		t.Fatalf("order must not exist for another user: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Exists("ORD-601", 7)
	if err != nil || ok {
		t.Fatalf("unknown order must not exist: ok=%v err=%v", ok, err)
	}

	paidAt := time.Now().UTC().Truncate(time.Second)
	if err := repo.MarkPaid("ORD-600", paidAt); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	got, err := repo.GetByOrderNo("ORD-600")
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got.Status != constants.OrderStatusPaid || got.PaidAt == nil {
		t.Fatalf("order not marked paid: %+v", got)
	}
}
