package repository

import (
	"errors"
	"strings"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RefundRepository refund request data access
type RefundRepository interface {
	Create(refund *models.RefundRequest) error
	Update(refund *models.RefundRequest) error
	GetByRefundID(refundID string) (*models.RefundRequest, error)
	ListByPaymentID(paymentID string) ([]models.RefundRequest, error)
	SumRefundedByPayment(paymentID string) (decimal.Decimal, error)
	WithTx(tx *gorm.DB) *GormRefundRepository
}

// GormRefundRepository GORM implementation
type GormRefundRepository struct {
	db *gorm.DB
}

// NewRefundRepository creates the repository
func NewRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *GormRefundRepository) WithTx(tx *gorm.DB) *GormRefundRepository {
	if tx == nil {
		return r
	}
	return &GormRefundRepository{db: tx}
}

// Create inserts a refund request
func (r *GormRefundRepository) Create(refund *models.RefundRequest) error {
	return r.db.Create(refund).Error
}

// Update saves a refund request
func (r *GormRefundRepository) Update(refund *models.RefundRequest) error {
	return r.db.Save(refund).Error
}

// GetByRefundID fetches a refund request by its external id
func (r *GormRefundRepository) GetByRefundID(refundID string) (*models.RefundRequest, error) {
	refundID = strings.TrimSpace(refundID)
	if refundID == "" {
		return nil, nil
	}
	var refund models.RefundRequest
	if err := r.db.Where("refund_id = ?", refundID).First(&refund).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &refund, nil
}

// ListByPaymentID lists refund requests for a payment, newest first
func (r *GormRefundRepository) ListByPaymentID(paymentID string) ([]models.RefundRequest, error) {
	var refunds []models.RefundRequest
	if err := r.db.Where("payment_id = ?", paymentID).Order("id desc").Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

// SumRefundedByPayment sums the amounts of all non-rejected refund requests
// for a payment. Pending requests count against the cap.
func (r *GormRefundRepository) SumRefundedByPayment(paymentID string) (decimal.Decimal, error) {
	var refunds []models.RefundRequest
	err := r.db.Where("payment_id = ? AND status <> ?", paymentID, constants.RefundStatusRejected).
		Find(&refunds).Error
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, refund := range refunds {
		total = total.Add(refund.Amount.Decimal)
	}
	return total, nil
}
