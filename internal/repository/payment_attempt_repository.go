package repository

import (
	"errors"
	"strings"

	"github.com/paygate-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaymentAttemptRepository payment attempt data access
type PaymentAttemptRepository interface {
	Create(attempt *models.PaymentAttempt) error
	Update(attempt *models.PaymentAttempt) error
	GetByPaymentID(paymentID string) (*models.PaymentAttempt, error)
	GetByPaymentIDForUpdate(paymentID string) (*models.PaymentAttempt, error)
	ListByOrderID(orderID string) ([]models.PaymentAttempt, error)
	ListByUser(userID uint, filter AttemptListFilter) ([]models.PaymentAttempt, int64, error)
	WithTx(tx *gorm.DB) *GormPaymentAttemptRepository
}

// AttemptListFilter list filter for payment attempts
type AttemptListFilter struct {
	Status   string
	Method   string
	Page     int
	PageSize int
}

// GormPaymentAttemptRepository GORM implementation
type GormPaymentAttemptRepository struct {
	db *gorm.DB
}

// NewPaymentAttemptRepository creates the repository
func NewPaymentAttemptRepository(db *gorm.DB) *GormPaymentAttemptRepository {
	return &GormPaymentAttemptRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *GormPaymentAttemptRepository) WithTx(tx *gorm.DB) *GormPaymentAttemptRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentAttemptRepository{db: tx}
}

// Create inserts an attempt
func (r *GormPaymentAttemptRepository) Create(attempt *models.PaymentAttempt) error {
	return r.db.Create(attempt).Error
}

// Update saves an attempt
func (r *GormPaymentAttemptRepository) Update(attempt *models.PaymentAttempt) error {
	return r.db.Save(attempt).Error
}

// GetByPaymentID fetches an attempt by its external payment id
func (r *GormPaymentAttemptRepository) GetByPaymentID(paymentID string) (*models.PaymentAttempt, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, nil
	}
	var attempt models.PaymentAttempt
	if err := r.db.Where("payment_id = ?", paymentID).First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

// GetByPaymentIDForUpdate fetches an attempt with a row lock. Must run
// inside a transaction.
func (r *GormPaymentAttemptRepository) GetByPaymentIDForUpdate(paymentID string) (*models.PaymentAttempt, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, nil
	}
	var attempt models.PaymentAttempt
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_id = ?", paymentID).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

// ListByOrderID lists attempts for an order, newest first
func (r *GormPaymentAttemptRepository) ListByOrderID(orderID string) ([]models.PaymentAttempt, error) {
	var attempts []models.PaymentAttempt
	if err := r.db.Where("order_id = ?", orderID).Order("id desc").Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

// ListByUser lists a user's attempts with paging
func (r *GormPaymentAttemptRepository) ListByUser(userID uint, filter AttemptListFilter) ([]models.PaymentAttempt, int64, error) {
	query := r.db.Model(&models.PaymentAttempt{}).Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Method != "" {
		query = query.Where("payment_method = ?", filter.Method)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var attempts []models.PaymentAttempt
	if err := query.Order("id desc").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return attempts, total, nil
}
