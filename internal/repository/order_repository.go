package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/paygate-next/internal/constants"
	"github.com/paygate-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository order data access; payment only validates and marks paid
type OrderRepository interface {
	GetByOrderNo(orderNo string) (*models.Order, error)
	Exists(orderNo string, userID uint) (bool, error)
	MarkPaid(orderNo string, paidAt time.Time) error
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM implementation
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates the repository
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// GetByOrderNo fetches an order by its number
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, nil
	}
	var order models.Order
	if err := r.db.Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Exists reports whether the order exists and belongs to the user
func (r *GormOrderRepository) Exists(orderNo string, userID uint) (bool, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return false, nil
	}
	query := r.db.Model(&models.Order{}).Where("order_no = ?", orderNo)
	if userID != 0 {
		query = query.Where("user_id = ?", userID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkPaid flips the order to paid
func (r *GormOrderRepository) MarkPaid(orderNo string, paidAt time.Time) error {
	return r.db.Model(&models.Order{}).
		Where("order_no = ?", orderNo).
		Updates(map[string]interface{}{
			"status":  constants.OrderStatusPaid,
			"paid_at": paidAt,
		}).Error
}
