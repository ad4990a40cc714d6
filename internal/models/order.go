package models

import (
	"time"

	"gorm.io/gorm"
)

// Order minimal order row; payment only validates existence and ownership
type Order struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	OrderNo     string         `gorm:"uniqueIndex;size:64;not null" json:"order_no"`
	UserID      uint           `gorm:"index" json:"user_id"`
	TotalAmount Money          `gorm:"type:decimal(20,2);not null" json:"total_amount"`
	Currency    string         `gorm:"size:8;not null" json:"currency"`
	Status      string         `gorm:"index;size:32;not null" json:"status"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	PaidAt      *time.Time     `json:"paid_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name
func (Order) TableName() string {
	return "orders"
}
