package models

import (
	"time"

	"gorm.io/gorm"
)

// RefundRequest a refund raised against a completed payment attempt
type RefundRequest struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	RefundID    string         `gorm:"uniqueIndex;size:64;not null" json:"refund_id"`
	PaymentID   string         `gorm:"index;size:64;not null" json:"payment_id"`
	OrderID     string         `gorm:"index;size:64;not null" json:"order_id"`
	Amount      Money          `gorm:"type:decimal(20,2);not null" json:"amount"`
	Reason      string         `gorm:"type:text" json:"reason"`
	Status      string         `gorm:"index;size:16;not null" json:"status"` // pending/approved/rejected/completed
	AdminNotes  string         `gorm:"type:text" json:"admin_notes"`
	RefundTxnID string         `gorm:"size:128" json:"refund_txn_id"`
	RequestedBy uint           `gorm:"index" json:"requested_by"`
	ProcessedBy uint           `json:"processed_by"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	ProcessedAt *time.Time     `json:"processed_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name
func (RefundRequest) TableName() string {
	return "refund_requests"
}
