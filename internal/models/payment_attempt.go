package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentAttempt a single attempt to collect payment for an order
type PaymentAttempt struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	PaymentID     string         `gorm:"uniqueIndex;size:64;not null" json:"payment_id"` // external id handed to clients and gateways
	OrderID       string         `gorm:"index;size:64;not null" json:"order_id"`         // order number
	UserID        uint           `gorm:"index" json:"user_id"`
	Amount        Money          `gorm:"type:decimal(20,2);not null" json:"amount"`
	Currency      string         `gorm:"size:8;not null" json:"currency"`
	PaymentMethod string         `gorm:"index;size:32;not null" json:"payment_method"`
	Status        string         `gorm:"index;size:16;not null" json:"status"` // pending/completed/failed/cancelled
	GatewayTxnID  string         `gorm:"index;size:128" json:"gateway_txn_id"`
	ErrorMessage  string         `gorm:"type:text" json:"error_message"`
	PayURL        string         `gorm:"type:text" json:"pay_url"`
	QRCode        string         `gorm:"type:text" json:"qr_code"`
	GatewayExtra  JSON           `gorm:"type:json" json:"gateway_extra"` // raw gateway response fields
	ClientIP      string         `gorm:"size:64" json:"client_ip"`
	UserAgent     string         `gorm:"size:256" json:"user_agent"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`
	CompletedAt   *time.Time     `gorm:"index" json:"completed_at"`
	ExpiredAt     *time.Time     `gorm:"index" json:"expired_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name
func (PaymentAttempt) TableName() string {
	return "payment_attempts"
}

// IsTerminal reports whether the attempt reached an absorbing state
func (p *PaymentAttempt) IsTerminal() bool {
	switch p.Status {
	case "completed", "failed", "cancelled":
		return true
	}
	return false
}
