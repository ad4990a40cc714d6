package constants

// Payment attempt status values
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusUnknown   = "unknown"
)

// Payment method codes
const (
	PaymentMethodVNPay = "vnpay"
	PaymentMethodMoMo  = "momo"
	PaymentMethodCard  = "card"
	PaymentMethodCOD   = "cod"
)

// Refund request status values
const (
	RefundStatusPending   = "pending"
	RefundStatusApproved  = "approved"
	RefundStatusRejected  = "rejected"
	RefundStatusCompleted = "completed"
)

// Order status values the orchestrator reads
const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaid           = "paid"
	OrderStatusCancelled      = "cancelled"
)

// Async task type names
const (
	TaskPaymentCompletedNotify = "payment:completed_notify"
	TaskRefundRequestedAlert   = "refund:requested_alert"
)

// Queue names
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// Gateway callback acknowledgement bodies
const (
	VNPayCallbackOK   = `{"RspCode":"00","Message":"Confirm Success"}`
	VNPayCallbackFail = `{"RspCode":"99","Message":"Confirm Fail"}`
)

// CurrencyVND default currency for bank and wallet gateways
const CurrencyVND = "VND"
