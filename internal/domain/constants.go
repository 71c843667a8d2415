package domain

// LineStatus is the fulfilment state of a single order line.
type LineStatus string

const (
	LineStatusOrdered         LineStatus = "ORDERED"
	LineStatusShipped         LineStatus = "SHIPPED"
	LineStatusOutForDelivery  LineStatus = "OUT_FOR_DELIVERY"
	LineStatusDelivered       LineStatus = "DELIVERED"
	LineStatusCancelled       LineStatus = "CANCELLED"
	LineStatusReturnRequested LineStatus = "RETURN_REQUESTED"
	LineStatusReturned        LineStatus = "RETURNED"
)

// OrderStatus is always derived from the line statuses, see DeriveOrderStatus.
type OrderStatus string

const (
	OrderStatusPending            OrderStatus = "PENDING"
	OrderStatusInProgress         OrderStatus = "IN_PROGRESS"
	OrderStatusDelivered          OrderStatus = "DELIVERED"
	OrderStatusCancelled          OrderStatus = "CANCELLED"
	OrderStatusReturned           OrderStatus = "RETURNED"
	OrderStatusPartiallyDelivered OrderStatus = "PARTIALLY_DELIVERED"
	OrderStatusPartiallyShipped   OrderStatus = "PARTIALLY_SHIPPED"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

type RefundStatus string

const (
	RefundStatusNone    RefundStatus = "NONE"
	RefundStatusPartial RefundStatus = "PARTIAL_REFUND"
	RefundStatusFull    RefundStatus = "FULL_REFUND"
)

type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "PENDING"
	ReturnStatusApproved ReturnStatus = "APPROVED"
	ReturnStatusRejected ReturnStatus = "REJECTED"
)

type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "cod"
	PaymentMethodWallet   PaymentMethod = "wallet"
	PaymentMethodRazorpay PaymentMethod = "razorpay"
)

// IsOnline reports whether the method settles through the payment provider.
func (m PaymentMethod) IsOnline() bool {
	return m == PaymentMethodRazorpay
}

// RefundsToWallet reports whether cancelled amounts go back to the customer's wallet.
func (m PaymentMethod) RefundsToWallet() bool {
	return m == PaymentMethodWallet || m == PaymentMethodRazorpay
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodWallet, PaymentMethodRazorpay:
		return true
	}
	return false
}

type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFlat       DiscountType = "FLAT"
)

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// Inventory log reasons
const (
	InventoryReasonOrderPlaced      = "order_placed"
	InventoryReasonPaymentConfirmed = "payment_confirmed"
	InventoryReasonCancelled        = "cancelled"
	InventoryReasonReturned         = "returned"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Rejection reasons carried on typed errors.
const (
	ReasonCartEmpty           = "CART_EMPTY"
	ReasonCartQuantity        = "CART_QUANTITY_LIMIT"
	ReasonProductUnavailable  = "PRODUCT_UNAVAILABLE"
	ReasonInsufficientStock   = "INSUFFICIENT_STOCK"
	ReasonCouponNotFound      = "COUPON_NOT_FOUND"
	ReasonCouponExpired       = "COUPON_EXPIRED"
	ReasonCouponNotStarted    = "COUPON_NOT_STARTED"
	ReasonCouponUsageExceeded = "COUPON_USAGE_EXCEEDED"
	ReasonCouponBelowMinimum  = "COUPON_BELOW_MINIMUM"
	ReasonCouponMisconfigured = "COUPON_MISCONFIGURED"
	ReasonInsufficientBalance = "INSUFFICIENT_WALLET_BALANCE"
	ReasonPaymentNotCompleted = "PAYMENT_NOT_COMPLETED"
	ReasonSignatureMismatch   = "SIGNATURE_MISMATCH"
	ReasonInvalidTransition   = "INVALID_TRANSITION"
	ReasonReturnResolved      = "RETURN_ALREADY_RESOLVED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusInProgress,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturned,
	OrderStatusPartiallyDelivered,
	OrderStatusPartiallyShipped,
}

var LineStatuses = []LineStatus{
	LineStatusOrdered,
	LineStatusShipped,
	LineStatusOutForDelivery,
	LineStatusDelivered,
	LineStatusCancelled,
	LineStatusReturnRequested,
	LineStatusReturned,
}

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusCompleted,
	PaymentStatusFailed,
}

var PaymentMethods = []PaymentMethod{
	PaymentMethodCOD,
	PaymentMethodWallet,
	PaymentMethodRazorpay,
}
