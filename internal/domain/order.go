package domain

import (
	"context"
	"database/sql/driver"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

type OrderFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	PaymentMethod string
	Search        string
}

// AddressSnapshot is the shipping address copied onto the order at placement.
type AddressSnapshot struct {
	FullName    string `json:"fullName"`
	Phone       string `json:"phone"`
	AddressLine string `json:"addressLine"`
	Landmark    string `json:"landmark,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postalCode"`
	Country     string `json:"country"`
}

func (a AddressSnapshot) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *AddressSnapshot) Scan(value any) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, a)
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          string          `json:"userId"`
	Status          OrderStatus     `json:"status"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Tax             decimal.Decimal `json:"tax"`
	Shipping        decimal.Decimal `json:"shipping"`
	CouponDiscount  decimal.Decimal `json:"couponDiscount"`
	Total           decimal.Decimal `json:"total"`
	CouponID        *string         `json:"couponId,omitempty"`
	CouponCode      string          `json:"couponCode,omitempty"`
	ShippingAddress AddressSnapshot `json:"shippingAddress"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	// Provider references are set only for online payments.
	ProviderOrderID   string          `json:"providerOrderId,omitempty"`
	ProviderPaymentID string          `json:"providerPaymentId,omitempty"`
	RefundAmount      decimal.Decimal `json:"refundAmount"`
	RefundStatus      RefundStatus    `json:"refundStatus"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// ItemByID returns a pointer into o.Items so callers can mutate the line in place.
func (o *Order) ItemByID(id string) *OrderItem {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}

// LineStatuses returns the status of every line, cancelled ones included.
func (o *Order) LineStatuses() []LineStatus {
	statuses := make([]LineStatus, 0, len(o.Items))
	for _, item := range o.Items {
		statuses = append(statuses, item.Status)
	}
	return statuses
}

// OrderItem is an immutable snapshot of what was bought plus its mutable fulfilment status.
type OrderItem struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"orderId"`
	ProductID     string          `json:"productId"`
	VariantID     string          `json:"variantId"`
	Name          string          `json:"name"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	Images        []string        `json:"images"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`         // post-offer unit price
	OriginalPrice decimal.Decimal `json:"originalPrice"` // list unit price
	// CouponDiscountAllocated is this line's share of the order coupon discount.
	CouponDiscountAllocated decimal.Decimal `json:"couponDiscountAllocated"`
	Status                  LineStatus      `json:"status"`
	CancelReason            string          `json:"cancelReason,omitempty"`
	Return                  *ReturnDetails  `json:"returnDetails,omitempty"`
	UpdatedAt               time.Time       `json:"updatedAt"`
}

// LineSubtotal is price × quantity before coupon allocation.
func (i OrderItem) LineSubtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PaidAmount is what the customer paid for this line after its coupon share.
func (i OrderItem) PaidAmount() decimal.Decimal {
	return i.LineSubtotal().Sub(i.CouponDiscountAllocated)
}

type ReturnDetails struct {
	Reason       string          `json:"reason"`
	RequestedAt  time.Time       `json:"requestedAt"`
	Status       ReturnStatus    `json:"status"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
	ResolvedAt   *time.Time      `json:"resolvedAt,omitempty"`
	ResolvedBy   string          `json:"resolvedBy,omitempty"`
}

type OrderHistory struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	OrderItemID    *string   `json:"orderItemId,omitempty"`
	PreviousStatus *string   `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Reason         *string   `json:"reason"`
	CreatedBy      *string   `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

type OrderRepository interface {
	// CreateOrder inserts the order and its items, assigning ids and Version 1.
	CreateOrder(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetByUserID(ctx context.Context, userID string) ([]Order, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)
	// UpdateOrder persists the order and its items when the stored version still equals order.Version,
	// then increments order.Version. A stale version yields ErrVersionConflict.
	UpdateOrder(ctx context.Context, order *Order) error

	CreateOrderHistory(ctx context.Context, history *OrderHistory) error
	GetOrderHistory(ctx context.Context, orderID string) ([]OrderHistory, error)
}
