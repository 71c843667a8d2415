package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID                string          `json:"id"`
	Code              string          `json:"code"`
	DiscountType      DiscountType    `json:"discountType"`
	DiscountValue     decimal.Decimal `json:"discountValue"`
	MinimumPurchase   decimal.Decimal `json:"minimumPurchase"`
	MaxDiscount       decimal.Decimal `json:"maxDiscount"` // zero means uncapped
	ValidFrom         time.Time       `json:"validFrom"`
	ValidTo           time.Time       `json:"validTo"`
	UsageLimitPerUser int             `json:"usageLimitPerUser"` // zero means unlimited
	IsActive          bool            `json:"isActive"`
	UsedBy            []CouponUsage   `json:"usedBy,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

type CouponUsage struct {
	UserID    string    `json:"userId"`
	Count     int       `json:"count"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsWithinWindow reports whether now lies in [ValidFrom, ValidTo].
func (c Coupon) IsWithinWindow(now time.Time) bool {
	return !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}

// PendingCoupon is the coupon a user applied to their cart, held until the order is placed.
type PendingCoupon struct {
	CouponID  string          `json:"couponId"`
	Code      string          `json:"code"`
	Discount  decimal.Decimal `json:"discount"`
	AppliedAt time.Time       `json:"appliedAt"`
}

type CouponRepository interface {
	CreateCoupon(ctx context.Context, coupon *Coupon) error
	GetCouponByCode(ctx context.Context, code string) (*Coupon, error)
	GetCouponByID(ctx context.Context, id string) (*Coupon, error)
	ListCoupons(ctx context.Context, limit, offset int) ([]Coupon, error)
	CountCoupons(ctx context.Context) (int64, error)
	UpdateCoupon(ctx context.Context, coupon *Coupon) error
	DeleteCoupon(ctx context.Context, id string) error

	GetUsageCount(ctx context.Context, couponID, userID string) (int, error)
	ListUsages(ctx context.Context, couponID string) ([]CouponUsage, error)
	// IncrementUsage bumps the user's counter unless it already reached limit (limit <= 0 is unlimited).
	// Returns ErrCouponUsageExceeded when the limit is reached.
	IncrementUsage(ctx context.Context, couponID, userID string, limit int) error
}

// CheckoutSessionStore holds per-user checkout state that must not be persisted on the coupon.
type CheckoutSessionStore interface {
	GetPendingCoupon(ctx context.Context, userID string) (*PendingCoupon, error)
	SetPendingCoupon(ctx context.Context, userID string, coupon PendingCoupon) error
	// ClearPendingCoupon is idempotent.
	ClearPendingCoupon(ctx context.Context, userID string) error
}
