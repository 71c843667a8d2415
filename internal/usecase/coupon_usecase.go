package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponUsecase covers coupon administration and applying a coupon to a cart.
type CouponUsecase struct {
	couponRepo domain.CouponRepository
	pricing    *PricingUsecase
	sessions   domain.CheckoutSessionStore
	now        func() time.Time
}

func NewCouponUsecase(couponRepo domain.CouponRepository, pricing *PricingUsecase, sessions domain.CheckoutSessionStore) *CouponUsecase {
	return &CouponUsecase{
		couponRepo: couponRepo,
		pricing:    pricing,
		sessions:   sessions,
		now:        time.Now,
	}
}

// CouponRequest is the admin input for creating or updating a coupon.
type CouponRequest struct {
	Code              string          `json:"code" validate:"required,min=3,max=32"`
	DiscountType      string          `json:"discountType" validate:"required,oneof=PERCENTAGE FLAT"`
	DiscountValue     decimal.Decimal `json:"discountValue"`
	MinimumPurchase   decimal.Decimal `json:"minimumPurchase"`
	MaxDiscount       decimal.Decimal `json:"maxDiscount"`
	ValidFrom         string          `json:"validFrom" validate:"required"`
	ValidTo           string          `json:"validTo" validate:"required"`
	UsageLimitPerUser int             `json:"usageLimitPerUser" validate:"gte=0"`
	IsActive          bool            `json:"isActive"`
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func couponFromRequest(req CouponRequest) (*domain.Coupon, error) {
	invalid := func(msg string) error { return pkgerrors.New(pkgerrors.CodeValidation, msg) }

	code := normalizeCode(req.Code)
	if code == "" {
		return nil, invalid("coupon code is required")
	}

	kind := domain.DiscountType(strings.ToUpper(req.DiscountType))
	if kind != domain.DiscountTypePercentage && kind != domain.DiscountTypeFlat {
		return nil, invalid("discount type must be PERCENTAGE or FLAT")
	}
	if !req.DiscountValue.IsPositive() {
		return nil, invalid("discount value must be greater than 0")
	}
	if req.MinimumPurchase.IsNegative() || req.MaxDiscount.IsNegative() {
		return nil, invalid("minimum purchase and max discount cannot be negative")
	}
	if kind == domain.DiscountTypePercentage && req.DiscountValue.GreaterThan(hundred) {
		return nil, invalid("percentage discount cannot exceed 100%")
	}
	// A flat coupon must never exceed the cart it applies to.
	if kind == domain.DiscountTypeFlat && !req.MinimumPurchase.GreaterThan(req.DiscountValue) {
		return nil, invalid("minimum purchase must be greater than the flat discount value")
	}

	from, err := parseISO8601(req.ValidFrom)
	if err != nil {
		return nil, invalid("validFrom: " + err.Error())
	}
	to, err := parseISO8601(req.ValidTo)
	if err != nil {
		return nil, invalid("validTo: " + err.Error())
	}
	if to.Before(from) {
		return nil, invalid("validTo must not be before validFrom")
	}

	return &domain.Coupon{
		Code:              code,
		DiscountType:      kind,
		DiscountValue:     req.DiscountValue,
		MinimumPurchase:   req.MinimumPurchase,
		MaxDiscount:       req.MaxDiscount,
		ValidFrom:         from,
		ValidTo:           to,
		UsageLimitPerUser: req.UsageLimitPerUser,
		IsActive:          req.IsActive,
	}, nil
}

func (uc *CouponUsecase) CreateCoupon(ctx context.Context, req CouponRequest) (*domain.Coupon, error) {
	coupon, err := couponFromRequest(req)
	if err != nil {
		return nil, err
	}

	existing, err := uc.couponRepo.GetCouponByCode(ctx, coupon.Code)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check coupon code: %w", err)
	}
	if existing != nil {
		return nil, duplicateCode(coupon.Code)
	}

	if err := uc.couponRepo.CreateCoupon(ctx, coupon); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, duplicateCode(coupon.Code)
		}
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	logger.FromContext(ctx).Info().Str("coupon", coupon.Code).Msg("coupon created")
	return coupon, nil
}

// ListCoupons returns paginated list of coupons.
func (uc *CouponUsecase) ListCoupons(ctx context.Context, limit, offset int) ([]domain.Coupon, int64, error) {
	limit = clampLimit(limit)

	coupons, err := uc.couponRepo.ListCoupons(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	total, err := uc.couponRepo.CountCoupons(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}
	return coupons, total, nil
}

// GetCoupon returns the coupon with its per-user usage counters.
func (uc *CouponUsecase) GetCoupon(ctx context.Context, id string) (*domain.Coupon, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon ID")
	}
	coupon, err := uc.couponRepo.GetCouponByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "coupon not found")
	}
	usages, err := uc.couponRepo.ListUsages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load coupon usage: %w", err)
	}
	coupon.UsedBy = usages
	return coupon, nil
}

func (uc *CouponUsecase) UpdateCoupon(ctx context.Context, id string, req CouponRequest) (*domain.Coupon, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon ID")
	}
	existing, err := uc.couponRepo.GetCouponByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "coupon not found")
	}

	coupon, err := couponFromRequest(req)
	if err != nil {
		return nil, err
	}
	if coupon.Code != existing.Code {
		dup, err := uc.couponRepo.GetCouponByCode(ctx, coupon.Code)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("failed to check coupon code: %w", err)
		}
		if dup != nil {
			return nil, duplicateCode(coupon.Code)
		}
	}

	coupon.ID = existing.ID
	coupon.CreatedAt = existing.CreatedAt
	if err := uc.couponRepo.UpdateCoupon(ctx, coupon); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, duplicateCode(coupon.Code)
		}
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}
	return coupon, nil
}

func (uc *CouponUsecase) DeleteCoupon(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid coupon ID")
	}
	if _, err := uc.couponRepo.GetCouponByID(ctx, id); err != nil {
		return notFoundOr(err, "coupon not found")
	}
	return uc.couponRepo.DeleteCoupon(ctx, id)
}

// ApplyCouponResult is returned to the customer after a coupon is accepted.
type ApplyCouponResult struct {
	Code       string          `json:"code"`
	Discount   decimal.Decimal `json:"discount"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Shipping   decimal.Decimal `json:"shipping"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// ApplyCoupon validates code against the user's priced cart and holds the discount in the
// checkout session. Usage is only recorded when the order is placed.
func (uc *CouponUsecase) ApplyCoupon(ctx context.Context, userID, code string) (*ApplyCouponResult, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := uc.lookupActive(ctx, code)
	if err != nil {
		return nil, err
	}
	used, err := uc.usageCount(ctx, coupon.ID, userID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	if err := CheckCouponEligibility(coupon, used, now); err != nil {
		return nil, err
	}

	pricing, err := uc.pricing.PriceCart(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	discount, err := EvaluateCoupon(coupon, pricing.Subtotal, used, now)
	if err != nil {
		return nil, err
	}

	pending := domain.PendingCoupon{
		CouponID:  coupon.ID,
		Code:      coupon.Code,
		Discount:  discount,
		AppliedAt: now,
	}
	if err := uc.sessions.SetPendingCoupon(ctx, userID, pending); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to store applied coupon")
	}

	effective := decimal.Min(discount, pricing.Subtotal.Add(pricing.Shipping))
	logger.FromContext(ctx).Info().
		Str("user_id", userID).
		Str("coupon", coupon.Code).
		Str("discount", discount.String()).
		Msg("coupon applied")

	return &ApplyCouponResult{
		Code:       coupon.Code,
		Discount:   discount,
		Subtotal:   pricing.Subtotal,
		Shipping:   pricing.Shipping,
		Tax:        pricing.Tax,
		GrandTotal: pricing.Subtotal.Add(pricing.Shipping).Add(pricing.Tax).Sub(effective),
	}, nil
}

// RemoveCoupon clears any applied coupon. Calling it without one is not an error.
func (uc *CouponUsecase) RemoveCoupon(ctx context.Context, userID string) error {
	if err := uc.sessions.ClearPendingCoupon(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to clear applied coupon")
	}
	return nil
}

// PendingCoupon returns the coupon currently held for the user, or nil.
func (uc *CouponUsecase) PendingCoupon(ctx context.Context, userID string) (*domain.PendingCoupon, error) {
	pending, err := uc.sessions.GetPendingCoupon(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to read applied coupon")
	}
	return pending, nil
}

// Revalidate re-runs the coupon checks for a held coupon against the cart being ordered.
func (uc *CouponUsecase) Revalidate(ctx context.Context, userID string, pending domain.PendingCoupon, cartTotal decimal.Decimal) (*domain.Coupon, decimal.Decimal, error) {
	coupon, err := uc.couponRepo.GetCouponByID(ctx, pending.CouponID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, decimal.Zero, couponNotFound(pending.Code)
		}
		return nil, decimal.Zero, fmt.Errorf("failed to load coupon: %w", err)
	}
	if !coupon.IsActive {
		return nil, decimal.Zero, couponNotFound(pending.Code)
	}
	discount, err := uc.evaluateForUser(ctx, coupon, userID, cartTotal)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return coupon, discount, nil
}

func (uc *CouponUsecase) lookupActive(ctx context.Context, code string) (*domain.Coupon, error) {
	coupon, err := uc.couponRepo.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, couponNotFound(code)
		}
		return nil, fmt.Errorf("failed to load coupon: %w", err)
	}
	if !coupon.IsActive {
		return nil, couponNotFound(code)
	}
	return coupon, nil
}

func (uc *CouponUsecase) usageCount(ctx context.Context, couponID, userID string) (int, error) {
	used, err := uc.couponRepo.GetUsageCount(ctx, couponID, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load coupon usage: %w", err)
	}
	return used, nil
}

func (uc *CouponUsecase) evaluateForUser(ctx context.Context, coupon *domain.Coupon, userID string, cartTotal decimal.Decimal) (decimal.Decimal, error) {
	used, err := uc.usageCount(ctx, coupon.ID, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return EvaluateCoupon(coupon, cartTotal, used, uc.now())
}

func duplicateCode(code string) error {
	return pkgerrors.Newf(pkgerrors.CodeConflict, "coupon code '%s' already exists", code)
}

func couponNotFound(code string) error {
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "coupon '%s' not found", code).WithReason(domain.ReasonCouponNotFound)
}

// CheckCouponEligibility runs the checks that do not depend on the cart: the validity
// window, then the per-user usage limit.
func CheckCouponEligibility(c *domain.Coupon, usedCount int, now time.Time) error {
	if !c.IsWithinWindow(now) {
		if now.After(c.ValidTo) {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "coupon '%s' has expired", c.Code).
				WithReason(domain.ReasonCouponExpired)
		}
		return pkgerrors.Newf(pkgerrors.CodeValidation, "coupon '%s' is not active yet", c.Code).
			WithReason(domain.ReasonCouponNotStarted)
	}
	if c.UsageLimitPerUser > 0 && usedCount >= c.UsageLimitPerUser {
		return pkgerrors.Newf(pkgerrors.CodeBusinessRule, "coupon '%s' usage limit reached", c.Code).
			WithReason(domain.ReasonCouponUsageExceeded)
	}
	return nil
}

// EvaluateCoupon runs the validity checks in a fixed order (window, per-user usage, minimum
// purchase, flat-coupon sanity) and returns the discount for cartTotal.
func EvaluateCoupon(c *domain.Coupon, cartTotal decimal.Decimal, usedCount int, now time.Time) (decimal.Decimal, error) {
	if err := CheckCouponEligibility(c, usedCount, now); err != nil {
		return decimal.Zero, err
	}
	if cartTotal.LessThan(c.MinimumPurchase) {
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "a minimum purchase of %s is required for coupon '%s'",
			c.MinimumPurchase.StringFixed(2), c.Code).
			WithReason(domain.ReasonCouponBelowMinimum).
			WithDetails(map[string]string{"minimumPurchase": c.MinimumPurchase.String()})
	}

	switch c.DiscountType {
	case domain.DiscountTypeFlat:
		if !c.DiscountValue.LessThan(c.MinimumPurchase) {
			return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeBusinessRule, "coupon '%s' is misconfigured", c.Code).
				WithReason(domain.ReasonCouponMisconfigured)
		}
		return decimal.Min(c.DiscountValue, cartTotal), nil
	case domain.DiscountTypePercentage:
		discount := domain.RoundUnit(cartTotal.Mul(c.DiscountValue).Div(hundred))
		if c.MaxDiscount.IsPositive() {
			discount = decimal.Min(discount, c.MaxDiscount)
		}
		return discount, nil
	default:
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeBusinessRule, "coupon '%s' has unknown discount type", c.Code).
			WithReason(domain.ReasonCouponMisconfigured)
	}
}

// AllocateCouponDiscount spreads discount over the lines in proportion to their subtotals,
// rounding each share to whole units. The last line absorbs the rounding remainder so the
// shares add up to discount; no share exceeds its line subtotal.
func AllocateCouponDiscount(lineSubtotals []decimal.Decimal, discount decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(lineSubtotals))
	for i := range shares {
		shares[i] = decimal.Zero
	}
	if len(lineSubtotals) == 0 || !discount.IsPositive() {
		return shares
	}

	total := decimal.Sum(decimal.Zero, lineSubtotals...)
	if !total.IsPositive() {
		return shares
	}

	allocated := decimal.Zero
	last := len(lineSubtotals) - 1
	for i := 0; i < last; i++ {
		share := domain.RoundUnit(lineSubtotals[i].Mul(discount).Div(total))
		share = decimal.Min(share, lineSubtotals[i], discount.Sub(allocated))
		shares[i] = share
		allocated = allocated.Add(share)
	}
	remainder := discount.Sub(allocated)
	shares[last] = decimal.Max(decimal.Zero, decimal.Min(remainder, lineSubtotals[last]))
	return shares
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// notFoundOr maps ErrNotFound to a typed NOT_FOUND and wraps anything else.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// parseISO8601 accepts RFC3339 timestamps and plain dates.
func parseISO8601(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format %q", s)
}
