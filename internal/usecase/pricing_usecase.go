package usecase

import (
	"context"
	"fmt"
	"time"

	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PricingRules holds the storewide pricing constants.
type PricingRules struct {
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRate               decimal.Decimal
	MaxCartQuantity       int
	Currency              string
}

func DefaultPricingRules() PricingRules {
	return PricingRules{
		FreeShippingThreshold: decimal.NewFromInt(1000),
		FlatShippingFee:       decimal.NewFromInt(50),
		TaxRate:               decimal.Zero,
		MaxCartQuantity:       5,
		Currency:              "INR",
	}
}

// ShippingFor is free strictly above the threshold.
func (r PricingRules) ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(r.FreeShippingThreshold) {
		return decimal.Zero
	}
	return r.FlatShippingFee
}

func (r PricingRules) TaxFor(subtotal decimal.Decimal) decimal.Decimal {
	if r.TaxRate.IsZero() {
		return decimal.Zero
	}
	return domain.RoundUnit(subtotal.Mul(r.TaxRate))
}

// OfferResolution is the best offer for one product.
type OfferResolution struct {
	OfferID            string          `json:"offerId,omitempty"`
	DiscountPercentage int             `json:"discountPercentage"`
	OriginalPrice      decimal.Decimal `json:"originalPrice"`
	FinalPrice         decimal.Decimal `json:"finalPrice"`
}

// ResolveOffer picks the highest percentage among offers that target the product directly,
// through its category, or generally. Offers do not stack. The final price is not rounded.
func ResolveOffer(product domain.Product, offers []domain.Offer) OfferResolution {
	res := OfferResolution{
		OriginalPrice: product.Price,
		FinalPrice:    product.Price,
	}
	for _, offer := range offers {
		if !offer.AppliesTo(product) {
			continue
		}
		if offer.DiscountPercentage > res.DiscountPercentage {
			res.DiscountPercentage = offer.DiscountPercentage
			res.OfferID = offer.ID
		}
	}
	if res.DiscountPercentage > 0 {
		keep := hundred.Sub(decimal.NewFromInt(int64(res.DiscountPercentage)))
		res.FinalPrice = product.Price.Mul(keep).Div(hundred)
	}
	return res
}

// PricedLine is a cart line after offer resolution.
type PricedLine struct {
	Item               domain.CartItem `json:"item"`
	OfferID            string          `json:"offerId,omitempty"`
	DiscountPercentage int             `json:"discountPercentage"`
	OriginalPrice      decimal.Decimal `json:"originalPrice"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	LineTotal          decimal.Decimal `json:"lineTotal"`
}

type CartPricing struct {
	Lines          []PricedLine          `json:"lines"`
	Excluded       []domain.CartItem     `json:"excluded,omitempty"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	Shipping       decimal.Decimal       `json:"shipping"`
	Tax            decimal.Decimal       `json:"tax"`
	CouponDiscount decimal.Decimal       `json:"couponDiscount"`
	Total          decimal.Decimal       `json:"total"`
	Coupon         *domain.PendingCoupon `json:"coupon,omitempty"`
}

type PricingUsecase struct {
	cartRepo  domain.CartRepository
	offerRepo domain.OfferRepository
	rules     PricingRules
	now       func() time.Time
}

func NewPricingUsecase(cartRepo domain.CartRepository, offerRepo domain.OfferRepository, rules PricingRules) *PricingUsecase {
	return &PricingUsecase{
		cartRepo:  cartRepo,
		offerRepo: offerRepo,
		rules:     rules,
		now:       time.Now,
	}
}

func (u *PricingUsecase) Rules() PricingRules {
	return u.rules
}

// ActiveOffers loads the offers snapshot used for one request.
func (u *PricingUsecase) ActiveOffers(ctx context.Context) ([]domain.Offer, error) {
	now := u.now()
	offers, err := u.offerRepo.ListEffective(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load offers: %w", err)
	}
	effective := make([]domain.Offer, 0, len(offers))
	for _, o := range offers {
		if o.IsEffective(now) {
			effective = append(effective, o)
		}
	}
	return effective, nil
}

// PriceCart prices the user's cart with a fresh offers snapshot.
func (u *PricingUsecase) PriceCart(ctx context.Context, userID string, applied *domain.PendingCoupon) (*CartPricing, error) {
	offers, err := u.ActiveOffers(ctx)
	if err != nil {
		return nil, err
	}
	return u.PriceCartWithOffers(ctx, userID, offers, applied)
}

func (u *PricingUsecase) PriceCartWithOffers(ctx context.Context, userID string, offers []domain.Offer, applied *domain.PendingCoupon) (*CartPricing, error) {
	items, err := u.cartRepo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return PriceItems(items, offers, u.rules, applied)
}

// PriceItems drops inactive or under-stocked lines, resolves offers and builds the totals.
// An empty priced cart is a validation failure.
func PriceItems(items []domain.CartItem, offers []domain.Offer, rules PricingRules, applied *domain.PendingCoupon) (*CartPricing, error) {
	pricing := &CartPricing{}
	lineSum := decimal.Zero

	for _, item := range items {
		if !item.Product.IsActive || item.Quantity < 1 || item.Quantity > item.Variant.Stock {
			pricing.Excluded = append(pricing.Excluded, item)
			continue
		}
		res := ResolveOffer(item.Product, offers)
		line := PricedLine{
			Item:               item,
			OfferID:            res.OfferID,
			DiscountPercentage: res.DiscountPercentage,
			OriginalPrice:      res.OriginalPrice,
			UnitPrice:          res.FinalPrice,
			LineTotal:          res.FinalPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
		}
		lineSum = lineSum.Add(line.LineTotal)
		pricing.Lines = append(pricing.Lines, line)
	}

	if len(pricing.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart has no purchasable items").WithReason(domain.ReasonCartEmpty)
	}

	pricing.Subtotal = domain.RoundUnit(lineSum)
	pricing.Shipping = rules.ShippingFor(pricing.Subtotal)
	pricing.Tax = rules.TaxFor(pricing.Subtotal)
	pricing.CouponDiscount = decimal.Zero
	if applied != nil {
		pricing.Coupon = applied
		pricing.CouponDiscount = decimal.Min(applied.Discount, pricing.Subtotal.Add(pricing.Shipping))
	}
	pricing.Total = pricing.Subtotal.Add(pricing.Shipping).Add(pricing.Tax).Sub(pricing.CouponDiscount)
	return pricing, nil
}

// LineSubtotals returns the unrounded line totals in cart order.
func (p *CartPricing) LineSubtotals() []decimal.Decimal {
	out := make([]decimal.Decimal, len(p.Lines))
	for i, l := range p.Lines {
		out[i] = l.LineTotal
	}
	return out
}
