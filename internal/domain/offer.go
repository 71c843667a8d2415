package domain

import (
	"context"
	"slices"
	"time"
)

// Offer is a time-boxed percentage discount. With no product or category targets it is general.
type Offer struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	DiscountPercentage int       `json:"discountPercentage"`
	ProductIDs         []string  `json:"productIds"`
	CategoryIDs        []string  `json:"categoryIds"`
	IsActive           bool      `json:"isActive"`
	ValidFrom          time.Time `json:"validFrom"`
	ValidTo            time.Time `json:"validTo"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// IsEffective reports whether the offer is active at now; both window ends are inclusive.
func (o Offer) IsEffective(now time.Time) bool {
	return o.IsActive && !now.Before(o.ValidFrom) && !now.After(o.ValidTo)
}

func (o Offer) IsGeneral() bool {
	return len(o.ProductIDs) == 0 && len(o.CategoryIDs) == 0
}

// AppliesTo reports whether the offer targets the product directly, by category, or generally.
func (o Offer) AppliesTo(p Product) bool {
	if o.IsGeneral() {
		return true
	}
	if slices.Contains(o.ProductIDs, p.ID) {
		return true
	}
	return p.CategoryID != "" && slices.Contains(o.CategoryIDs, p.CategoryID)
}

type OfferRepository interface {
	Create(ctx context.Context, offer *Offer) error
	Update(ctx context.Context, offer *Offer) error
	GetByID(ctx context.Context, id string) (*Offer, error)
	List(ctx context.Context, limit, offset int) ([]Offer, int64, error)
	// ListEffective returns offers with isActive set whose window contains now.
	ListEffective(ctx context.Context, now time.Time) ([]Offer, error)
	Delete(ctx context.Context, id string) error
}
