package domain

import (
	"context"
	"time"
)

// CartItem is one variant line in a user's cart, joined with its variant and product.
type CartItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	VariantID string    `json:"variantId"`
	Quantity  int       `json:"quantity"`
	Variant   Variant   `json:"variant"`
	Product   Product   `json:"product"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CartRepository interface {
	// GetCartItems returns the user's lines in insertion order.
	GetCartItems(ctx context.Context, userID string) ([]CartItem, error)
	UpsertCartItem(ctx context.Context, userID, variantID string, quantity int) error
	RemoveCartItem(ctx context.Context, userID, variantID string) error
	ClearCart(ctx context.Context, userID string) error
}
