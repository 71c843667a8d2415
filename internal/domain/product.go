package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parentId"`
	IsActive bool    `json:"isActive"`
}

// Product is a shoe model. Price is the list price; offers never modify it.
type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	Brand      string          `json:"brand"`
	CategoryID string          `json:"categoryId"`
	TypeID     string          `json:"typeId"`
	Price      decimal.Decimal `json:"price"`
	IsActive   bool            `json:"isActive"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// Variant is a purchasable size/color combination of a product.
type Variant struct {
	ID        string   `json:"id"`
	ProductID string   `json:"productId"`
	Size      string   `json:"size"`
	Color     string   `json:"color"`
	SKU       string   `json:"sku"`
	Stock     int      `json:"stock"`
	Images    []string `json:"images"`
}

type InventoryLog struct {
	ID           int64     `json:"id"`
	VariantID    string    `json:"variantId"`
	ChangeAmount int       `json:"changeAmount"`
	Reason       string    `json:"reason"`
	ReferenceID  string    `json:"referenceId"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ProductRepository interface {
	GetProductByID(ctx context.Context, id string) (*Product, error)
	GetVariantByID(ctx context.Context, id string) (*Variant, error)
	// UpdateStock applies delta to the variant's stock and records an inventory log.
	// A negative delta is applied only when enough stock remains, otherwise ErrInsufficientStock.
	UpdateStock(ctx context.Context, variantID string, delta int, reason, referenceID string) error
	GetInventoryLogs(ctx context.Context, variantID string, limit, offset int) ([]InventoryLog, error)
}
