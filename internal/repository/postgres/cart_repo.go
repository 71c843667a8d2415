package pgrepo

import (
	"context"

	"solemate-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type cartRepository struct {
	db *pgxpool.Pool
}

func NewCartRepository(db *pgxpool.Pool) domain.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) GetCartItems(ctx context.Context, userID string) ([]domain.CartItem, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT ci.id::text, ci.user_id::text, ci.variant_id::text, ci.quantity, ci.created_at, ci.updated_at,
		       v.product_id::text, v.size, v.color, v.sku, v.stock, v.images,
		       p.name, p.slug, p.brand, p.category_id::text, p.type_id::text, p.price, p.is_active
		FROM cart_items ci
		JOIN variants v ON v.id = ci.variant_id
		JOIN products p ON p.id = v.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at, ci.id`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var (
			item       domain.CartItem
			price      pgtype.Numeric
			categoryID *string
			typeID     *string
		)
		err := rows.Scan(&item.ID, &item.UserID, &item.VariantID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt,
			&item.Variant.ProductID, &item.Variant.Size, &item.Variant.Color, &item.Variant.SKU, &item.Variant.Stock, &item.Variant.Images,
			&item.Product.Name, &item.Product.Slug, &item.Product.Brand, &categoryID, &typeID, &price, &item.Product.IsActive)
		if err != nil {
			return nil, err
		}
		item.Variant.ID = item.VariantID
		item.Product.ID = item.Variant.ProductID
		item.Product.CategoryID = ptrString(categoryID)
		item.Product.TypeID = ptrString(typeID)
		item.Product.Price = numericToDecimal(price)
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpsertCartItem sets the line quantity, keeping the original insertion time.
func (r *cartRepository) UpsertCartItem(ctx context.Context, userID, variantID string, quantity int) error {
	_, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO cart_items (user_id, variant_id, quantity) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, variant_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()`,
		userID, variantID, quantity)
	return mapErr(err)
}

func (r *cartRepository) RemoveCartItem(ctx context.Context, userID, variantID string) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND variant_id = $2`, userID, variantID)
	return mapErr(err)
}

func (r *cartRepository) ClearCart(ctx context.Context, userID string) error {
	_, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	return mapErr(err)
}
