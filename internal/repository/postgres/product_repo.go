package pgrepo

import (
	"context"
	"fmt"

	"solemate-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type productRepository struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) domain.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	var (
		p          domain.Product
		price      pgtype.Numeric
		categoryID *string
		typeID     *string
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT id::text, name, slug, brand, category_id::text, type_id::text, price, is_active, created_at, updated_at
		FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Slug, &p.Brand, &categoryID, &typeID, &price, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	p.CategoryID = ptrString(categoryID)
	p.TypeID = ptrString(typeID)
	p.Price = numericToDecimal(price)
	return &p, nil
}

func (r *productRepository) GetVariantByID(ctx context.Context, id string) (*domain.Variant, error) {
	var v domain.Variant
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT id::text, product_id::text, size, color, sku, stock, images
		FROM variants WHERE id = $1`, id).
		Scan(&v.ID, &v.ProductID, &v.Size, &v.Color, &v.SKU, &v.Stock, &v.Images)
	if err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

// UpdateStock applies the delta with a conditional update so concurrent checkouts
// can never drive stock below zero, then records the change.
func (r *productRepository) UpdateStock(ctx context.Context, variantID string, delta int, reason, referenceID string) error {
	db := conn(ctx, r.db)

	var productID string
	err := db.QueryRow(ctx, `
		UPDATE variants SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING product_id::text`, variantID, delta).Scan(&productID)
	if err != nil {
		err = mapErr(err)
		if err == domain.ErrNotFound {
			if _, lookupErr := r.GetVariantByID(ctx, variantID); lookupErr != nil {
				return lookupErr
			}
			return fmt.Errorf("%w: variant %s", domain.ErrInsufficientStock, variantID)
		}
		return err
	}

	_, err = db.Exec(ctx, `
		INSERT INTO inventory_logs (product_id, variant_id, change_amount, reason, reference_id)
		VALUES ($1, $2, $3, $4, $5)`, productID, variantID, delta, reason, referenceID)
	return err
}

func (r *productRepository) GetInventoryLogs(ctx context.Context, variantID string, limit, offset int) ([]domain.InventoryLog, error) {
	limit, offset = pageOffset(limit, offset)
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id, variant_id::text, change_amount, reason, reference_id, created_at
		FROM inventory_logs WHERE variant_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, variantID, limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var logs []domain.InventoryLog
	for rows.Next() {
		var l domain.InventoryLog
		if err := rows.Scan(&l.ID, &l.VariantID, &l.ChangeAmount, &l.Reason, &l.ReferenceID, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
