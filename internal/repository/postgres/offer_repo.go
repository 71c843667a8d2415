package pgrepo

import (
	"context"
	"time"

	"solemate-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type offerRepository struct {
	db *pgxpool.Pool
}

func NewOfferRepository(db *pgxpool.Pool) domain.OfferRepository {
	return &offerRepository{db: db}
}

const offerColumns = `id::text, name, discount_percentage, product_ids, category_ids, is_active,
	valid_from, valid_to, created_at, updated_at`

func scanOffer(row pgx.Row) (domain.Offer, error) {
	var o domain.Offer
	err := row.Scan(&o.ID, &o.Name, &o.DiscountPercentage, &o.ProductIDs, &o.CategoryIDs, &o.IsActive,
		&o.ValidFrom, &o.ValidTo, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func (r *offerRepository) Create(ctx context.Context, offer *domain.Offer) error {
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO offers (name, discount_percentage, product_ids, category_ids, is_active, valid_from, valid_to)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at, updated_at`,
		offer.Name, offer.DiscountPercentage, emptyIfNil(offer.ProductIDs), emptyIfNil(offer.CategoryIDs),
		offer.IsActive, offer.ValidFrom, offer.ValidTo).
		Scan(&offer.ID, &offer.CreatedAt, &offer.UpdatedAt)
	return mapErr(err)
}

func (r *offerRepository) Update(ctx context.Context, offer *domain.Offer) error {
	err := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE offers SET name = $2, discount_percentage = $3, product_ids = $4, category_ids = $5,
			is_active = $6, valid_from = $7, valid_to = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		offer.ID, offer.Name, offer.DiscountPercentage, emptyIfNil(offer.ProductIDs), emptyIfNil(offer.CategoryIDs),
		offer.IsActive, offer.ValidFrom, offer.ValidTo).
		Scan(&offer.UpdatedAt)
	return mapErr(err)
}

func (r *offerRepository) GetByID(ctx context.Context, id string) (*domain.Offer, error) {
	o, err := scanOffer(conn(ctx, r.db).QueryRow(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

func (r *offerRepository) List(ctx context.Context, limit, offset int) ([]domain.Offer, int64, error) {
	limit, offset = pageOffset(limit, offset)
	db := conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM offers`).Scan(&total); err != nil {
		return nil, 0, err
	}

	offers, err := r.query(ctx, `SELECT `+offerColumns+` FROM offers ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return offers, total, nil
}

func (r *offerRepository) ListEffective(ctx context.Context, now time.Time) ([]domain.Offer, error) {
	return r.query(ctx, `SELECT `+offerColumns+` FROM offers
		WHERE is_active AND valid_from <= $1 AND valid_to >= $1
		ORDER BY discount_percentage DESC`, now)
}

func (r *offerRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *offerRepository) query(ctx context.Context, sql string, args ...any) ([]domain.Offer, error) {
	rows, err := conn(ctx, r.db).Query(ctx, sql, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
