package pgrepo

import (
	"context"

	"solemate-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type couponRepository struct {
	db *pgxpool.Pool
}

func NewCouponRepository(db *pgxpool.Pool) domain.CouponRepository {
	return &couponRepository{db: db}
}

const couponColumns = `id::text, code, discount_type, discount_value, minimum_purchase, max_discount,
	valid_from, valid_to, usage_limit_per_user, is_active, created_at, updated_at`

func scanCoupon(row pgx.Row) (domain.Coupon, error) {
	var (
		c                        domain.Coupon
		value, minimum, maxValue pgtype.Numeric
	)
	err := row.Scan(&c.ID, &c.Code, &c.DiscountType, &value, &minimum, &maxValue,
		&c.ValidFrom, &c.ValidTo, &c.UsageLimitPerUser, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	c.DiscountValue = numericToDecimal(value)
	c.MinimumPurchase = numericToDecimal(minimum)
	c.MaxDiscount = numericToDecimal(maxValue)
	return c, err
}

func (r *couponRepository) CreateCoupon(ctx context.Context, c *domain.Coupon) error {
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO coupons (code, discount_type, discount_value, minimum_purchase, max_discount,
			valid_from, valid_to, usage_limit_per_user, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id::text, created_at, updated_at`,
		c.Code, string(c.DiscountType), decimalToNumeric(c.DiscountValue), decimalToNumeric(c.MinimumPurchase),
		decimalToNumeric(c.MaxDiscount), c.ValidFrom, c.ValidTo, c.UsageLimitPerUser, c.IsActive).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapErr(err)
}

func (r *couponRepository) GetCouponByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	c, err := scanCoupon(conn(ctx, r.db).QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE code = $1`, code))
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *couponRepository) GetCouponByID(ctx context.Context, id string) (*domain.Coupon, error) {
	c, err := scanCoupon(conn(ctx, r.db).QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *couponRepository) ListCoupons(ctx context.Context, limit, offset int) ([]domain.Coupon, error) {
	limit, offset = pageOffset(limit, offset)
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

func (r *couponRepository) CountCoupons(ctx context.Context) (int64, error) {
	var total int64
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&total)
	return total, err
}

func (r *couponRepository) UpdateCoupon(ctx context.Context, c *domain.Coupon) error {
	err := conn(ctx, r.db).QueryRow(ctx, `
		UPDATE coupons SET code = $2, discount_type = $3, discount_value = $4, minimum_purchase = $5,
			max_discount = $6, valid_from = $7, valid_to = $8, usage_limit_per_user = $9, is_active = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.Code, string(c.DiscountType), decimalToNumeric(c.DiscountValue), decimalToNumeric(c.MinimumPurchase),
		decimalToNumeric(c.MaxDiscount), c.ValidFrom, c.ValidTo, c.UsageLimitPerUser, c.IsActive).
		Scan(&c.UpdatedAt)
	return mapErr(err)
}

func (r *couponRepository) DeleteCoupon(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *couponRepository) GetUsageCount(ctx context.Context, couponID, userID string) (int, error) {
	var count int
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT COALESCE((SELECT used_count FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2), 0)`,
		couponID, userID).Scan(&count)
	return count, mapErr(err)
}

func (r *couponRepository) ListUsages(ctx context.Context, couponID string) ([]domain.CouponUsage, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT user_id::text, used_count, updated_at FROM coupon_usages
		WHERE coupon_id = $1 ORDER BY updated_at DESC`, couponID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var usages []domain.CouponUsage
	for rows.Next() {
		var u domain.CouponUsage
		if err := rows.Scan(&u.UserID, &u.Count, &u.UpdatedAt); err != nil {
			return nil, err
		}
		usages = append(usages, u)
	}
	return usages, rows.Err()
}

// IncrementUsage upserts the per-user counter. The conflict branch only fires while the
// counter is below limit, so two racing checkouts cannot both consume the last use.
func (r *couponRepository) IncrementUsage(ctx context.Context, couponID, userID string, limit int) error {
	if limit <= 0 {
		_, err := conn(ctx, r.db).Exec(ctx, `
			INSERT INTO coupon_usages (coupon_id, user_id, used_count) VALUES ($1, $2, 1)
			ON CONFLICT (coupon_id, user_id) DO UPDATE
			SET used_count = coupon_usages.used_count + 1, updated_at = NOW()`, couponID, userID)
		return mapErr(err)
	}

	tag, err := conn(ctx, r.db).Exec(ctx, `
		INSERT INTO coupon_usages (coupon_id, user_id, used_count) VALUES ($1, $2, 1)
		ON CONFLICT (coupon_id, user_id) DO UPDATE
		SET used_count = coupon_usages.used_count + 1, updated_at = NOW()
		WHERE coupon_usages.used_count < $3`, couponID, userID, limit)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCouponUsageExceeded
	}
	return nil
}
