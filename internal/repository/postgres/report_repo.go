package pgrepo

import (
	"context"
	"time"

	"solemate-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) domain.ReportRepository {
	return &reportRepository{db: db}
}

// ListReportLines returns every line of orders placed in [from, to). Online orders
// count only once their payment completed.
func (r *reportRepository) ListReportLines(ctx context.Context, from, to time.Time) ([]domain.ReportLine, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT o.id::text, o.order_number, o.payment_method, oi.status, oi.quantity,
		       oi.price, oi.original_price, oi.coupon_discount_allocated, o.created_at
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.created_at < $2
		  AND (o.payment_method <> 'razorpay' OR o.payment_status = 'COMPLETED')
		ORDER BY o.created_at, oi.id`, from, to)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var lines []domain.ReportLine
	for rows.Next() {
		var (
			l                      domain.ReportLine
			price, original, share pgtype.Numeric
		)
		if err := rows.Scan(&l.OrderID, &l.OrderNumber, &l.PaymentMethod, &l.Status, &l.Quantity,
			&price, &original, &share, &l.OrderedAt); err != nil {
			return nil, err
		}
		l.Price = numericToDecimal(price)
		l.OriginalPrice = numericToDecimal(original)
		l.CouponDiscountAllocated = numericToDecimal(share)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
