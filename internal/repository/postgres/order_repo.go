package pgrepo

import (
	"context"
	"fmt"
	"strings"

	"solemate-backend/internal/domain"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type orderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id::text, order_number, user_id::text, status, subtotal, tax, shipping, coupon_discount, total,
	coupon_id::text, coupon_code, shipping_address, payment_method, payment_status, provider_order_id,
	provider_payment_id, refund_amount, refund_status, delivered_at, version, created_at, updated_at`

const orderItemColumns = `id::text, order_id::text, product_id::text, variant_id::text, name, size, color, images,
	quantity, price, original_price, coupon_discount_allocated, status, cancel_reason, return_details, updated_at`

// --- Mappers ---

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o                                                domain.Order
		subtotal, tax, shipping, coupon, total, refunded pgtype.Numeric
		address                                          []byte
		providerOrderID, providerPaymentID               *string
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Status, &subtotal, &tax, &shipping, &coupon, &total,
		&o.CouponID, &o.CouponCode, &address, &o.PaymentMethod, &o.PaymentStatus, &providerOrderID,
		&providerPaymentID, &refunded, &o.RefundStatus, &o.DeliveredAt, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Subtotal = numericToDecimal(subtotal)
	o.Tax = numericToDecimal(tax)
	o.Shipping = numericToDecimal(shipping)
	o.CouponDiscount = numericToDecimal(coupon)
	o.Total = numericToDecimal(total)
	o.RefundAmount = numericToDecimal(refunded)
	o.ProviderOrderID = ptrString(providerOrderID)
	o.ProviderPaymentID = ptrString(providerPaymentID)
	if len(address) > 0 {
		if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
	}
	return &o, nil
}

func scanOrderItem(row pgx.Row) (domain.OrderItem, error) {
	var (
		item                   domain.OrderItem
		price, original, share pgtype.Numeric
		cancelReason           *string
		returnDetails          []byte
	)
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID, &item.Name, &item.Size, &item.Color,
		&item.Images, &item.Quantity, &price, &original, &share, &item.Status, &cancelReason, &returnDetails, &item.UpdatedAt)
	if err != nil {
		return item, err
	}
	item.Price = numericToDecimal(price)
	item.OriginalPrice = numericToDecimal(original)
	item.CouponDiscountAllocated = numericToDecimal(share)
	item.CancelReason = ptrString(cancelReason)
	if len(returnDetails) > 0 {
		item.Return = &domain.ReturnDetails{}
		if err := json.Unmarshal(returnDetails, item.Return); err != nil {
			return item, fmt.Errorf("decode return details: %w", err)
		}
	}
	return item, nil
}

func encodeReturn(details *domain.ReturnDetails) ([]byte, error) {
	if details == nil {
		return nil, nil
	}
	return json.Marshal(details)
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	db := conn(ctx, r.db)

	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}

	err = db.QueryRow(ctx, `
		INSERT INTO orders (order_number, user_id, status, subtotal, tax, shipping, coupon_discount, total,
			coupon_id, coupon_code, shipping_address, payment_method, payment_status, provider_order_id,
			provider_payment_id, refund_amount, refund_status, delivered_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, 1)
		RETURNING id::text, version, created_at, updated_at`,
		order.OrderNumber, order.UserID, string(order.Status),
		decimalToNumeric(order.Subtotal), decimalToNumeric(order.Tax), decimalToNumeric(order.Shipping),
		decimalToNumeric(order.CouponDiscount), decimalToNumeric(order.Total),
		order.CouponID, order.CouponCode, address, string(order.PaymentMethod), string(order.PaymentStatus),
		nullString(order.ProviderOrderID), nullString(order.ProviderPaymentID),
		decimalToNumeric(order.RefundAmount), string(order.RefundStatus), order.DeliveredAt).
		Scan(&order.ID, &order.Version, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return mapErr(err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		details, err := encodeReturn(item.Return)
		if err != nil {
			return err
		}
		err = db.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, variant_id, name, size, color, images, quantity,
				price, original_price, coupon_discount_allocated, status, cancel_reason, return_details)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id::text, updated_at`,
			order.ID, item.ProductID, item.VariantID, item.Name, item.Size, item.Color, emptyIfNil(item.Images),
			item.Quantity, decimalToNumeric(item.Price), decimalToNumeric(item.OriginalPrice),
			decimalToNumeric(item.CouponDiscountAllocated), string(item.Status), nullString(item.CancelReason), details).
			Scan(&item.ID, &item.UpdatedAt)
		if err != nil {
			return mapErr(err)
		}
		item.OrderID = order.ID
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order, err := scanOrder(conn(ctx, r.db).QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	if err := r.attachItems(ctx, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := r.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// --- Admin Methods ---

func (r *orderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit, _ := pageOffset(filter.Limit, 0)
	offset := (page - 1) * limit

	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.PaymentStatus != "" {
		add("payment_status = $%d", filter.PaymentStatus)
	}
	if filter.PaymentMethod != "" {
		add("payment_method = $%d", filter.PaymentMethod)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(order_number ILIKE $%d OR shipping_address->>'fullName' ILIKE $%d)", n, n))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))
	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateOrder writes the whole aggregate under an optimistic version check.
func (r *orderRepository) UpdateOrder(ctx context.Context, order *domain.Order) error {
	db := conn(ctx, r.db)

	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}

	err = db.QueryRow(ctx, `
		UPDATE orders SET status = $3, subtotal = $4, tax = $5, shipping = $6, coupon_discount = $7, total = $8,
			coupon_id = $9, coupon_code = $10, shipping_address = $11, payment_status = $12,
			provider_order_id = $13, provider_payment_id = $14, refund_amount = $15, refund_status = $16,
			delivered_at = $17, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`,
		order.ID, order.Version, string(order.Status),
		decimalToNumeric(order.Subtotal), decimalToNumeric(order.Tax), decimalToNumeric(order.Shipping),
		decimalToNumeric(order.CouponDiscount), decimalToNumeric(order.Total),
		order.CouponID, order.CouponCode, address, string(order.PaymentStatus),
		nullString(order.ProviderOrderID), nullString(order.ProviderPaymentID),
		decimalToNumeric(order.RefundAmount), string(order.RefundStatus), order.DeliveredAt).
		Scan(&order.Version, &order.UpdatedAt)
	if err != nil {
		if mapErr(err) == domain.ErrNotFound {
			var exists bool
			if err := db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, order.ID).Scan(&exists); err != nil {
				return mapErr(err)
			}
			if exists {
				return domain.ErrVersionConflict
			}
			return domain.ErrNotFound
		}
		return mapErr(err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		details, err := encodeReturn(item.Return)
		if err != nil {
			return err
		}
		err = db.QueryRow(ctx, `
			UPDATE order_items SET quantity = $3, price = $4, coupon_discount_allocated = $5, status = $6,
				cancel_reason = $7, return_details = $8, updated_at = NOW()
			WHERE id = $1 AND order_id = $2
			RETURNING updated_at`,
			item.ID, order.ID, item.Quantity, decimalToNumeric(item.Price), decimalToNumeric(item.CouponDiscountAllocated),
			string(item.Status), nullString(item.CancelReason), details).
			Scan(&item.UpdatedAt)
		if err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func (r *orderRepository) CreateOrderHistory(ctx context.Context, history *domain.OrderHistory) error {
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO order_history (order_id, order_item_id, previous_status, new_status, reason, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id::text, created_at`,
		history.OrderID, history.OrderItemID, history.PreviousStatus, history.NewStatus, history.Reason, history.CreatedBy).
		Scan(&history.ID, &history.CreatedAt)
	return mapErr(err)
}

func (r *orderRepository) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT id::text, order_id::text, order_item_id::text, previous_status, new_status, reason, created_by, created_at
		FROM order_history WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var history []domain.OrderHistory
	for rows.Next() {
		var h domain.OrderHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.OrderItemID, &h.PreviousStatus, &h.NewStatus, &h.Reason, &h.CreatedBy, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	result := make([]domain.Order, len(orders))
	for i, o := range orders {
		result[i] = *o
	}
	return result, nil
}

// attachItems loads the lines of every order in one round trip.
func (r *orderRepository) attachItems(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	rows, err := conn(ctx, r.db).Query(ctx, `
		SELECT `+orderItemColumns+` FROM order_items
		WHERE order_id = ANY($1::text[]::uuid[]) ORDER BY created_at, id`, ids)
	if err != nil {
		return mapErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return err
		}
		if o, ok := byID[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}
