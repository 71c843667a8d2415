package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/logger"
	"solemate-backend/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderUsecaseDeps lists the collaborators of OrderUsecase.
type OrderUsecaseDeps struct {
	OrderRepo   domain.OrderRepository
	CartRepo    domain.CartRepository
	ProductRepo domain.ProductRepository
	UserRepo    domain.UserRepository
	CouponRepo  domain.CouponRepository
	TxManager   domain.TransactionManager
	Pricing     *PricingUsecase
	Coupons     *CouponUsecase
	Wallet      *WalletUsecase
	Gateway     domain.PaymentGateway
	Metrics     *metrics.CommerceMetrics
}

type OrderUsecase struct {
	orderRepo   domain.OrderRepository
	cartRepo    domain.CartRepository
	productRepo domain.ProductRepository
	userRepo    domain.UserRepository
	couponRepo  domain.CouponRepository
	txManager   domain.TransactionManager
	pricing     *PricingUsecase
	coupons     *CouponUsecase
	wallet      *WalletUsecase
	gateway     domain.PaymentGateway
	metrics     *metrics.CommerceMetrics
	rules       PricingRules
	now         func() time.Time
}

func NewOrderUsecase(deps OrderUsecaseDeps) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:   deps.OrderRepo,
		cartRepo:    deps.CartRepo,
		productRepo: deps.ProductRepo,
		userRepo:    deps.UserRepo,
		couponRepo:  deps.CouponRepo,
		txManager:   deps.TxManager,
		pricing:     deps.Pricing,
		coupons:     deps.Coupons,
		wallet:      deps.Wallet,
		gateway:     deps.Gateway,
		metrics:     deps.Metrics,
		rules:       deps.Pricing.Rules(),
		now:         time.Now,
	}
}

// --- Cart ---

func (u *OrderUsecase) GetCart(ctx context.Context, userID string) ([]domain.CartItem, error) {
	items, err := u.cartRepo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return items, nil
}

// CartSummary prices the cart with the held coupon. A held coupon that no longer
// validates against the cart is dropped from the session.
func (u *OrderUsecase) CartSummary(ctx context.Context, userID string) (*CartPricing, error) {
	offers, err := u.pricing.ActiveOffers(ctx)
	if err != nil {
		return nil, err
	}
	priced, err := u.pricing.PriceCartWithOffers(ctx, userID, offers, nil)
	if err != nil {
		return nil, err
	}

	pending, err := u.coupons.PendingCoupon(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return priced, nil
	}

	_, discount, err := u.coupons.Revalidate(ctx, userID, *pending, priced.Subtotal)
	if err != nil {
		if pkgerrors.As(err) == nil {
			return nil, err
		}
		logger.FromContext(ctx).Info().
			Str("user_id", userID).
			Str("coupon", pending.Code).
			Str("reason", pkgerrors.ReasonOf(err)).
			Msg("held coupon no longer applies, clearing")
		if clearErr := u.coupons.RemoveCoupon(ctx, userID); clearErr != nil {
			return nil, clearErr
		}
		return priced, nil
	}

	held := *pending
	held.Discount = discount
	return u.pricing.PriceCartWithOffers(ctx, userID, offers, &held)
}

func (u *OrderUsecase) AddToCart(ctx context.Context, userID, variantID string, quantity int) ([]domain.CartItem, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	items, err := u.cartRepo.GetCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	existing := 0
	for _, item := range items {
		if item.VariantID == variantID {
			existing = item.Quantity
		}
	}
	if err := u.setCartQuantity(ctx, userID, variantID, existing+quantity); err != nil {
		return nil, err
	}
	return u.GetCart(ctx, userID)
}

// UpdateCartQuantity sets the line quantity; zero removes the line.
func (u *OrderUsecase) UpdateCartQuantity(ctx context.Context, userID, variantID string, quantity int) ([]domain.CartItem, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if quantity == 0 {
		return u.RemoveFromCart(ctx, userID, variantID)
	}
	if err := u.setCartQuantity(ctx, userID, variantID, quantity); err != nil {
		return nil, err
	}
	return u.GetCart(ctx, userID)
}

func (u *OrderUsecase) RemoveFromCart(ctx context.Context, userID, variantID string) ([]domain.CartItem, error) {
	if err := u.cartRepo.RemoveCartItem(ctx, userID, variantID); err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return u.GetCart(ctx, userID)
}

func (u *OrderUsecase) setCartQuantity(ctx context.Context, userID, variantID string, quantity int) error {
	variant, err := u.productRepo.GetVariantByID(ctx, variantID)
	if err != nil {
		return notFoundOr(err, "product variant not found")
	}
	product, err := u.productRepo.GetProductByID(ctx, variant.ProductID)
	if err != nil {
		return notFoundOr(err, "product not found")
	}
	if !product.IsActive {
		return pkgerrors.Newf(pkgerrors.CodeBusinessRule, "%s is no longer available", product.Name).
			WithReason(domain.ReasonProductUnavailable)
	}
	if quantity > u.rules.MaxCartQuantity {
		return pkgerrors.Newf(pkgerrors.CodeBusinessRule, "you can add at most %d of an item", u.rules.MaxCartQuantity).
			WithReason(domain.ReasonCartQuantity)
	}
	if quantity > variant.Stock {
		return pkgerrors.Newf(pkgerrors.CodeBusinessRule, "only %d left in stock for %s", variant.Stock, product.Name).
			WithReason(domain.ReasonInsufficientStock)
	}
	if err := u.cartRepo.UpsertCartItem(ctx, userID, variantID, quantity); err != nil {
		return fmt.Errorf("failed to update cart: %w", err)
	}
	return nil
}

// --- Checkout ---

type PlaceOrderInput struct {
	AddressID     string `json:"addressId" validate:"required"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=cod wallet razorpay"`
}

type PlaceOrderResult struct {
	Order         *domain.Order         `json:"order"`
	ProviderOrder *domain.ProviderOrder `json:"providerOrder,omitempty"`
}

// PlaceOrder turns the priced cart into an order. Online orders get their provider order
// before anything is persisted, so a provider failure leaves no order behind.
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*PlaceOrderResult, error) {
	method := domain.PaymentMethod(strings.ToLower(strings.TrimSpace(input.PaymentMethod)))
	if !method.Valid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported payment method '%s'", input.PaymentMethod)
	}

	address, err := u.userRepo.GetAddress(ctx, userID, input.AddressID)
	if err != nil {
		return nil, notFoundOr(err, "shipping address not found")
	}

	offers, err := u.pricing.ActiveOffers(ctx)
	if err != nil {
		return nil, err
	}
	priced, err := u.pricing.PriceCartWithOffers(ctx, userID, offers, nil)
	if err != nil {
		return nil, err
	}

	var coupon *domain.Coupon
	discount := decimal.Zero
	pending, err := u.coupons.PendingCoupon(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		coupon, discount, err = u.coupons.Revalidate(ctx, userID, *pending, priced.Subtotal)
		if err != nil {
			return nil, err
		}
		discount = decimal.Min(discount, priced.Subtotal.Add(priced.Shipping))
	}

	order := u.buildOrder(userID, address, method, priced, coupon, discount)

	var providerOrder *domain.ProviderOrder
	if method.IsOnline() {
		if !order.Total.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive for online payment")
		}
		providerOrder, err = u.gateway.CreateOrder(ctx, domain.ToMinorUnits(order.Total), u.rules.Currency, order.OrderNumber)
		if err != nil {
			logger.FromContext(ctx).Error().Err(err).Str("order_number", order.OrderNumber).Msg("payment provider order creation failed")
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment provider is unavailable, please try again")
		}
		order.ProviderOrderID = providerOrder.ID
	}
	if method == domain.PaymentMethodWallet {
		order.PaymentStatus = domain.PaymentStatusCompleted
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.CreateOrder(txCtx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		if !method.IsOnline() {
			if err := u.reserveStock(txCtx, order, order.Items, domain.InventoryReasonOrderPlaced); err != nil {
				return err
			}
		}

		if method == domain.PaymentMethodWallet && order.Total.IsPositive() {
			if _, err := u.wallet.Debit(txCtx, userID, order.Total, "Payment for order "+order.OrderNumber, order.ID); err != nil {
				return err
			}
		}

		if coupon != nil {
			if err := u.couponRepo.IncrementUsage(txCtx, coupon.ID, userID, coupon.UsageLimitPerUser); err != nil {
				if errors.Is(err, domain.ErrCouponUsageExceeded) {
					return pkgerrors.Newf(pkgerrors.CodeBusinessRule, "coupon '%s' usage limit reached", coupon.Code).
						WithReason(domain.ReasonCouponUsageExceeded)
				}
				return fmt.Errorf("failed to record coupon usage: %w", err)
			}
		}

		if err := u.recordHistory(txCtx, order.ID, nil, "", string(order.Status), "order placed", userID); err != nil {
			return err
		}

		if !method.IsOnline() {
			if err := u.cartRepo.ClearCart(txCtx, userID); err != nil {
				return fmt.Errorf("failed to clear cart: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if pending != nil {
		if err := u.coupons.RemoveCoupon(ctx, userID); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("user_id", userID).Msg("failed to clear held coupon after order")
		}
	}

	u.metrics.OrderPlaced(string(method))
	logger.FromContext(ctx).Info().
		Str("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Str("payment_method", string(method)).
		Str("total", order.Total.String()).
		Msg("order placed")

	return &PlaceOrderResult{Order: order, ProviderOrder: providerOrder}, nil
}

func (u *OrderUsecase) buildOrder(userID string, address *domain.Address, method domain.PaymentMethod, priced *CartPricing, coupon *domain.Coupon, discount decimal.Decimal) *domain.Order {
	now := u.now()
	order := &domain.Order{
		OrderNumber:     newOrderNumber(now),
		UserID:          userID,
		Subtotal:        priced.Subtotal,
		Shipping:        priced.Shipping,
		Tax:             priced.Tax,
		CouponDiscount:  discount,
		Total:           priced.Subtotal.Add(priced.Shipping).Add(priced.Tax).Sub(discount),
		ShippingAddress: address.Snapshot(),
		PaymentMethod:   method,
		PaymentStatus:   domain.PaymentStatusPending,
		RefundAmount:    decimal.Zero,
		RefundStatus:    domain.RefundStatusNone,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if coupon != nil {
		id := coupon.ID
		order.CouponID = &id
		order.CouponCode = coupon.Code
	}

	shares := AllocateCouponDiscount(priced.LineSubtotals(), discount)
	for i, line := range priced.Lines {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:               line.Item.Product.ID,
			VariantID:               line.Item.VariantID,
			Name:                    line.Item.Product.Name,
			Size:                    line.Item.Variant.Size,
			Color:                   line.Item.Variant.Color,
			Images:                  line.Item.Variant.Images,
			Quantity:                line.Item.Quantity,
			Price:                   line.UnitPrice,
			OriginalPrice:           line.OriginalPrice,
			CouponDiscountAllocated: shares[i],
			Status:                  domain.LineStatusOrdered,
			UpdatedAt:               now,
		})
	}
	order.Status = domain.DeriveOrderStatus(order.LineStatuses())
	return order
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix)
}

// reserveStock decrements stock for every item; any shortfall fails the whole reservation.
func (u *OrderUsecase) reserveStock(ctx context.Context, order *domain.Order, items []domain.OrderItem, reason string) error {
	for _, item := range items {
		if err := u.productRepo.UpdateStock(ctx, item.VariantID, -item.Quantity, reason, order.ID); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				return pkgerrors.Newf(pkgerrors.CodeBusinessRule, "%s (size %s) is out of stock", item.Name, item.Size).
					WithReason(domain.ReasonInsufficientStock)
			}
			return fmt.Errorf("failed to reserve stock: %w", err)
		}
	}
	return nil
}

// --- Queries ---

// GetOrder returns the order when it belongs to userID.
func (u *OrderUsecase) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order not found")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := u.orderRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (u *OrderUsecase) AdminGetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order not found")
	}
	return order, nil
}

func (u *OrderUsecase) AdminListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, domain.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	filter.Limit = clampLimit(filter.Limit)
	orders, total, err := u.orderRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, domain.NewPagination(filter.Page, filter.Limit, total), nil
}

func (u *OrderUsecase) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	history, err := u.orderRepo.GetOrderHistory(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order history: %w", err)
	}
	return history, nil
}

// ListAddresses returns the saved addresses a customer can check out to.
func (u *OrderUsecase) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	addresses, err := u.userRepo.GetAddresses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	if addresses == nil {
		addresses = []domain.Address{}
	}
	return addresses, nil
}

// InventoryLogs lists stock movements for a variant, newest first.
func (u *OrderUsecase) InventoryLogs(ctx context.Context, variantID string, limit, offset int) ([]domain.InventoryLog, error) {
	logs, err := u.productRepo.GetInventoryLogs(ctx, variantID, clampLimit(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("failed to load inventory logs: %w", err)
	}
	return logs, nil
}

func (u *OrderUsecase) recordHistory(ctx context.Context, orderID string, itemID *string, prev, next, reason, actorID string) error {
	h := &domain.OrderHistory{
		OrderID:     orderID,
		OrderItemID: itemID,
		NewStatus:   next,
		CreatedAt:   u.now(),
	}
	if prev != "" {
		h.PreviousStatus = &prev
	}
	if reason != "" {
		h.Reason = &reason
	}
	if actorID != "" {
		h.CreatedBy = &actorID
	}
	if err := u.orderRepo.CreateOrderHistory(ctx, h); err != nil {
		return fmt.Errorf("failed to record order history: %w", err)
	}
	return nil
}
