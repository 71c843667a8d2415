package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/logger"

	"github.com/shopspring/decimal"
)

const maxOrderWriteAttempts = 3

// orderMutation changes order in place and reports whether anything needs saving.
type orderMutation func(ctx context.Context, order *domain.Order) (bool, error)

// mutateOrder runs read, mutate, conditional write in a transaction and retries the whole
// cycle when another writer bumped the version in between.
func (u *OrderUsecase) mutateOrder(ctx context.Context, orderID string, mutate orderMutation) (*domain.Order, error) {
	for attempt := 1; attempt <= maxOrderWriteAttempts; attempt++ {
		var result *domain.Order
		err := u.txManager.Do(ctx, func(txCtx context.Context) error {
			order, err := u.orderRepo.GetByID(txCtx, orderID)
			if err != nil {
				return notFoundOr(err, "order not found")
			}
			prev := order.Status

			changed, err := mutate(txCtx, order)
			if err != nil {
				return err
			}
			if changed {
				order.Status = domain.DeriveOrderStatus(order.LineStatuses())
				order.UpdatedAt = u.now()
				if err := u.orderRepo.UpdateOrder(txCtx, order); err != nil {
					return err
				}
				if order.Status != prev {
					if err := u.recordHistory(txCtx, order.ID, nil, string(prev), string(order.Status), "", ""); err != nil {
						return err
					}
				}
			}
			result = order
			return nil
		})
		if errors.Is(err, domain.ErrVersionConflict) {
			u.metrics.VersionConflict()
			logger.FromContext(ctx).Debug().Str("order_id", orderID).Int("attempt", attempt).Msg("order version conflict, retrying")
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently, please retry")
}

// recomputeTotals rebuilds the money fields from the lines that are not cancelled.
func recomputeTotals(order *domain.Order, rules PricingRules) {
	lineSum := decimal.Zero
	coupon := decimal.Zero
	active := 0
	for _, item := range order.Items {
		if item.Status == domain.LineStatusCancelled {
			continue
		}
		active++
		lineSum = lineSum.Add(item.LineSubtotal())
		coupon = coupon.Add(item.CouponDiscountAllocated)
	}

	if active == 0 {
		order.Subtotal = decimal.Zero
		order.Shipping = decimal.Zero
		order.Tax = decimal.Zero
		order.CouponDiscount = decimal.Zero
		order.Total = decimal.Zero
		return
	}

	order.Subtotal = domain.RoundUnit(lineSum)
	order.Shipping = rules.ShippingFor(order.Subtotal)
	order.Tax = rules.TaxFor(order.Subtotal)
	order.CouponDiscount = coupon
	order.Total = decimal.Max(decimal.Zero, order.Subtotal.Add(order.Shipping).Add(order.Tax).Sub(coupon))
}

func refundStatusFor(order *domain.Order) domain.RefundStatus {
	if !order.RefundAmount.IsPositive() {
		return domain.RefundStatusNone
	}
	for _, item := range order.Items {
		if item.Status != domain.LineStatusCancelled && item.Status != domain.LineStatusReturned {
			return domain.RefundStatusPartial
		}
	}
	return domain.RefundStatusFull
}

// cancelLines moves targets to CANCELLED, optionally restores their stock, refunds the paid
// share to the wallet when the order was paid through a wallet-refundable method, and
// recomputes the order totals. It returns the refunded amount.
func (u *OrderUsecase) cancelLines(ctx context.Context, order *domain.Order, targets []*domain.OrderItem, reason, actorID string, restoreStock bool) (decimal.Decimal, error) {
	now := u.now()
	refund := decimal.Zero

	for _, item := range targets {
		prev := item.Status
		item.Status = domain.LineStatusCancelled
		item.CancelReason = reason
		item.UpdatedAt = now

		if restoreStock {
			if err := u.productRepo.UpdateStock(ctx, item.VariantID, item.Quantity, domain.InventoryReasonCancelled, order.ID); err != nil {
				return decimal.Zero, fmt.Errorf("failed to restore stock: %w", err)
			}
		}
		refund = refund.Add(item.PaidAmount())

		itemID := item.ID
		if err := u.recordHistory(ctx, order.ID, &itemID, string(prev), string(item.Status), reason, actorID); err != nil {
			return decimal.Zero, err
		}
		u.metrics.LineTransition(string(item.Status))
	}

	refund = domain.RoundMinor(refund)
	eligible := order.PaymentMethod.RefundsToWallet() && order.PaymentStatus == domain.PaymentStatusCompleted
	if !eligible || !refund.IsPositive() {
		refund = decimal.Zero
	} else {
		desc := fmt.Sprintf("Refund for cancelled items in order %s", order.OrderNumber)
		if _, err := u.wallet.Credit(ctx, order.UserID, refund, desc, order.ID); err != nil {
			return decimal.Zero, err
		}
		order.RefundAmount = order.RefundAmount.Add(refund)
		u.metrics.Refunded("cancellation", refund)
	}

	recomputeTotals(order, u.rules)
	order.RefundStatus = refundStatusFor(order)
	return refund, nil
}

type CancelInput struct {
	OrderID string
	// UserID restricts the cancellation to the order owner; empty for admins.
	UserID string
	// LineID selects one line; empty cancels every cancellable line.
	LineID  string
	Reason  string
	ActorID string
}

type CancelResult struct {
	Order     *domain.Order   `json:"order"`
	Cancelled []string        `json:"cancelledItemIds"`
	Refund    decimal.Decimal `json:"refund"`
}

// CancelOrder cancels one line or the whole order. Cancelling a line twice is a no-op.
func (u *OrderUsecase) CancelOrder(ctx context.Context, in CancelInput) (*CancelResult, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a cancellation reason is required")
	}

	var cancelled []string
	var refund decimal.Decimal
	order, err := u.mutateOrder(ctx, in.OrderID, func(txCtx context.Context, order *domain.Order) (bool, error) {
		cancelled, refund = nil, decimal.Zero

		if in.UserID != "" && order.UserID != in.UserID {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		var targets []*domain.OrderItem
		if in.LineID != "" {
			item := order.ItemByID(in.LineID)
			if item == nil {
				return false, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			if item.Status == domain.LineStatusCancelled {
				return false, nil
			}
			if err := u.checkCancellable(order); err != nil {
				return false, err
			}
			if !item.Status.IsCancellable() {
				return false, pkgerrors.Newf(pkgerrors.CodeStateConflict, "an item that is %s cannot be cancelled", item.Status).
					WithReason(domain.ReasonInvalidTransition)
			}
			targets = append(targets, item)
		} else {
			if err := u.checkCancellable(order); err != nil {
				return false, err
			}
			for i := range order.Items {
				if order.Items[i].Status.IsCancellable() {
					targets = append(targets, &order.Items[i])
				}
			}
			if len(targets) == 0 {
				return false, nil
			}
		}

		amount, err := u.cancelLines(txCtx, order, targets, reason, in.ActorID, true)
		if err != nil {
			return false, err
		}
		for _, t := range targets {
			cancelled = append(cancelled, t.ID)
		}
		refund = amount
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if len(cancelled) > 0 {
		scope := "order"
		if in.LineID != "" {
			scope = "item"
		}
		u.metrics.Cancelled(scope)
		logger.FromContext(ctx).Info().
			Str("order_id", order.ID).
			Strs("items", cancelled).
			Str("refund", refund.String()).
			Str("status", string(order.Status)).
			Msg("order items cancelled")
	}
	return &CancelResult{Order: order, Cancelled: cancelled, Refund: refund}, nil
}

func (u *OrderUsecase) checkCancellable(order *domain.Order) error {
	if order.Status.IsTerminal() {
		return pkgerrors.Newf(pkgerrors.CodeStateConflict, "order is already %s", order.Status).
			WithReason(domain.ReasonInvalidTransition)
	}
	if order.PaymentMethod.IsOnline() && order.PaymentStatus != domain.PaymentStatusCompleted {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order payment has not been completed").
			WithReason(domain.ReasonPaymentNotCompleted)
	}
	return nil
}

type ReturnInput struct {
	OrderID string
	UserID  string
	LineID  string
	Reason  string
}

// RequestReturn opens a return for a delivered line. The refund is fixed at request time.
func (u *OrderUsecase) RequestReturn(ctx context.Context, in ReturnInput) (*domain.Order, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a return reason is required")
	}

	return u.mutateOrder(ctx, in.OrderID, func(txCtx context.Context, order *domain.Order) (bool, error) {
		if in.UserID != "" && order.UserID != in.UserID {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		item := order.ItemByID(in.LineID)
		if item == nil {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		switch item.Status {
		case domain.LineStatusDelivered:
		case domain.LineStatusReturnRequested:
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, "a return was already requested for this item").
				WithReason(domain.ReasonInvalidTransition)
		default:
			return false, pkgerrors.Newf(pkgerrors.CodeStateConflict, "an item that is %s cannot be returned", item.Status).
				WithReason(domain.ReasonInvalidTransition)
		}

		now := u.now()
		item.Status = domain.LineStatusReturnRequested
		item.UpdatedAt = now
		item.Return = &domain.ReturnDetails{
			Reason:       reason,
			RequestedAt:  now,
			Status:       domain.ReturnStatusPending,
			RefundAmount: domain.RoundMinor(item.LineSubtotal()),
		}

		itemID := item.ID
		if err := u.recordHistory(txCtx, order.ID, &itemID, string(domain.LineStatusDelivered), string(item.Status), reason, order.UserID); err != nil {
			return false, err
		}
		u.metrics.LineTransition(string(item.Status))
		return true, nil
	})
}

type ResolveReturnInput struct {
	OrderID string
	LineID  string
	Approve bool
	Note    string
	ActorID string
}

// ResolveReturn approves (refund to wallet, restock) or rejects a pending return. Approval
// needs a completed payment, so a COD order must be marked collected first.
func (u *OrderUsecase) ResolveReturn(ctx context.Context, in ResolveReturnInput) (*domain.Order, error) {
	var refunded decimal.Decimal
	order, err := u.mutateOrder(ctx, in.OrderID, func(txCtx context.Context, order *domain.Order) (bool, error) {
		refunded = decimal.Zero
		item := order.ItemByID(in.LineID)
		if item == nil {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		if item.Status != domain.LineStatusReturnRequested || item.Return == nil || item.Return.Status != domain.ReturnStatusPending {
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, "no pending return for this item").
				WithReason(domain.ReasonReturnResolved)
		}
		// Uncollected cash cannot be refunded.
		if in.Approve && order.PaymentStatus != domain.PaymentStatusCompleted {
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, "order payment has not been completed").
				WithReason(domain.ReasonPaymentNotCompleted)
		}

		now := u.now()
		prev := item.Status
		item.Return.ResolvedAt = &now
		item.Return.ResolvedBy = in.ActorID
		item.UpdatedAt = now

		if !in.Approve {
			item.Status = domain.LineStatusDelivered
			item.Return.Status = domain.ReturnStatusRejected
		} else {
			item.Status = domain.LineStatusReturned
			item.Return.Status = domain.ReturnStatusApproved

			if err := u.productRepo.UpdateStock(txCtx, item.VariantID, item.Quantity, domain.InventoryReasonReturned, order.ID); err != nil {
				return false, fmt.Errorf("failed to restock returned item: %w", err)
			}
			if amount := item.Return.RefundAmount; amount.IsPositive() {
				desc := fmt.Sprintf("Refund for returned %s in order %s", item.Name, order.OrderNumber)
				if _, err := u.wallet.Credit(txCtx, order.UserID, amount, desc, order.ID); err != nil {
					return false, err
				}
				order.RefundAmount = order.RefundAmount.Add(amount)
				refunded = amount
			}
			order.RefundStatus = refundStatusFor(order)
		}

		itemID := item.ID
		if err := u.recordHistory(txCtx, order.ID, &itemID, string(prev), string(item.Status), in.Note, in.ActorID); err != nil {
			return false, err
		}
		u.metrics.LineTransition(string(item.Status))
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	u.metrics.Refunded("return", refunded)
	return order, nil
}

type UpdateStatusInput struct {
	OrderID string
	// LineID selects one line; empty advances every line that can move to Status.
	LineID  string
	Status  string
	Note    string
	ActorID string
}

// UpdateStatus moves lines forward along SHIPPED, OUT_FOR_DELIVERY, DELIVERED.
func (u *OrderUsecase) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*domain.Order, error) {
	target := domain.LineStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	switch target {
	case domain.LineStatusShipped, domain.LineStatusOutForDelivery, domain.LineStatusDelivered:
	default:
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "status must be SHIPPED, OUT_FOR_DELIVERY or DELIVERED, got '%s'", in.Status)
	}

	return u.mutateOrder(ctx, in.OrderID, func(txCtx context.Context, order *domain.Order) (bool, error) {
		if order.PaymentMethod.IsOnline() && order.PaymentStatus != domain.PaymentStatusCompleted {
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, "order payment has not been completed").
				WithReason(domain.ReasonPaymentNotCompleted)
		}

		var targets []*domain.OrderItem
		if in.LineID != "" {
			item := order.ItemByID(in.LineID)
			if item == nil {
				return false, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
			}
			if !domain.CanAdvance(item.Status, target) {
				return false, pkgerrors.Newf(pkgerrors.CodeStateConflict, "cannot move item from %s to %s", item.Status, target).
					WithReason(domain.ReasonInvalidTransition)
			}
			targets = append(targets, item)
		} else {
			for i := range order.Items {
				if domain.CanAdvance(order.Items[i].Status, target) {
					targets = append(targets, &order.Items[i])
				}
			}
			if len(targets) == 0 {
				return false, pkgerrors.Newf(pkgerrors.CodeStateConflict, "no item can move to %s", target).
					WithReason(domain.ReasonInvalidTransition)
			}
		}

		now := u.now()
		for _, item := range targets {
			prev := item.Status
			item.Status = target
			item.UpdatedAt = now
			itemID := item.ID
			if err := u.recordHistory(txCtx, order.ID, &itemID, string(prev), string(target), in.Note, in.ActorID); err != nil {
				return false, err
			}
			u.metrics.LineTransition(string(target))
		}

		if target == domain.LineStatusDelivered {
			order.DeliveredAt = &now
			if order.PaymentMethod != domain.PaymentMethodCOD {
				order.PaymentStatus = domain.PaymentStatusCompleted
			}
		}
		return true, nil
	})
}

// MarkPaymentCollected records cash collected for a COD order once something was delivered.
func (u *OrderUsecase) MarkPaymentCollected(ctx context.Context, orderID, actorID string) (*domain.Order, error) {
	return u.mutateOrder(ctx, orderID, func(txCtx context.Context, order *domain.Order) (bool, error) {
		if order.PaymentMethod != domain.PaymentMethodCOD {
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, "only cash on delivery orders are collected manually")
		}
		if order.PaymentStatus == domain.PaymentStatusCompleted {
			return false, nil
		}
		delivered := false
		for _, item := range order.Items {
			switch item.Status {
			case domain.LineStatusDelivered, domain.LineStatusReturnRequested, domain.LineStatusReturned:
				delivered = true
			}
		}
		if !delivered {
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, "nothing has been delivered yet").
				WithReason(domain.ReasonInvalidTransition)
		}
		prev := order.PaymentStatus
		order.PaymentStatus = domain.PaymentStatusCompleted
		if err := u.recordHistory(txCtx, order.ID, nil, string(prev), string(order.PaymentStatus), "cash collected", actorID); err != nil {
			return false, err
		}
		return true, nil
	})
}
