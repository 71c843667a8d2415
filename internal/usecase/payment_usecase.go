package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/logger"
)

// PaymentUsecase reconciles online payments reported by the client with their orders.
type PaymentUsecase struct {
	orders  *OrderUsecase
	secret  []byte
	gateway domain.PaymentGateway
}

func NewPaymentUsecase(orders *OrderUsecase, gateway domain.PaymentGateway, keySecret string) *PaymentUsecase {
	return &PaymentUsecase{
		orders:  orders,
		secret:  []byte(keySecret),
		gateway: gateway,
	}
}

// SignPayment returns the hex HMAC-SHA256 of "providerOrderID|providerPaymentID".
func SignPayment(secret []byte, providerOrderID, providerPaymentID string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(providerOrderID + "|" + providerPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (p *PaymentUsecase) signatureMatches(order *domain.Order, in domain.PaymentVerification) bool {
	if order.ProviderOrderID == "" || order.ProviderOrderID != in.ProviderOrderID {
		return false
	}
	expected := SignPayment(p.secret, in.ProviderOrderID, in.ProviderPaymentID)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(in.Signature))))
}

// VerifyPayment confirms or fails an online payment. A matching signature completes the
// payment, reserves stock and clears the cart; verifying an already completed payment again
// changes nothing. A mismatch fails the payment, cancels the order and reports
// INTEGRITY_FAILURE after the failure is persisted.
func (p *PaymentUsecase) VerifyPayment(ctx context.Context, userID string, in domain.PaymentVerification) (*domain.Order, error) {
	if in.OrderID == "" || in.ProviderOrderID == "" || in.ProviderPaymentID == "" || in.Signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id, provider order id, payment id and signature are required")
	}

	u := p.orders
	var mismatch, alreadyVerified bool
	order, err := u.mutateOrder(ctx, in.OrderID, func(txCtx context.Context, order *domain.Order) (bool, error) {
		mismatch, alreadyVerified = false, false

		if userID != "" && order.UserID != userID {
			return false, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if !order.PaymentMethod.IsOnline() {
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not paid online")
		}

		valid := p.signatureMatches(order, in)
		switch order.PaymentStatus {
		case domain.PaymentStatusCompleted:
			alreadyVerified = true
			mismatch = !valid
			return false, nil
		case domain.PaymentStatusFailed:
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, "payment for this order already failed")
		}

		if !valid {
			mismatch = true
			order.PaymentStatus = domain.PaymentStatusFailed
			var targets []*domain.OrderItem
			for i := range order.Items {
				if order.Items[i].Status.IsCancellable() {
					targets = append(targets, &order.Items[i])
				}
			}
			if _, err := u.cancelLines(txCtx, order, targets, "payment verification failed", "", false); err != nil {
				return false, err
			}
			return true, nil
		}

		order.PaymentStatus = domain.PaymentStatusCompleted
		order.ProviderPaymentID = in.ProviderPaymentID

		var short []*domain.OrderItem
		for i := range order.Items {
			item := &order.Items[i]
			if item.Status != domain.LineStatusOrdered {
				continue
			}
			err := u.productRepo.UpdateStock(txCtx, item.VariantID, -item.Quantity, domain.InventoryReasonPaymentConfirmed, order.ID)
			if errors.Is(err, domain.ErrInsufficientStock) {
				short = append(short, item)
				continue
			}
			if err != nil {
				return false, fmt.Errorf("failed to reserve stock: %w", err)
			}
		}
		if len(short) > 0 {
			if _, err := u.cancelLines(txCtx, order, short, "out of stock at payment confirmation", "", false); err != nil {
				return false, err
			}
		}

		if err := u.cartRepo.ClearCart(txCtx, order.UserID); err != nil {
			return false, fmt.Errorf("failed to clear cart: %w", err)
		}
		if err := u.recordHistory(txCtx, order.ID, nil, string(domain.PaymentStatusPending), string(domain.PaymentStatusCompleted), "payment verified", order.UserID); err != nil {
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	if mismatch {
		u.metrics.PaymentVerified("signature_mismatch")
		log.Warn().
			Str("order_id", in.OrderID).
			Str("provider_order_id", in.ProviderOrderID).
			Bool("already_verified", alreadyVerified).
			Msg("payment signature mismatch")
		return nil, pkgerrors.New(pkgerrors.CodeIntegrity, "payment signature verification failed").
			WithReason(domain.ReasonSignatureMismatch)
	}
	if alreadyVerified {
		u.metrics.PaymentVerified("duplicate")
		return order, nil
	}

	u.metrics.PaymentVerified("verified")
	log.Info().
		Str("order_id", order.ID).
		Str("provider_payment_id", in.ProviderPaymentID).
		Str("status", string(order.Status)).
		Msg("payment verified")
	return order, nil
}

// RetryPayment issues a fresh provider order for an online order still awaiting payment.
func (p *PaymentUsecase) RetryPayment(ctx context.Context, userID, orderID string) (*domain.ProviderOrder, error) {
	u := p.orders
	order, err := u.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.PaymentMethod.IsOnline() || order.PaymentStatus != domain.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting online payment")
	}

	providerOrder, err := p.gateway.CreateOrder(ctx, domain.ToMinorUnits(order.Total), u.rules.Currency, order.OrderNumber)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment provider is unavailable, please try again")
	}

	_, err = u.mutateOrder(ctx, orderID, func(_ context.Context, order *domain.Order) (bool, error) {
		if order.PaymentStatus != domain.PaymentStatusPending {
			return false, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting online payment")
		}
		order.ProviderOrderID = providerOrder.ID
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return providerOrder, nil
}
