package usecase

import (
	"context"
	"strings"
	"testing"

	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOnlineOrder(t *testing.T, f *fixture, price string, stock int) (*PlaceOrderResult, string) {
	t.Helper()
	f.addUser("u1", "0")
	v := f.addProduct("p1", "c1", price, stock)
	f.addToCart("u1", v, 1)

	res, err := f.orderUC.PlaceOrder(context.Background(), "u1", PlaceOrderInput{AddressID: "addr-u1", PaymentMethod: "razorpay"})
	require.NoError(t, err)
	return res, v
}

func TestSignPayment(t *testing.T) {
	a := SignPayment([]byte("secret"), "order_1", "pay_1")
	b := SignPayment([]byte("secret"), "order_1", "pay_2")
	c := SignPayment([]byte("other"), "order_1", "pay_1")

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, SignPayment([]byte("secret"), "order_1", "pay_1"))
}

func TestVerifyPayment_Success(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	placed, v := placeOnlineOrder(t, f, "1500", 4)

	in := domain.PaymentVerification{
		OrderID:           placed.Order.ID,
		ProviderOrderID:   placed.ProviderOrder.ID,
		ProviderPaymentID: "pay_001",
		Signature:         SignPayment([]byte(testSecret), placed.ProviderOrder.ID, "pay_001"),
	}

	order, err := f.payments.VerifyPayment(ctx, "u1", in)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, order.PaymentStatus)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "pay_001", order.ProviderPaymentID)
	assert.Equal(t, 3, f.stock(v))
	assert.Empty(t, f.store.carts["u1"])

	t.Run("verifying again changes nothing", func(t *testing.T) {
		order, err := f.payments.VerifyPayment(ctx, "u1", in)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusCompleted, order.PaymentStatus)
		assert.Equal(t, 3, f.stock(v))
	})

	t.Run("signature in upper case is accepted", func(t *testing.T) {
		upper := in
		upper.Signature = strings.ToUpper(in.Signature)
		_, err := f.payments.VerifyPayment(ctx, "u1", upper)
		require.NoError(t, err)
	})

	t.Run("bad signature on a completed payment is rejected without changes", func(t *testing.T) {
		bad := in
		bad.Signature = strings.Repeat("0", 64)
		_, err := f.payments.VerifyPayment(ctx, "u1", bad)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeIntegrity, pkgerrors.CodeOf(err))
		assert.Equal(t, domain.PaymentStatusCompleted, f.storedOrder(placed.Order.ID).PaymentStatus)
	})

	t.Run("other customers cannot verify", func(t *testing.T) {
		_, err := f.payments.VerifyPayment(ctx, "u2", in)
		assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
	})
}

func TestVerifyPayment_SignatureMismatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	placed, v := placeOnlineOrder(t, f, "1500", 4)

	_, err := f.payments.VerifyPayment(ctx, "u1", domain.PaymentVerification{
		OrderID:           placed.Order.ID,
		ProviderOrderID:   placed.ProviderOrder.ID,
		ProviderPaymentID: "pay_001",
		Signature:         SignPayment([]byte("wrong-secret"), placed.ProviderOrder.ID, "pay_001"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeIntegrity, pkgerrors.CodeOf(err))
	assert.Equal(t, domain.ReasonSignatureMismatch, pkgerrors.ReasonOf(err))

	got := f.storedOrder(placed.Order.ID)
	assert.Equal(t, domain.PaymentStatusFailed, got.PaymentStatus)
	assert.Equal(t, domain.OrderStatusCancelled, got.Status)
	assert.Equal(t, 4, f.stock(v))
	assert.Len(t, f.store.carts["u1"], 1)
	assert.Empty(t, f.store.ledger)

	_, err = f.payments.VerifyPayment(ctx, "u1", domain.PaymentVerification{
		OrderID:           placed.Order.ID,
		ProviderOrderID:   placed.ProviderOrder.ID,
		ProviderPaymentID: "pay_001",
		Signature:         SignPayment([]byte(testSecret), placed.ProviderOrder.ID, "pay_001"),
	})
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err), "a failed payment cannot be revived")
}

func TestVerifyPayment_ProviderOrderMustMatch(t *testing.T) {
	f := newFixture()
	placed, _ := placeOnlineOrder(t, f, "1500", 4)

	_, err := f.payments.VerifyPayment(context.Background(), "u1", domain.PaymentVerification{
		OrderID:           placed.Order.ID,
		ProviderOrderID:   "order_someone_else",
		ProviderPaymentID: "pay_001",
		Signature:         SignPayment([]byte(testSecret), "order_someone_else", "pay_001"),
	})
	assert.Equal(t, pkgerrors.CodeIntegrity, pkgerrors.CodeOf(err))
}

func TestVerifyPayment_RequiresAllFields(t *testing.T) {
	f := newFixture()
	_, err := f.payments.VerifyPayment(context.Background(), "u1", domain.PaymentVerification{OrderID: "x"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestVerifyPayment_StockGoneRefundsToWallet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	placed, v := placeOnlineOrder(t, f, "1200", 1)

	variant := f.store.variants[v]
	variant.Stock = 0
	f.store.variants[v] = variant

	order, err := f.payments.VerifyPayment(ctx, "u1", domain.PaymentVerification{
		OrderID:           placed.Order.ID,
		ProviderOrderID:   placed.ProviderOrder.ID,
		ProviderPaymentID: "pay_001",
		Signature:         SignPayment([]byte(testSecret), placed.ProviderOrder.ID, "pay_001"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, order.PaymentStatus)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
	assert.Equal(t, domain.RefundStatusFull, order.RefundStatus)
	assertDec(t, "1200", f.balance("u1"))
	assert.Equal(t, 0, f.stock(v))
}

func TestRetryPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	placed, _ := placeOnlineOrder(t, f, "1500", 4)

	provider, err := f.payments.RetryPayment(ctx, "u1", placed.Order.ID)
	require.NoError(t, err)
	assert.NotEqual(t, placed.ProviderOrder.ID, provider.ID)
	assert.Equal(t, provider.ID, f.storedOrder(placed.Order.ID).ProviderOrderID)
	assert.Equal(t, []int64{150000, 150000}, f.gateway.calls)

	_, err = f.payments.VerifyPayment(ctx, "u1", domain.PaymentVerification{
		OrderID:           placed.Order.ID,
		ProviderOrderID:   provider.ID,
		ProviderPaymentID: "pay_002",
		Signature:         SignPayment([]byte(testSecret), provider.ID, "pay_002"),
	})
	require.NoError(t, err)

	_, err = f.payments.RetryPayment(ctx, "u1", placed.Order.ID)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.CodeOf(err))
}
