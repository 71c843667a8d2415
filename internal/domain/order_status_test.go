package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name  string
		lines []LineStatus
		want  OrderStatus
	}{
		{"all ordered", []LineStatus{LineStatusOrdered, LineStatusOrdered}, OrderStatusPending},
		{"all delivered", []LineStatus{LineStatusDelivered, LineStatusDelivered}, OrderStatusDelivered},
		{"all cancelled", []LineStatus{LineStatusCancelled}, OrderStatusCancelled},
		{"all returned", []LineStatus{LineStatusReturned, LineStatusReturned}, OrderStatusReturned},
		{"delivered and cancelled", []LineStatus{LineStatusDelivered, LineStatusCancelled}, OrderStatusPartiallyDelivered},
		{"shipped and cancelled", []LineStatus{LineStatusShipped, LineStatusCancelled}, OrderStatusPartiallyShipped},
		{"out for delivery and cancelled", []LineStatus{LineStatusOutForDelivery, LineStatusShipped, LineStatusCancelled}, OrderStatusPartiallyShipped},
		{"shipped and ordered", []LineStatus{LineStatusShipped, LineStatusOrdered}, OrderStatusInProgress},
		{"all shipped", []LineStatus{LineStatusShipped, LineStatusShipped}, OrderStatusInProgress},
		{"shipped ordered cancelled", []LineStatus{LineStatusShipped, LineStatusOrdered, LineStatusCancelled}, OrderStatusInProgress},
		{"return requested", []LineStatus{LineStatusReturnRequested, LineStatusDelivered}, OrderStatusInProgress},
		{"ordered and cancelled", []LineStatus{LineStatusOrdered, LineStatusCancelled}, OrderStatusInProgress},
		{"single ordered", []LineStatus{LineStatusOrdered}, OrderStatusPending},
		{"delivered and returned", []LineStatus{LineStatusDelivered, LineStatusReturned}, OrderStatusInProgress},
		{"delivered returned cancelled", []LineStatus{LineStatusDelivered, LineStatusReturned, LineStatusCancelled}, OrderStatusInProgress},
		{"returned and cancelled", []LineStatus{LineStatusReturned, LineStatusCancelled}, OrderStatusInProgress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOrderStatus(tt.lines))
		})
	}
}

func TestDeriveOrderStatusIgnoresLineOrder(t *testing.T) {
	all := []LineStatus{
		LineStatusOrdered, LineStatusShipped, LineStatusOutForDelivery, LineStatusDelivered,
		LineStatusCancelled, LineStatusReturnRequested, LineStatusReturned,
	}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(6)
		lines := make([]LineStatus, n)
		for j := range lines {
			lines[j] = all[rng.Intn(len(all))]
		}
		want := DeriveOrderStatus(lines)

		shuffled := append([]LineStatus(nil), lines...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		assert.Equal(t, want, DeriveOrderStatus(shuffled), "lines %v", lines)
	}
}

func TestCanAdvance(t *testing.T) {
	assert.True(t, CanAdvance(LineStatusOrdered, LineStatusShipped))
	assert.True(t, CanAdvance(LineStatusOrdered, LineStatusDelivered))
	assert.True(t, CanAdvance(LineStatusShipped, LineStatusOutForDelivery))
	assert.False(t, CanAdvance(LineStatusDelivered, LineStatusShipped))
	assert.False(t, CanAdvance(LineStatusShipped, LineStatusShipped))
	assert.False(t, CanAdvance(LineStatusCancelled, LineStatusShipped))
	assert.False(t, CanAdvance(LineStatusOrdered, LineStatusCancelled))
}
