package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *CommerceMetrics
	assert.NotPanics(t, func() {
		m.OrderPlaced("cod")
		m.Cancelled("full")
		m.Refunded("cancellation", decimal.NewFromInt(10))
		m.PaymentVerified("ok")
		m.LineTransition("SHIPPED")
		m.VersionConflict()
	})
	assert.Nil(t, NewCommerceMetrics(nil))
}

func TestCommerceMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCommerceMetrics(reg)

	m.OrderPlaced("wallet")
	m.OrderPlaced("wallet")
	m.OrderPlaced("")
	m.Refunded("cancellation", decimal.RequireFromString("540.50"))
	m.Refunded("cancellation", decimal.Zero)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ordersPlaced.WithLabelValues("wallet")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ordersPlaced.WithLabelValues("unknown")))
	assert.Equal(t, 540.5, testutil.ToFloat64(m.refundAmount.WithLabelValues("cancellation")))
}
