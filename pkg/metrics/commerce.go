package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// CommerceMetrics records order, refund and payment outcomes.
// A nil *CommerceMetrics is valid and records nothing.
type CommerceMetrics struct {
	ordersPlaced       *prometheus.CounterVec
	cancellations      *prometheus.CounterVec
	refundAmount       *prometheus.CounterVec
	paymentResults     *prometheus.CounterVec
	statusTransitions  *prometheus.CounterVec
	concurrencyRetries prometheus.Counter
}

// NewCommerceMetrics registers the commerce metrics on reg.
func NewCommerceMetrics(reg prometheus.Registerer) *CommerceMetrics {
	if reg == nil {
		return nil
	}
	m := &CommerceMetrics{
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders placed, by payment method.",
		}, []string{"payment_method"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_cancellations_total",
			Help: "Cancellation requests that cancelled at least one line, by scope.",
		}, []string{"scope"}),
		refundAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_refund_amount_total",
			Help: "Amount refunded to wallets, by source.",
		}, []string{"source"}),
		paymentResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Online payment verifications, by result.",
		}, []string{"result"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_line_transitions_total",
			Help: "Order line status transitions, by target status.",
		}, []string{"status"}),
		concurrencyRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "order_version_conflicts_total",
			Help: "Optimistic lock conflicts that triggered a retry.",
		}),
	}
	reg.MustRegister(m.ordersPlaced, m.cancellations, m.refundAmount, m.paymentResults, m.statusTransitions, m.concurrencyRetries)
	return m
}

func (m *CommerceMetrics) OrderPlaced(method string) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(normalizeLabel(method)).Inc()
}

func (m *CommerceMetrics) Cancelled(scope string) {
	if m == nil {
		return
	}
	m.cancellations.WithLabelValues(normalizeLabel(scope)).Inc()
}

func (m *CommerceMetrics) Refunded(source string, amount decimal.Decimal) {
	if m == nil || !amount.IsPositive() {
		return
	}
	m.refundAmount.WithLabelValues(normalizeLabel(source)).Add(amount.InexactFloat64())
}

func (m *CommerceMetrics) PaymentVerified(result string) {
	if m == nil {
		return
	}
	m.paymentResults.WithLabelValues(normalizeLabel(result)).Inc()
}

func (m *CommerceMetrics) LineTransition(status string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *CommerceMetrics) VersionConflict() {
	if m == nil {
		return
	}
	m.concurrencyRetries.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
