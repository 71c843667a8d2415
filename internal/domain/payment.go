package domain

import "context"

// ProviderOrder is the payment provider's handle for an order awaiting online payment.
type ProviderOrder struct {
	ID          string `json:"id"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

type PaymentGateway interface {
	// CreateOrder registers an amount, in minor units, with the provider.
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*ProviderOrder, error)
}

// PaymentVerification is the client callback payload after the provider checkout completes.
type PaymentVerification struct {
	OrderID           string
	ProviderOrderID   string
	ProviderPaymentID string
	Signature         string
}
