package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// WalletTransaction is an append-only ledger entry. Amount is always non-negative; Type gives the sign.
type WalletTransaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Description string          `json:"description"`
	ReferenceID string          `json:"referenceId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Signed returns the amount with the sign implied by the transaction type.
func (t WalletTransaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

type WalletRepository interface {
	AppendTransaction(ctx context.Context, txn *WalletTransaction) error
	// AdjustBalance adds delta to the cached balance. A negative delta is applied only when the
	// balance covers it, otherwise ErrInsufficientBalance.
	AdjustBalance(ctx context.Context, userID string, delta decimal.Decimal) error
	GetBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	SetBalance(ctx context.Context, userID string, balance decimal.Decimal) error
	// SumLedger returns Σcredits − Σdebits for the user.
	SumLedger(ctx context.Context, userID string) (decimal.Decimal, error)
	ListTransactions(ctx context.Context, userID string, limit, offset int) ([]WalletTransaction, int64, error)
}
