package usecase

import (
	"context"
	"errors"
	"fmt"

	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/logger"

	"github.com/shopspring/decimal"
)

// WalletUsecase keeps the cached wallet balance equal to the sum of the ledger.
// Every mutation appends a ledger entry and adjusts the balance in one transaction.
type WalletUsecase struct {
	walletRepo domain.WalletRepository
	txManager  domain.TransactionManager
}

func NewWalletUsecase(walletRepo domain.WalletRepository, txManager domain.TransactionManager) *WalletUsecase {
	return &WalletUsecase{
		walletRepo: walletRepo,
		txManager:  txManager,
	}
}

func (u *WalletUsecase) Credit(ctx context.Context, userID string, amount decimal.Decimal, description, referenceID string) (*domain.WalletTransaction, error) {
	return u.post(ctx, userID, domain.TransactionTypeCredit, amount, description, referenceID)
}

// Debit fails with INSUFFICIENT_WALLET_BALANCE when the balance does not cover amount.
func (u *WalletUsecase) Debit(ctx context.Context, userID string, amount decimal.Decimal, description, referenceID string) (*domain.WalletTransaction, error) {
	return u.post(ctx, userID, domain.TransactionTypeDebit, amount, description, referenceID)
}

func (u *WalletUsecase) post(ctx context.Context, userID string, kind domain.TransactionType, amount decimal.Decimal, description, referenceID string) (*domain.WalletTransaction, error) {
	amount = domain.RoundMinor(amount)
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet amount must be greater than 0")
	}

	txn := &domain.WalletTransaction{
		UserID:      userID,
		Amount:      amount,
		Type:        kind,
		Description: description,
		ReferenceID: referenceID,
	}

	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.walletRepo.AppendTransaction(txCtx, txn); err != nil {
			return fmt.Errorf("failed to append wallet transaction: %w", err)
		}
		if err := u.walletRepo.AdjustBalance(txCtx, userID, txn.Signed()); err != nil {
			if errors.Is(err, domain.ErrInsufficientBalance) {
				return pkgerrors.New(pkgerrors.CodeBusinessRule, "insufficient wallet balance").
					WithReason(domain.ReasonInsufficientBalance)
			}
			if errors.Is(err, domain.ErrNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "wallet owner not found")
			}
			return fmt.Errorf("failed to update wallet balance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("user_id", userID).
		Str("type", string(kind)).
		Str("amount", amount.String()).
		Str("reference", referenceID).
		Msg("wallet transaction posted")
	return txn, nil
}

func (u *WalletUsecase) Balance(ctx context.Context, userID string) (decimal.Decimal, error) {
	balance, err := u.walletRepo.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, notFoundOr(err, "wallet not found")
	}
	return balance, nil
}

func (u *WalletUsecase) Transactions(ctx context.Context, userID string, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	txns, total, err := u.walletRepo.ListTransactions(ctx, userID, clampLimit(limit), offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wallet transactions: %w", err)
	}
	return txns, total, nil
}

// RecomputeBalance rebuilds the cached balance from the ledger and repairs any drift.
func (u *WalletUsecase) RecomputeBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var ledger decimal.Decimal
	err := u.txManager.Do(ctx, func(txCtx context.Context) error {
		sum, err := u.walletRepo.SumLedger(txCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to sum wallet ledger: %w", err)
		}
		cached, err := u.walletRepo.GetBalance(txCtx, userID)
		if err != nil {
			return notFoundOr(err, "wallet not found")
		}
		ledger = sum
		if cached.Equal(sum) {
			return nil
		}
		logger.FromContext(ctx).Warn().
			Str("user_id", userID).
			Str("cached", cached.String()).
			Str("ledger", sum.String()).
			Msg("wallet balance drift repaired")
		return u.walletRepo.SetBalance(txCtx, userID, sum)
	})
	if err != nil {
		return decimal.Zero, err
	}
	return ledger, nil
}
