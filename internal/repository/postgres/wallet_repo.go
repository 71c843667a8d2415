package pgrepo

import (
	"context"
	"fmt"

	"solemate-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type walletRepository struct {
	db *pgxpool.Pool
}

func NewWalletRepository(db *pgxpool.Pool) domain.WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) AppendTransaction(ctx context.Context, txn *domain.WalletTransaction) error {
	err := conn(ctx, r.db).QueryRow(ctx, `
		INSERT INTO wallet_transactions (user_id, amount, type, description, reference_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at`,
		txn.UserID, decimalToNumeric(txn.Amount), string(txn.Type), txn.Description, nullString(txn.ReferenceID)).
		Scan(&txn.ID, &txn.CreatedAt)
	return mapErr(err)
}

// AdjustBalance is a single conditional update; a debit larger than the balance matches no row.
func (r *walletRepository) AdjustBalance(ctx context.Context, userID string, delta decimal.Decimal) error {
	tag, err := conn(ctx, r.db).Exec(ctx, `
		UPDATE users SET wallet_balance = wallet_balance + $2, updated_at = NOW()
		WHERE id = $1 AND wallet_balance + $2 >= 0`, userID, decimalToNumeric(delta))
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetBalance(ctx, userID); err != nil {
			return err
		}
		return fmt.Errorf("%w: user %s", domain.ErrInsufficientBalance, userID)
	}
	return nil
}

func (r *walletRepository) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	var balance pgtype.Numeric
	if err := conn(ctx, r.db).QueryRow(ctx, `SELECT wallet_balance FROM users WHERE id = $1`, userID).Scan(&balance); err != nil {
		return decimal.Zero, mapErr(err)
	}
	return numericToDecimal(balance), nil
}

func (r *walletRepository) SetBalance(ctx context.Context, userID string, balance decimal.Decimal) error {
	tag, err := conn(ctx, r.db).Exec(ctx,
		`UPDATE users SET wallet_balance = $2, updated_at = NOW() WHERE id = $1`, userID, decimalToNumeric(balance))
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *walletRepository) SumLedger(ctx context.Context, userID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN type = 'debit' THEN -amount ELSE amount END), 0)
		FROM wallet_transactions WHERE user_id = $1`, userID).Scan(&sum)
	if err != nil {
		return decimal.Zero, mapErr(err)
	}
	return numericToDecimal(sum), nil
}

func (r *walletRepository) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]domain.WalletTransaction, int64, error) {
	limit, offset = pageOffset(limit, offset)
	db := conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	rows, err := db.Query(ctx, `
		SELECT id::text, user_id::text, amount, type, description, reference_id, created_at
		FROM wallet_transactions WHERE user_id = $1
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	var txns []domain.WalletTransaction
	for rows.Next() {
		var (
			t           domain.WalletTransaction
			amount      pgtype.Numeric
			referenceID *string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &amount, &t.Type, &t.Description, &referenceID, &t.CreatedAt); err != nil {
			return nil, 0, err
		}
		t.Amount = numericToDecimal(amount)
		t.ReferenceID = ptrString(referenceID)
		txns = append(txns, t)
	}
	return txns, total, rows.Err()
}
