package pgrepo

import (
	"context"

	"solemate-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var (
		u       domain.User
		balance pgtype.Numeric
	)
	err := conn(ctx, r.db).QueryRow(ctx, `
		SELECT id::text, email, role, first_name, last_name, phone, wallet_balance, created_at, updated_at
		FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.Role, &u.FirstName, &u.LastName, &u.Phone, &balance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	u.WalletBalance = numericToDecimal(balance)
	return &u, nil
}

const addressColumns = `id::text, user_id::text, label, full_name, phone, address_line, landmark,
	city, state, postal_code, country, is_default, created_at`

func scanAddress(row pgx.Row) (domain.Address, error) {
	var a domain.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.FullName, &a.Phone, &a.AddressLine, &a.Landmark,
		&a.City, &a.State, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt)
	return a, err
}

func (r *userRepository) GetAddress(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	a, err := scanAddress(conn(ctx, r.db).QueryRow(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`, addressID, userID))
	if err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *userRepository) GetAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var addresses []domain.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, a)
	}
	return addresses, rows.Err()
}
