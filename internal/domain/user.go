package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ContextKey string

const UserContextKey ContextKey = "user"

type User struct {
	ID            string          `json:"id"`
	Email         string          `json:"email"`
	Role          string          `json:"role"`
	FirstName     string          `json:"firstName"`
	LastName      string          `json:"lastName"`
	Phone         string          `json:"phone"`
	WalletBalance decimal.Decimal `json:"walletBalance"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type Address struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Label       string    `json:"label"`
	FullName    string    `json:"fullName"`
	Phone       string    `json:"phone"`
	AddressLine string    `json:"addressLine"`
	Landmark    string    `json:"landmark"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	PostalCode  string    `json:"postalCode"`
	Country     string    `json:"country"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Snapshot copies the address into the immutable form stored on an order.
func (a Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		FullName:    a.FullName,
		Phone:       a.Phone,
		AddressLine: a.AddressLine,
		Landmark:    a.Landmark,
		City:        a.City,
		State:       a.State,
		PostalCode:  a.PostalCode,
		Country:     a.Country,
	}
}

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetAddress(ctx context.Context, userID, addressID string) (*Address, error)
	GetAddresses(ctx context.Context, userID string) ([]Address, error)
}
