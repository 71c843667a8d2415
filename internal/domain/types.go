package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Sentinel errors returned by repositories. Usecases translate them into typed errors.
var (
	ErrNotFound            = errors.New("record not found")
	ErrVersionConflict     = errors.New("version conflict")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrCouponUsageExceeded = errors.New("coupon usage limit reached")
	ErrDuplicate           = errors.New("duplicate record")
)

type TransactionManager interface {
	// Do runs fn inside a transaction carried by ctx. Nested calls join the outer transaction.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// RoundUnit rounds to whole currency units; used once per aggregate.
func RoundUnit(d decimal.Decimal) decimal.Decimal {
	return d.Round(0)
}

// RoundMinor rounds to the currency's minor unit.
func RoundMinor(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToMinorUnits converts an amount to integer minor units (paise) for the payment provider.
func ToMinorUnits(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Pagination
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Pagination{Page: page, Limit: limit, TotalItems: total, TotalPages: pages}
}

// Response standardizes API responses.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}
