package usecase

import (
	"context"
	"testing"

	pkgerrors "solemate-backend/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferUsecase_CRUD(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	productID := uuid.NewString()

	offer, err := f.offers.CreateOffer(ctx, OfferRequest{
		Name:               " Monsoon sale ",
		DiscountPercentage: 20,
		ProductIDs:         []string{productID, productID, " "},
		ValidFrom:          "2026-03-01",
		ValidTo:            "2026-03-31",
		IsActive:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Monsoon sale", offer.Name)
	assert.Equal(t, []string{productID}, offer.ProductIDs)
	assert.False(t, offer.IsGeneral())

	updated, err := f.offers.UpdateOffer(ctx, offer.ID, OfferRequest{
		Name:               "Storewide",
		DiscountPercentage: 10,
		ValidFrom:          "2026-03-01",
		ValidTo:            "2026-04-30",
	})
	require.NoError(t, err)
	assert.True(t, updated.IsGeneral())

	got, err := f.offers.GetOffer(ctx, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.DiscountPercentage)

	require.NoError(t, f.offers.DeleteOffer(ctx, offer.ID))
	_, err = f.offers.GetOffer(ctx, offer.ID)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}

func TestOfferUsecase_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []OfferRequest{
		{Name: "", DiscountPercentage: 10, ValidFrom: "2026-03-01", ValidTo: "2026-03-02"},
		{Name: "x", DiscountPercentage: 0, ValidFrom: "2026-03-01", ValidTo: "2026-03-02"},
		{Name: "x", DiscountPercentage: 101, ValidFrom: "2026-03-01", ValidTo: "2026-03-02"},
		{Name: "x", DiscountPercentage: 10, ValidFrom: "yesterday", ValidTo: "2026-03-02"},
		{Name: "x", DiscountPercentage: 10, ValidFrom: "2026-03-05", ValidTo: "2026-03-02"},
	}
	for _, req := range tests {
		_, err := f.offers.CreateOffer(ctx, req)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err), "%+v", req)
	}

	_, err := f.offers.GetOffer(ctx, "not-a-uuid")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}
