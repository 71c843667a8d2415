package usecase

import (
	"context"
	"fmt"
	"strings"

	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"
	"solemate-backend/pkg/logger"

	"github.com/google/uuid"
)

// OfferUsecase handles admin offer management. Offers never touch product prices;
// they are resolved at read time by ResolveOffer.
type OfferUsecase struct {
	offerRepo domain.OfferRepository
}

func NewOfferUsecase(offerRepo domain.OfferRepository) *OfferUsecase {
	return &OfferUsecase{offerRepo: offerRepo}
}

type OfferRequest struct {
	Name               string   `json:"name" validate:"required,max=120"`
	DiscountPercentage int      `json:"discountPercentage" validate:"required,min=1,max=100"`
	ProductIDs         []string `json:"productIds" validate:"omitempty,dive,uuid"`
	CategoryIDs        []string `json:"categoryIds" validate:"omitempty,dive,uuid"`
	ValidFrom          string   `json:"validFrom" validate:"required"`
	ValidTo            string   `json:"validTo" validate:"required"`
	IsActive           bool     `json:"isActive"`
}

func offerFromRequest(req OfferRequest) (*domain.Offer, error) {
	invalid := func(msg string) error { return pkgerrors.New(pkgerrors.CodeValidation, msg) }

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalid("offer name is required")
	}
	if req.DiscountPercentage < 1 || req.DiscountPercentage > 100 {
		return nil, invalid("discount percentage must be between 1 and 100")
	}
	from, err := parseISO8601(req.ValidFrom)
	if err != nil {
		return nil, invalid("validFrom: " + err.Error())
	}
	to, err := parseISO8601(req.ValidTo)
	if err != nil {
		return nil, invalid("validTo: " + err.Error())
	}
	if to.Before(from) {
		return nil, invalid("validTo must not be before validFrom")
	}

	return &domain.Offer{
		Name:               name,
		DiscountPercentage: req.DiscountPercentage,
		ProductIDs:         compactIDs(req.ProductIDs),
		CategoryIDs:        compactIDs(req.CategoryIDs),
		IsActive:           req.IsActive,
		ValidFrom:          from,
		ValidTo:            to,
	}, nil
}

func compactIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (uc *OfferUsecase) CreateOffer(ctx context.Context, req OfferRequest) (*domain.Offer, error) {
	offer, err := offerFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := uc.offerRepo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	logger.FromContext(ctx).Info().
		Str("offer_id", offer.ID).
		Int("discount_pct", offer.DiscountPercentage).
		Bool("general", offer.IsGeneral()).
		Msg("offer created")
	return offer, nil
}

func (uc *OfferUsecase) UpdateOffer(ctx context.Context, id string, req OfferRequest) (*domain.Offer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer ID")
	}
	existing, err := uc.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "offer not found")
	}
	offer, err := offerFromRequest(req)
	if err != nil {
		return nil, err
	}
	offer.ID = existing.ID
	offer.CreatedAt = existing.CreatedAt
	if err := uc.offerRepo.Update(ctx, offer); err != nil {
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}
	return offer, nil
}

func (uc *OfferUsecase) GetOffer(ctx context.Context, id string) (*domain.Offer, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer ID")
	}
	offer, err := uc.offerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "offer not found")
	}
	return offer, nil
}

func (uc *OfferUsecase) ListOffers(ctx context.Context, limit, offset int) ([]domain.Offer, int64, error) {
	offers, total, err := uc.offerRepo.List(ctx, clampLimit(limit), offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list offers: %w", err)
	}
	return offers, total, nil
}

func (uc *OfferUsecase) DeleteOffer(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid offer ID")
	}
	if _, err := uc.offerRepo.GetByID(ctx, id); err != nil {
		return notFoundOr(err, "offer not found")
	}
	return uc.offerRepo.Delete(ctx, id)
}
