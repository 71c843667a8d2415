package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"solemate-backend/internal/domain"
	pkgerrors "solemate-backend/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestResolveOffer(t *testing.T) {
	product := domain.Product{ID: "p1", CategoryID: "running", Price: dec("2000")}

	tests := []struct {
		name   string
		offers []domain.Offer
		want   int
		final  string
	}{
		{name: "no offers", offers: nil, want: 0, final: "2000"},
		{
			name: "highest applicable wins",
			offers: []domain.Offer{
				{ID: "o1", DiscountPercentage: 10, ProductIDs: []string{"p1"}},
				{ID: "o2", DiscountPercentage: 25, CategoryIDs: []string{"running"}},
				{ID: "o3", DiscountPercentage: 15},
				{ID: "o4", DiscountPercentage: 50, ProductIDs: []string{"p2"}},
			},
			want:  25,
			final: "1500",
		},
		{
			name: "offers for other products are ignored",
			offers: []domain.Offer{
				{ID: "o1", DiscountPercentage: 40, ProductIDs: []string{"p9"}},
				{ID: "o2", DiscountPercentage: 30, CategoryIDs: []string{"sandals"}},
			},
			want:  0,
			final: "2000",
		},
		{
			name:   "general offer",
			offers: []domain.Offer{{ID: "o1", DiscountPercentage: 12}},
			want:   12,
			final:  "1760",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ResolveOffer(product, tt.offers)
			assert.Equal(t, tt.want, res.DiscountPercentage)
			assertDec(t, "2000", res.OriginalPrice)
			assertDec(t, tt.final, res.FinalPrice)
		})
	}
}

func TestResolveOffer_MaxOfApplicable(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []string{"p1", "p2", "p3"}
	categories := []string{"c1", "c2"}

	for i := 0; i < 200; i++ {
		product := domain.Product{
			ID:         products[rng.Intn(len(products))],
			CategoryID: categories[rng.Intn(len(categories))],
			Price:      decimal.NewFromInt(int64(100 + rng.Intn(5000))),
		}
		offers := make([]domain.Offer, rng.Intn(6))
		want := 0
		for j := range offers {
			o := domain.Offer{ID: fmt.Sprintf("o%d", j), DiscountPercentage: 1 + rng.Intn(90)}
			switch rng.Intn(3) {
			case 0:
				o.ProductIDs = []string{products[rng.Intn(len(products))]}
			case 1:
				o.CategoryIDs = []string{categories[rng.Intn(len(categories))]}
			}
			offers[j] = o

			applies := len(o.ProductIDs) == 0 && len(o.CategoryIDs) == 0 ||
				len(o.ProductIDs) == 1 && o.ProductIDs[0] == product.ID ||
				len(o.CategoryIDs) == 1 && o.CategoryIDs[0] == product.CategoryID
			if applies && o.DiscountPercentage > want {
				want = o.DiscountPercentage
			}
		}
		assert.Equal(t, want, ResolveOffer(product, offers).DiscountPercentage, "iteration %d", i)
	}
}

func cartLine(productID, categoryID, price string, qty, stock int) domain.CartItem {
	return domain.CartItem{
		VariantID: "var-" + productID,
		Quantity:  qty,
		Product:   domain.Product{ID: productID, CategoryID: categoryID, Price: dec(price), IsActive: true},
		Variant:   domain.Variant{ID: "var-" + productID, ProductID: productID, Stock: stock},
	}
}

func TestPriceItems_Shipping(t *testing.T) {
	rules := DefaultPricingRules()

	t.Run("above threshold ships free", func(t *testing.T) {
		priced, err := PriceItems([]domain.CartItem{cartLine("p1", "c1", "1200", 1, 5)}, nil, rules, nil)
		require.NoError(t, err)
		assertDec(t, "1200", priced.Subtotal)
		assertDec(t, "0", priced.Shipping)
		assertDec(t, "1200", priced.Total)
	})

	t.Run("below threshold pays flat fee", func(t *testing.T) {
		priced, err := PriceItems([]domain.CartItem{cartLine("p1", "c1", "800", 1, 5)}, nil, rules, nil)
		require.NoError(t, err)
		assertDec(t, "50", priced.Shipping)
		assertDec(t, "850", priced.Total)
	})

	t.Run("exactly at threshold still pays", func(t *testing.T) {
		priced, err := PriceItems([]domain.CartItem{cartLine("p1", "c1", "500", 2, 5)}, nil, rules, nil)
		require.NoError(t, err)
		assertDec(t, "1000", priced.Subtotal)
		assertDec(t, "50", priced.Shipping)
	})

	t.Run("offer can pull the subtotal under the threshold", func(t *testing.T) {
		offers := []domain.Offer{{ID: "o1", DiscountPercentage: 20, ProductIDs: []string{"p1"}}}
		priced, err := PriceItems([]domain.CartItem{cartLine("p1", "c1", "1200", 1, 5)}, offers, rules, nil)
		require.NoError(t, err)
		assertDec(t, "960", priced.Subtotal)
		assertDec(t, "50", priced.Shipping)
		assertDec(t, "1010", priced.Total)
		assert.Equal(t, 20, priced.Lines[0].DiscountPercentage)
	})
}

func TestPriceItems_ExcludesUnavailableLines(t *testing.T) {
	inactive := cartLine("p2", "c1", "700", 1, 5)
	inactive.Product.IsActive = false
	short := cartLine("p3", "c1", "300", 4, 2)

	items := []domain.CartItem{cartLine("p1", "c1", "600", 2, 5), inactive, short}
	priced, err := PriceItems(items, nil, DefaultPricingRules(), nil)
	require.NoError(t, err)

	require.Len(t, priced.Lines, 1)
	assert.Len(t, priced.Excluded, 2)
	assertDec(t, "1200", priced.Subtotal)
	assertDec(t, "0", priced.Shipping)
}

func TestPriceItems_EmptyCart(t *testing.T) {
	_, err := PriceItems(nil, nil, DefaultPricingRules(), nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	assert.Equal(t, domain.ReasonCartEmpty, pkgerrors.ReasonOf(err))
}

func TestPriceItems_CouponAndTax(t *testing.T) {
	rules := DefaultPricingRules()
	rules.TaxRate = dec("0.05")

	applied := &domain.PendingCoupon{Code: "SAVE100", Discount: dec("100")}
	priced, err := PriceItems([]domain.CartItem{cartLine("p1", "c1", "1500", 1, 5)}, nil, rules, applied)
	require.NoError(t, err)
	assertDec(t, "75", priced.Tax)
	assertDec(t, "100", priced.CouponDiscount)
	assertDec(t, "1475", priced.Total)
}

func TestPriceItems_CouponClampedToPayable(t *testing.T) {
	applied := &domain.PendingCoupon{Code: "BIG", Discount: dec("5000")}
	priced, err := PriceItems([]domain.CartItem{cartLine("p1", "c1", "400", 1, 5)}, nil, DefaultPricingRules(), applied)
	require.NoError(t, err)
	assertDec(t, "450", priced.CouponDiscount)
	assertDec(t, "0", priced.Total)
}

func TestPricingUsecase_UsesEffectiveOffersOnly(t *testing.T) {
	f := newFixture()
	f.addUser("u1", "0")
	v := f.addProduct("p1", "c1", "1000", 5)
	f.addToCart("u1", v, 1)
	f.addOffer(30, []string{"p1"}, nil)

	expired := f.now.Add(-48 * time.Hour)
	f.store.offers["old"] = domain.Offer{ID: "old", DiscountPercentage: 60, IsActive: true, ValidFrom: expired, ValidTo: expired}

	priced, err := f.pricing.PriceCart(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, 30, priced.Lines[0].DiscountPercentage)
	assertDec(t, "700", priced.Subtotal)
}
