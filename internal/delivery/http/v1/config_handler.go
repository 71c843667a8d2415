package v1

import (
	"net/http"
	"time"

	"solemate-backend/internal/domain"
	"solemate-backend/internal/usecase"
	"solemate-backend/pkg/cache"
	"solemate-backend/pkg/utils"
)

const enumsCacheKey = "system:config:enums"

type ConfigHandler struct {
	cache cache.CacheService
	rules usecase.PricingRules
}

func NewConfigHandler(cache cache.CacheService, rules usecase.PricingRules) *ConfigHandler {
	return &ConfigHandler{cache: cache, rules: rules}
}

// GetEnums exposes status vocabularies and the storewide pricing rules.
// GET /api/v1/config/enums
func (h *ConfigHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if val, found := h.cache.Get(enumsCacheKey); found {
		utils.WriteSuccess(w, http.StatusOK, val)
		return
	}

	response := map[string]any{
		"orderStatuses":   domain.OrderStatuses,
		"lineStatuses":    domain.LineStatuses,
		"paymentStatuses": domain.PaymentStatuses,
		"paymentMethods":  domain.PaymentMethods,
		"pricing": map[string]any{
			"currency":              h.rules.Currency,
			"freeShippingThreshold": h.rules.FreeShippingThreshold,
			"flatShippingFee":       h.rules.FlatShippingFee,
			"taxRate":               h.rules.TaxRate,
			"maxCartQuantity":       h.rules.MaxCartQuantity,
		},
	}
	h.cache.Set(enumsCacheKey, response, time.Hour)
	utils.WriteSuccess(w, http.StatusOK, response)
}
