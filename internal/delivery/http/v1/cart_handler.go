package v1

import (
	"net/http"

	"solemate-backend/internal/usecase"
	"solemate-backend/pkg/utils"
)

type CartHandler struct {
	orderUC  *usecase.OrderUsecase
	couponUC *usecase.CouponUsecase
}

func NewCartHandler(orderUC *usecase.OrderUsecase, couponUC *usecase.CouponUsecase) *CartHandler {
	return &CartHandler{orderUC: orderUC, couponUC: couponUC}
}

type cartItemReq struct {
	VariantID string `json:"variantId" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// GetCart
// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := h.orderUC.GetCart(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, items)
}

// AddToCart adds quantity to the variant's line.
// POST /api/v1/cart/items
func (h *CartHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req cartItemReq
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	items, err := h.orderUC.AddToCart(r.Context(), user.ID, req.VariantID, req.Quantity)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, items)
}

// UpdateCart sets the line quantity.
// PUT /api/v1/cart/items
func (h *CartHandler) UpdateCart(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req cartItemReq
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	items, err := h.orderUC.UpdateCartQuantity(r.Context(), user.ID, req.VariantID, req.Quantity)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, items)
}

// DELETE /api/v1/cart/items/{variantId}
func (h *CartHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	items, err := h.orderUC.RemoveFromCart(r.Context(), user.ID, r.PathValue("variantId"))
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, items)
}

// Summary prices the cart with offers, the held coupon, shipping and tax.
// GET /api/v1/cart/summary
func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	summary, err := h.orderUC.CartSummary(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, summary)
}

// POST /api/v1/cart/coupon
func (h *CartHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Code string `json:"code" validate:"required,max=32"`
	}
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	result, err := h.couponUC.ApplyCoupon(r.Context(), user.ID, req.Code)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, result)
}

// DELETE /api/v1/cart/coupon
func (h *CartHandler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.couponUC.RemoveCoupon(r.Context(), user.ID); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
