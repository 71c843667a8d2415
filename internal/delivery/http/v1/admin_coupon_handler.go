package v1

import (
	"net/http"

	"solemate-backend/internal/domain"
	"solemate-backend/internal/usecase"
	"solemate-backend/pkg/utils"
)

// AdminCouponHandler handles admin coupon management endpoints.
type AdminCouponHandler struct {
	couponUC *usecase.CouponUsecase
}

func NewAdminCouponHandler(uc *usecase.CouponUsecase) *AdminCouponHandler {
	return &AdminCouponHandler{couponUC: uc}
}

// ListCoupons returns paginated list of all coupons.
// GET /api/v1/admin/coupons?page=1&limit=20
func (h *AdminCouponHandler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	coupons, total, err := h.couponUC.ListCoupons(r.Context(), limit, offset)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WritePaginated(w, coupons, domain.NewPagination(page, limit, total))
}

// POST /api/v1/admin/coupons
func (h *AdminCouponHandler) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req usecase.CouponRequest
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	coupon, err := h.couponUC.CreateCoupon(r.Context(), req)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, coupon)
}

// GET /api/v1/admin/coupons/{id}
func (h *AdminCouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	coupon, err := h.couponUC.GetCoupon(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, coupon)
}

// PUT /api/v1/admin/coupons/{id}
func (h *AdminCouponHandler) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req usecase.CouponRequest
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	coupon, err := h.couponUC.UpdateCoupon(r.Context(), r.PathValue("id"), req)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, coupon)
}

// DELETE /api/v1/admin/coupons/{id}
func (h *AdminCouponHandler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.couponUC.DeleteCoupon(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
