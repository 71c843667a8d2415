package v1

import (
	"net/http"

	"solemate-backend/internal/domain"
	"solemate-backend/internal/usecase"
	"solemate-backend/pkg/utils"
)

type AdminOfferHandler struct {
	offerUC *usecase.OfferUsecase
}

func NewAdminOfferHandler(uc *usecase.OfferUsecase) *AdminOfferHandler {
	return &AdminOfferHandler{offerUC: uc}
}

// GET /api/v1/admin/offers?page=1&limit=20
func (h *AdminOfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pageParams(r)
	offers, total, err := h.offerUC.ListOffers(r.Context(), limit, offset)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WritePaginated(w, offers, domain.NewPagination(page, limit, total))
}

// POST /api/v1/admin/offers
func (h *AdminOfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req usecase.OfferRequest
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	offer, err := h.offerUC.CreateOffer(r.Context(), req)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, offer)
}

// GET /api/v1/admin/offers/{id}
func (h *AdminOfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	offer, err := h.offerUC.GetOffer(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, offer)
}

// PUT /api/v1/admin/offers/{id}
func (h *AdminOfferHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	var req usecase.OfferRequest
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	offer, err := h.offerUC.UpdateOffer(r.Context(), r.PathValue("id"), req)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, offer)
}

// DELETE /api/v1/admin/offers/{id}
func (h *AdminOfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	if err := h.offerUC.DeleteOffer(r.Context(), r.PathValue("id")); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
