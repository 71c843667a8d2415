package v1

import (
	"net/http"

	"solemate-backend/internal/domain"
	"solemate-backend/internal/usecase"
	"solemate-backend/pkg/utils"
)

type WalletHandler struct {
	walletUC *usecase.WalletUsecase
}

func NewWalletHandler(uc *usecase.WalletUsecase) *WalletHandler {
	return &WalletHandler{walletUC: uc}
}

// GetWallet returns the balance and a page of ledger entries, newest first.
// GET /api/v1/wallet?page=1&limit=20
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, limit, offset := pageParams(r)

	balance, err := h.walletUC.Balance(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	txns, total, err := h.walletUC.Transactions(r.Context(), user.ID, limit, offset)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WritePaginated(w, map[string]any{
		"balance":      balance,
		"transactions": txns,
	}, domain.NewPagination(page, limit, total))
}

// RecomputeBalance rebuilds a user's cached balance from the ledger.
// POST /api/v1/admin/users/{id}/wallet/recompute
func (h *WalletHandler) RecomputeBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.walletUC.RecomputeBalance(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, map[string]any{"balance": balance})
}
