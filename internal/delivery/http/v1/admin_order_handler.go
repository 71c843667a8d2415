package v1

import (
	"net/http"

	"solemate-backend/internal/domain"
	"solemate-backend/internal/usecase"
	"solemate-backend/pkg/utils"
)

type AdminOrderHandler struct {
	orderUC *usecase.OrderUsecase
	// onChange runs after every successful admin mutation; cached sales reports hang off it.
	onChange func()
}

func NewAdminOrderHandler(uc *usecase.OrderUsecase, onChange func()) *AdminOrderHandler {
	if onChange == nil {
		onChange = func() {}
	}
	return &AdminOrderHandler{orderUC: uc, onChange: onChange}
}

// ListOrders
// GET /api/v1/admin/orders?page=1&limit=20&status=&payment_status=&payment_method=&search=
func (h *AdminOrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit, _ := pageParams(r)
	q := r.URL.Query()
	filter := domain.OrderFilter{
		Page:          page,
		Limit:         limit,
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
		PaymentMethod: q.Get("payment_method"),
		Search:        q.Get("search"),
	}

	orders, pagination, err := h.orderUC.AdminListOrders(r.Context(), filter)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WritePaginated(w, orders, pagination)
}

// GET /api/v1/admin/orders/{id}
func (h *AdminOrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderUC.AdminGetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, order)
}

// GET /api/v1/admin/orders/{id}/history
func (h *AdminOrderHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.orderUC.GetOrderHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, history)
}

type updateStatusReq struct {
	ItemID string `json:"itemId" validate:"omitempty,uuid"`
	Status string `json:"status" validate:"required,oneof=SHIPPED OUT_FOR_DELIVERY DELIVERED"`
	Note   string `json:"note" validate:"max=500"`
}

// UpdateStatus moves one line, or every eligible line, forward.
// PUT /api/v1/admin/orders/{id}/status
func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req updateStatusReq
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	order, err := h.orderUC.UpdateStatus(r.Context(), usecase.UpdateStatusInput{
		OrderID: r.PathValue("id"),
		LineID:  req.ItemID,
		Status:  req.Status,
		Note:    req.Note,
		ActorID: admin.ID,
	})
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	h.onChange()
	utils.WriteSuccess(w, http.StatusOK, order)
}

// CancelOrder cancels on behalf of the customer; stock and refunds follow the customer path.
// POST /api/v1/admin/orders/{id}/cancel
func (h *AdminOrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req cancelReq
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	result, err := h.orderUC.CancelOrder(r.Context(), usecase.CancelInput{
		OrderID: r.PathValue("id"),
		LineID:  req.ItemID,
		Reason:  req.Reason,
		ActorID: admin.ID,
	})
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	h.onChange()
	utils.WriteSuccess(w, http.StatusOK, result)
}

// ResolveReturn approves or rejects a RETURN_REQUESTED line.
// POST /api/v1/admin/orders/{id}/items/{itemId}/return
func (h *AdminOrderHandler) ResolveReturn(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Approve *bool  `json:"approve" validate:"required"`
		Note    string `json:"note" validate:"max=500"`
	}
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	order, err := h.orderUC.ResolveReturn(r.Context(), usecase.ResolveReturnInput{
		OrderID: r.PathValue("id"),
		LineID:  r.PathValue("itemId"),
		Approve: *req.Approve,
		Note:    req.Note,
		ActorID: admin.ID,
	})
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	h.onChange()
	utils.WriteSuccess(w, http.StatusOK, order)
}

// MarkCollected records cash received for a COD order.
// POST /api/v1/admin/orders/{id}/payment/collected
func (h *AdminOrderHandler) MarkCollected(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireUser(w, r)
	if !ok {
		return
	}
	order, err := h.orderUC.MarkPaymentCollected(r.Context(), r.PathValue("id"), admin.ID)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	h.onChange()
	utils.WriteSuccess(w, http.StatusOK, order)
}

// GetInventoryLogs lists stock movements caused by orders, cancellations and returns.
// GET /api/v1/admin/inventory/{variantId}/logs?page=1&limit=20
func (h *AdminOrderHandler) GetInventoryLogs(w http.ResponseWriter, r *http.Request) {
	_, limit, offset := pageParams(r)
	logs, err := h.orderUC.InventoryLogs(r.Context(), r.PathValue("variantId"), limit, offset)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, logs)
}
