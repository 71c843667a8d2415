package v1

import (
	"net/http"

	"solemate-backend/internal/domain"
	"solemate-backend/internal/usecase"
	"solemate-backend/pkg/utils"
)

type OrderHandler struct {
	orderUC   *usecase.OrderUsecase
	paymentUC *usecase.PaymentUsecase
	// keyID is the public provider key the client needs to open checkout.
	keyID string
}

func NewOrderHandler(orderUC *usecase.OrderUsecase, paymentUC *usecase.PaymentUsecase, keyID string) *OrderHandler {
	return &OrderHandler{orderUC: orderUC, paymentUC: paymentUC, keyID: keyID}
}

type checkoutResponse struct {
	Order         *domain.Order         `json:"order"`
	ProviderOrder *domain.ProviderOrder `json:"providerOrder,omitempty"`
	KeyID         string                `json:"keyId,omitempty"`
}

// Checkout places an order from the cart.
// POST /api/v1/checkout
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req usecase.PlaceOrderInput
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	result, err := h.orderUC.PlaceOrder(r.Context(), user.ID, req)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	resp := checkoutResponse{Order: result.Order, ProviderOrder: result.ProviderOrder}
	if result.ProviderOrder != nil {
		resp.KeyID = h.keyID
	}
	utils.WriteSuccess(w, http.StatusCreated, resp)
}

// GET /api/v1/orders
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	orders, err := h.orderUC.ListMyOrders(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, orders)
}

// ListAddresses returns the saved addresses usable at checkout.
// GET /api/v1/addresses
func (h *OrderHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	addresses, err := h.orderUC.ListAddresses(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, addresses)
}

// GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	order, err := h.orderUC.GetOrder(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, order)
}

type cancelReq struct {
	ItemID string `json:"itemId" validate:"omitempty,uuid"`
	Reason string `json:"reason" validate:"required,max=500"`
}

// CancelOrder cancels one line (itemId) or every cancellable line.
// POST /api/v1/orders/{id}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
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
		UserID:  user.ID,
		LineID:  req.ItemID,
		Reason:  req.Reason,
		ActorID: user.ID,
	})
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, result)
}

// POST /api/v1/orders/{id}/items/{itemId}/return
func (h *OrderHandler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason" validate:"required,max=500"`
	}
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	order, err := h.orderUC.RequestReturn(r.Context(), usecase.ReturnInput{
		OrderID: r.PathValue("id"),
		UserID:  user.ID,
		LineID:  r.PathValue("itemId"),
		Reason:  req.Reason,
	})
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, order)
}

type verifyPaymentReq struct {
	OrderID           string `json:"orderId" validate:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// VerifyPayment reconciles the provider callback with the order.
// POST /api/v1/payments/verify
func (h *OrderHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req verifyPaymentReq
	if err := utils.DecodeJSONBody(w, r, &req); err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	order, err := h.paymentUC.VerifyPayment(r.Context(), user.ID, domain.PaymentVerification{
		OrderID:           req.OrderID,
		ProviderOrderID:   req.RazorpayOrderID,
		ProviderPaymentID: req.RazorpayPaymentID,
		Signature:         req.RazorpaySignature,
	})
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, order)
}

// RetryPayment issues a fresh provider order for a pending online order.
// POST /api/v1/orders/{id}/payment/retry
func (h *OrderHandler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	providerOrder, err := h.paymentUC.RetryPayment(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		utils.WriteError(r.Context(), w, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, map[string]any{
		"providerOrder": providerOrder,
		"keyId":         h.keyID,
	})
}
