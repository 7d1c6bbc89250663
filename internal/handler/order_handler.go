package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"flora-kart/internal/model"
	"flora-kart/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orders   service.OrderService
	payments service.PaymentService
	logger   zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(orders service.OrderService, payments service.PaymentService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		payments: payments,
		logger:   logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/v1/orders. Bank transfers answer with the gateway's payment data.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.OrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	result, err := h.orders.CreateOrder(r.Context(), &p.ID, &req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if result.Payment != nil {
		writeSuccess(w, http.StatusCreated, model.PaymentResponse{PaymentData: result.Payment})
		return
	}
	writeSuccess(w, http.StatusCreated, model.OrderResponse{Order: result.Order})
}

// Get handles GET /api/v1/orders/{id}; id is a native id or an order code.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	ref, err := model.ParseOrderRef(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.orders.GetOrder(r.Context(), p, ref)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	items := order.Items
	if items == nil {
		items = []model.OrderItem{}
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"order": order,
		"items": items,
	})
}

// MyOrders handles GET /api/v1/orders/my-orders.
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	result, err := h.orders.ListUserOrders(r.Context(), p.ID, pageFromQuery(r))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

// List handles GET /api/v1/orders for admins, filtered by status and customerPhone.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.OrderFilter{
		Status:        model.OrderStatus(strings.TrimSpace(q.Get("status"))),
		CustomerPhone: strings.TrimSpace(q.Get("customerPhone")),
		Page:          pageFromQuery(r),
	}

	result, err := h.orders.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

// UpdateStatus handles PATCH /api/v1/orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	ref, err := model.ParseOrderRef(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	var req model.UpdateOrderStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), p, ref, req.Status)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	// Clients read the order at data.data; keep the double nesting.
	writeSuccess(w, http.StatusOK, map[string]any{"data": order})
}

// Delete handles DELETE /api/v1/orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	ref, err := model.ParseOrderRef(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.orders.DeleteOrder(r.Context(), p, ref); err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeMessage(w, "Order deleted successfully")
}

// Callback handles POST /api/v1/orders/callback from the payment provider.
// The provider always gets HTTP 200; failures are reported in the body.
func (h *OrderHandler) Callback(w http.ResponseWriter, r *http.Request) {
	var req model.CallbackRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("malformed payment callback")
		writeJSON(w, http.StatusOK, model.CallbackFailure{ReturnMessage: "invalid callback body"})
		return
	}

	order, err := h.payments.HandleCallback(r.Context(), &req)
	if err != nil {
		writeJSON(w, http.StatusOK, model.CallbackFailure{ReturnMessage: callbackMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, model.CallbackSuccess{
		Status: "success",
		Data:   model.OrderResponse{Order: order},
	})
}

// callbackMessage hides store failures from the provider.
func callbackMessage(err error) string {
	var de *model.DomainError
	switch {
	case errors.Is(err, service.ErrInvalidMAC),
		errors.Is(err, service.ErrInvalidCallback),
		errors.Is(err, service.ErrMissingOrderCode),
		errors.As(err, &de):
		return err.Error()
	default:
		return "An error occurred"
	}
}
