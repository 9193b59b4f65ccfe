package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/crm/internal/service"
)

type orderHandler struct {
	*responder
	orderSvc service.OrderService
}

func (h *orderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	res, err := h.orderSvc.CreateOrder(r.Context(), service.CreateOrderParams(req))
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("order service create order: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusCreated, createOrderResponse{
		Order:   toOrderResponse(res.Order),
		Message: res.Message,
	})
}

func (h *orderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var params service.ListOrdersParams
	if err := bindQuery(r, "since", &params.Since); err != nil {
		h.handleRequestError(w, r, err)
		return
	}
	if err := bindQuery(r, "customer_id", &params.CustomerID); err != nil {
		h.handleRequestError(w, r, err)
		return
	}
	if err := bindPage(r, &params.Limit, &params.Offset); err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	orders, err := h.orderSvc.ListOrders(r.Context(), params)
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("order service list orders: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, mapSlice(orders, toOrderResponse))
}

func (h *orderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r)
	if err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	order, err := h.orderSvc.GetOrder(r.Context(), id)
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("order service get order: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, toOrderResponse(order))
}
