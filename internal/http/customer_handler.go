package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/crm/internal/service"
)

type customerHandler struct {
	*responder
	customerSvc service.CustomerService
}

func (h *customerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	res, err := h.customerSvc.CreateCustomer(r.Context(), service.CreateCustomerParams(req))
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("customer service create customer: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusCreated, createCustomerResponse{
		Customer: toCustomerResponse(res.Customer),
		Message:  res.Message,
	})
}

func (h *customerHandler) BulkCreateCustomers(w http.ResponseWriter, r *http.Request) {
	var req []createCustomerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	rows := make([]service.CreateCustomerParams, 0, len(req))
	for _, row := range req {
		rows = append(rows, service.CreateCustomerParams(row))
	}

	res := h.customerSvc.BulkCreateCustomers(r.Context(), rows)

	h.writeJSON(w, r, http.StatusOK, bulkCreateCustomersResponse{
		Customers: mapSlice(res.Customers, toCustomerResponse),
		Errors:    res.Errors,
	})
}

func (h *customerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	var params service.ListCustomersParams
	if err := bindQuery(r, "name", &params.NameContains); err != nil {
		h.handleRequestError(w, r, err)
		return
	}
	if err := bindQuery(r, "email", &params.EmailContains); err != nil {
		h.handleRequestError(w, r, err)
		return
	}
	if err := bindPage(r, &params.Limit, &params.Offset); err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	customers, err := h.customerSvc.ListCustomers(r.Context(), params)
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("customer service list customers: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, mapSlice(customers, toCustomerResponse))
}

func (h *customerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r)
	if err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	customer, err := h.customerSvc.GetCustomer(r.Context(), id)
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("customer service get customer: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, toCustomerResponse(customer))
}

func (h *customerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathID(r)
	if err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	if err := h.customerSvc.DeleteCustomer(r.Context(), id); err != nil {
		h.handleResponseError(w, r, fmt.Errorf("customer service delete customer: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
