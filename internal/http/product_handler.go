package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/crm/internal/service"
)

type productHandler struct {
	*responder
	productSvc service.ProductService
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var params service.ListProductsParams
	if err := bindQuery(r, "name", &params.NameContains); err != nil {
		h.handleRequestError(w, r, err)
		return
	}
	if err := bindQuery(r, "stock_lt", &params.StockLessThan); err != nil {
		h.handleRequestError(w, r, err)
		return
	}
	if err := bindPage(r, &params.Limit, &params.Offset); err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	products, err := h.productSvc.ListProducts(r.Context(), params)
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("product service list products: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, mapSlice(products, toProductResponse))
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.handleRequestError(w, r, err)
		return
	}

	res, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams(req))
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("product service create product: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusCreated, createProductResponse{
		Product: toProductResponse(res.Product),
		Message: res.Message,
	})
}

func (h *productHandler) RestockProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.productSvc.UpdateLowStockProducts(r.Context())
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("product service update low stock products: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, restockProductsResponse{
		UpdatedProducts: mapSlice(res.Products, toProductResponse),
		Message:         res.Message,
	})
}
