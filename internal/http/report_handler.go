package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/crm/internal/service"
)

type reportHandler struct {
	*responder
	reportSvc service.ReportService
}

func (h *reportHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reportSvc.GetStats(r.Context())
	if err != nil {
		h.handleResponseError(w, r, fmt.Errorf("report service get stats: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, statsResponse{
		TotalCustomers: stats.TotalCustomers,
		TotalOrders:    stats.TotalOrders,
		TotalRevenue:   formatMoney(stats.TotalRevenue),
	})
}
