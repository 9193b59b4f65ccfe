package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/tuanvumaihuynh/crm/internal/storage/db"
)

const healthCheckTimeout = 2 * time.Second

type healthHandler struct {
	*responder
	checker db.HealthChecker
}

func (h *healthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	healthy, err := h.checker.IsHealthy(ctx)
	if err != nil || !healthy {
		h.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		h.writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}

	h.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
}
