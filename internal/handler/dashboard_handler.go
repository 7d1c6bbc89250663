package handler

import (
	"net/http"

	"flora-kart/internal/service"

	"github.com/rs/zerolog"
)

// DashboardHandler serves the admin reporting endpoints.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("handler", "dashboard").Logger(),
	}
}

func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Overview(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *DashboardHandler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.RecentOrders(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, out)
}

func (h *DashboardHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.Statistics(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}
	writeSuccess(w, http.StatusOK, out)
}
