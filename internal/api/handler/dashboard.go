package handler

import (
	"net/http"

	"github.com/djcafe/cafe/internal/api/response"
	"github.com/djcafe/cafe/internal/core"
)

type Dashboard struct {
	svc *core.DashboardService
}

func NewDashboard(svc *core.DashboardService) *Dashboard {
	return &Dashboard{svc: svc}
}

func (h *Dashboard) Summary(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Summary(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, d)
}
