package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/djcafe/cafe/internal/api/request"
	"github.com/djcafe/cafe/internal/api/response"
	"github.com/djcafe/cafe/internal/core"
	"github.com/djcafe/cafe/internal/model"
)

type Pricing struct {
	svc *core.PricingService
	now func() time.Time
}

func NewPricing(svc *core.PricingService) *Pricing {
	return &Pricing{svc: svc, now: time.Now}
}

type priceChangeResponse struct {
	Changed bool               `json:"changed"`
	Change  *model.PriceChange `json:"change,omitempty"`
}

// UpdatePrice sets a product's price. An unchanged price answers with changed=false.
func (h *Pricing) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdatePrice
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	change, err := h.svc.UpdatePrice(r.Context(), id, req.Price, model.ReasonManual)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, priceChangeResponse{Changed: change != nil, Change: change})
}

func (h *Pricing) UpdateBounds(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdatePriceBounds
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, change, err := h.svc.UpdateBounds(r.Context(), id, req.MinPrice, req.MaxPrice)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, struct {
		Product *model.Product     `json:"product"`
		Change  *model.PriceChange `json:"change,omitempty"`
	}{p, change})
}

// Bulk applies every item independently and reports per-item results.
func (h *Pricing) Bulk(w http.ResponseWriter, r *http.Request) {
	var req request.BulkPriceUpdate
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]core.PriceItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = core.PriceItem{ProductID: it.ProductID, Price: it.Price}
	}

	results := h.svc.BulkUpdate(r.Context(), items)
	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}

	response.WriteJSON(w, http.StatusOK, struct {
		Results []core.BulkResult `json:"results"`
		Failed  int               `json:"failed"`
	}{results, failed})
}

func (h *Pricing) Reset(w http.ResponseWriter, r *http.Request) {
	changes, err := h.svc.ResetToBase(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if changes == nil {
		changes = []model.PriceChange{}
	}
	response.WriteJSON(w, http.StatusOK, changes)
}

func (h *Pricing) History(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	changes, err := h.svc.History(r.Context(), id, request.ParseLimit(r, request.DefaultLimit, request.MaxLimit))
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if changes == nil {
		changes = []model.PriceChange{}
	}
	response.WriteJSON(w, http.StatusOK, changes)
}

// Recent lists price changes across products, by default those of the last 24 hours.
func (h *Pricing) Recent(w http.ResponseWriter, r *http.Request) {
	since, err := request.ParseSince(r, h.now().Add(-24*time.Hour))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	changes, err := h.svc.Recent(r.Context(), since, request.ParseLimit(r, request.DefaultLimit, request.MaxLimit))
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if changes == nil {
		changes = []model.PriceChange{}
	}
	response.WriteJSON(w, http.StatusOK, changes)
}
