package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/djcafe/cafe/internal/api/request"
	"github.com/djcafe/cafe/internal/api/response"
	"github.com/djcafe/cafe/internal/core"
	"github.com/djcafe/cafe/internal/model"
)

type Table struct {
	svc *core.TableService
}

func NewTable(svc *core.TableService) *Table {
	return &Table{svc: svc}
}

func (h *Table) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidTableStatus(status) {
		response.WriteError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	tables, err := h.svc.List(r.Context(), status)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if tables == nil {
		tables = []model.Table{}
	}
	response.WriteJSON(w, http.StatusOK, tables)
}

func (h *Table) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTable
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	t := &model.Table{
		Number: req.Number,
		Name:   req.Name,
		Seats:  req.Seats,
		Status: req.Status,
	}
	if err := h.svc.Create(r.Context(), t); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, t)
}

func (h *Table) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, t)
}

func (h *Table) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateTable
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	if req.Number != nil {
		t.Number = *req.Number
	}
	if req.Name != nil {
		t.Name = req.Name
	}
	if req.Seats != nil {
		t.Seats = *req.Seats
	}
	if req.Status != nil {
		t.Status = *req.Status
	}

	if err := h.svc.Update(r.Context(), t); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, t)
}

func (h *Table) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.SetTableStatus
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.SetStatus(r.Context(), id, req.Status); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Table) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
