package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/djcafe/cafe/internal/api/request"
	"github.com/djcafe/cafe/internal/api/response"
	"github.com/djcafe/cafe/internal/core"
	"github.com/djcafe/cafe/internal/model"
)

type Product struct {
	svc *core.ProductService
}

func NewProduct(svc *core.ProductService) *Product {
	return &Product{svc: svc}
}

func (h *Product) List(w http.ResponseWriter, r *http.Request) {
	filter, err := request.ParseProductFilter(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, hasMore, err := h.svc.List(r.Context(), filter)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	var nextCursor string
	if hasMore && len(products) > 0 {
		nextCursor = products[len(products)-1].ID
	}
	if products == nil {
		products = []model.Product{}
	}
	response.WritePaginated(w, http.StatusOK, products, nextCursor, hasMore)
}

func (h *Product) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateProduct
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := &model.Product{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		BasePrice:   req.BasePrice,
		Price:       req.BasePrice,
		MinPrice:    req.MinPrice,
		MaxPrice:    req.MaxPrice,
		Available:   true,
		SortOrder:   req.SortOrder,
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Available != nil {
		p.Available = *req.Available
	}

	if err := h.svc.Create(r.Context(), p); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, p)
}

func (h *Product) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, p)
}

func (h *Product) Update(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req request.UpdateProduct
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.ImageURL != nil {
		p.ImageURL = req.ImageURL
	}
	if req.BasePrice != nil {
		p.BasePrice = *req.BasePrice
	}
	if req.Available != nil {
		p.Available = *req.Available
	}
	if req.SortOrder != nil {
		p.SortOrder = *req.SortOrder
	}

	if err := h.svc.Update(r.Context(), p); err != nil {
		response.WriteServiceError(w, r, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, p)
}

func (h *Product) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *Product) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		response.WriteServiceError(w, r, err)
		return
	}
	if categories == nil {
		categories = []model.CategoryCount{}
	}
	response.WriteJSON(w, http.StatusOK, categories)
}
