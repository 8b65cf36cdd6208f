package handlers

import (
	"net/http"
	"strconv"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"

	"github.com/gorilla/mux"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := models.ProductFilter{Category: r.URL.Query().Get("category")}
	if v := r.URL.Query().Get("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			WriteErrorResponse(w, models.ErrBadRequest)
			return
		}
		filter.InStockOnly = inStock
	}
	prods, err := h.ps.ListProducts(r.Context(), filter)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prods)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.ps.Categories(r.Context())
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	prod, err := h.ps.GetProduct(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prod)
}

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	prods, err := h.ps.ListProducts(r.Context(), models.ProductFilter{})
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prods)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var prod entities.Product
	if err := decodeBody(r, &prod); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	created, err := h.ps.CreateProduct(r.Context(), prod)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var prod entities.Product
	if err := decodeBody(r, &prod); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	prod.Id = mux.Vars(r)["id"]
	updated, err := h.ps.UpdateProduct(r.Context(), prod)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.ps.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
