package handlers

import (
	"net/http"

	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/models"

	"github.com/gorilla/mux"
)

// GetCart never creates a session; without a cookie the cart is empty.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cartSessionId, ok := sessionCookie(r, cartCookie)
	if !ok {
		writeJSON(w, http.StatusOK, entities.NewCartState(nil))
		return
	}
	writeJSON(w, http.StatusOK, h.cs.GetCart(r.Context(), cartSessionId))
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req models.CartItemRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	if req.ProductId == "" {
		WriteErrorResponse(w, models.ErrBadRequest)
		return
	}

	cartSessionId, ok := sessionCookie(r, cartCookie)
	if !ok {
		cartSessionId = h.cs.CreateCartSession()
	}
	state, err := h.cs.AddCartItem(r.Context(), cartSessionId, req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	setSessionCookie(w, cartCookie, cartSessionId, h.cartTTL)
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req models.QuantityRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	cartSessionId, ok := sessionCookie(r, cartCookie)
	if !ok {
		writeJSON(w, http.StatusOK, entities.NewCartState(nil))
		return
	}
	productId := mux.Vars(r)["productId"]
	writeJSON(w, http.StatusOK, h.cs.UpdateQuantity(r.Context(), cartSessionId, productId, req.Quantity))
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cartSessionId, ok := sessionCookie(r, cartCookie)
	if !ok {
		writeJSON(w, http.StatusOK, entities.NewCartState(nil))
		return
	}
	productId := mux.Vars(r)["productId"]
	writeJSON(w, http.StatusOK, h.cs.RemoveCartItem(r.Context(), cartSessionId, productId))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cartSessionId, ok := sessionCookie(r, cartCookie)
	if !ok {
		writeJSON(w, http.StatusOK, entities.NewCartState(nil))
		return
	}
	writeJSON(w, http.StatusOK, h.cs.ClearCart(r.Context(), cartSessionId))
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := decodeBody(r, &req); err != nil {
		WriteErrorResponse(w, err)
		return
	}
	cartSessionId, ok := sessionCookie(r, cartCookie)
	if !ok {
		WriteErrorResponse(w, models.ErrBadRequest)
		return
	}
	order, err := h.ors.Checkout(r.Context(), cartSessionId, req)
	if err != nil {
		WriteErrorResponse(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}
