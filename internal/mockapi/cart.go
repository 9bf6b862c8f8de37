package mockapi

import (
	"net/http"

	"github.com/slimeyayush/altair-frontend/pkg/httputil"
	"github.com/slimeyayush/altair-frontend/pkg/middleware"
)

type addItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

type updateItemRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// GetCart handles GET /api/cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	uid := middleware.SubjectFromContext(r.Context())
	httputil.WriteJSON(w, http.StatusOK, h.store.Cart(uid))
}

// AddToCart handles POST /api/cart/add
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decode(w, r, &req) {
		return
	}
	cart, err := h.store.AddToCart(middleware.SubjectFromContext(r.Context()), req.ProductID)
	if err != nil {
		h.metrics.observeStock("cart_add", err)
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cart)
}

// UpdateCartItem handles PUT /api/cart/update/{productId}
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, pathParam(r, "productId"))
	if !ok {
		return
	}
	var req updateItemRequest
	if !decode(w, r, &req) {
		return
	}
	cart, err := h.store.UpdateCartItem(middleware.SubjectFromContext(r.Context()), productID, req.Delta)
	if err != nil {
		h.metrics.observeStock("cart_update", err)
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cart)
}

// RemoveCartItem handles DELETE /api/cart/remove/{productId}
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, pathParam(r, "productId"))
	if !ok {
		return
	}
	cart := h.store.RemoveCartItem(middleware.SubjectFromContext(r.Context()), productID)
	httputil.WriteJSON(w, http.StatusOK, cart)
}

// ClearCart handles DELETE /api/cart/clear
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCart(middleware.SubjectFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}
