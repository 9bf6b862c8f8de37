package mockapi

import (
	"net/http"

	"github.com/slimeyayush/altair-frontend/pkg/httputil"
)

// ListProducts handles GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Products())
}

// GetProduct handles GET /api/products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, pathParam(r, "id"))
	if !ok {
		return
	}
	p, err := h.store.Product(id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// SearchProducts handles GET /api/products/search?q=
func (h *Handler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Search(r.URL.Query().Get("q")))
}

// ProductsByCategory handles GET /api/products/category/{category}
func (h *Handler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.ByCategory(pathParam(r, "category")))
}
