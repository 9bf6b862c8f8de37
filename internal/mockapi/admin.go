package mockapi

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	apperrors "github.com/slimeyayush/altair-frontend/pkg/errors"
	"github.com/slimeyayush/altair-frontend/pkg/httputil"
	"github.com/slimeyayush/altair-frontend/pkg/logger"
	"github.com/slimeyayush/altair-frontend/pkg/middleware"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

type stockRequest struct {
	StockQuantity *int `json:"stockQuantity" validate:"required,gte=0"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	admin, err := h.store.VerifyAdmin(req.Username, req.Password)
	if err != nil {
		logger.FromContext(r.Context()).WarnContext(r.Context(), "admin login rejected",
			slog.String("username", req.Username),
		)
		h.fail(w, r, err)
		return
	}

	token, err := h.tokens.Issue(admin.Username)
	if err != nil {
		h.fail(w, r, apperrors.Internal(err))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, loginResponse{Token: token})
}

// AdminOrders handles GET /api/admin/orders
func (h *Handler) AdminOrders(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Orders())
}

// UpdateOrderStatus handles PUT /api/admin/orders/{id}/status
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, pathParam(r, "id"))
	if !ok {
		return
	}
	var req statusRequest
	if !decode(w, r, &req) {
		return
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if !domain.IsValidStatus(status) {
		h.fail(w, r, apperrors.InvalidInput("unknown order status "+req.Status))
		return
	}
	h.orderAction(w, r, id, strings.ToLower(status), func(id int64) error {
		return h.store.SetOrderStatus(id, domain.OrderStatus(status))
	})
}

// CancelOrder handles POST /api/admin/orders/{id}/cancel
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, pathParam(r, "id"))
	if !ok {
		return
	}
	h.orderAction(w, r, id, "cancelled", h.store.CancelOrder)
}

// MarkPaid handles POST /api/admin/orders/{id}/mark-paid
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, pathParam(r, "id"))
	if !ok {
		return
	}
	h.orderAction(w, r, id, "paid", h.store.MarkPaid)
}

func (h *Handler) orderAction(w http.ResponseWriter, r *http.Request, id int64, event string, action func(int64) error) {
	if err := action(id); err != nil {
		h.metrics.observeStock("order_"+event, err)
		h.fail(w, r, err)
		return
	}
	h.metrics.orderEvent(event)
	logger.FromContext(r.Context()).InfoContext(r.Context(), "order updated",
		slog.Int64("order_id", id),
		slog.String("event", event),
		slog.String("admin", middleware.SubjectFromContext(r.Context())),
	)
	w.WriteHeader(http.StatusNoContent)
}

// Inventory handles GET /api/admin/inventory
func (h *Handler) Inventory(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Inventory())
}

// UpdateStock handles PUT /api/admin/inventory/{id}
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, pathParam(r, "id"))
	if !ok {
		return
	}
	var req stockRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.SetStock(id, *req.StockQuantity); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleVisibility handles PUT /api/admin/inventory/{id}/toggle-visibility
func (h *Handler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, pathParam(r, "id"))
	if !ok {
		return
	}
	if err := h.store.ToggleVisibility(id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decodeProduct(w http.ResponseWriter, r *http.Request) (domain.ProductInput, bool) {
	var in domain.ProductInput
	if !decode(w, r, &in) {
		return in, false
	}
	if !domain.IsValidCategory(in.Category) {
		h.fail(w, r, apperrors.InvalidInput("unknown category "+in.Category))
		return in, false
	}
	return in, true
}

// CreateProduct handles POST /api/admin/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	p := h.store.CreateProduct(in)
	logger.FromContext(r.Context()).InfoContext(r.Context(), "product created",
		slog.Int64("product_id", p.ID),
		slog.String("name", p.Name),
	)
	httputil.WriteJSON(w, http.StatusCreated, p)
}

// UpdateProduct handles PUT /api/admin/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, pathParam(r, "id"))
	if !ok {
		return
	}
	in, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	p, err := h.store.UpdateProduct(id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// Admins handles GET /api/admin/admins
func (h *Handler) Admins(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.Admins())
}

// RegisterAdmin handles POST /api/admin/register-admin
func (h *Handler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	admin, err := h.store.AddAdmin(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	logger.FromContext(r.Context()).InfoContext(r.Context(), "admin registered",
		slog.String("username", admin.Username),
		slog.String("by", middleware.SubjectFromContext(r.Context())),
	)
	httputil.WriteJSON(w, http.StatusCreated, admin)
}

// DeleteAdmin handles DELETE /api/admin/admins/{id}
func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, pathParam(r, "id"))
	if !ok {
		return
	}
	if err := h.store.DeleteAdmin(id, middleware.SubjectFromContext(r.Context())); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
