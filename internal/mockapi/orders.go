package mockapi

import (
	"log/slog"
	"net/http"

	"github.com/slimeyayush/altair-frontend/internal/domain"
	"github.com/slimeyayush/altair-frontend/pkg/httputil"
	"github.com/slimeyayush/altair-frontend/pkg/logger"
	"github.com/slimeyayush/altair-frontend/pkg/middleware"
)

type checkoutItem struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gte=1"`
}

type checkoutRequest struct {
	CustomerEmail   string         `json:"customerEmail" validate:"required,email"`
	ShippingAddress string         `json:"shippingAddress" validate:"max=500"`
	Items           []checkoutItem `json:"items" validate:"required,min=1,dive"`
}

// Checkout handles POST /api/orders/checkout. Guests may check out; a member
// token links the order to the member.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decode(w, r, &req) {
		return
	}

	in := domain.CheckoutRequest{
		CustomerEmail:   req.CustomerEmail,
		ShippingAddress: req.ShippingAddress,
		Items:           make([]domain.CheckoutItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, domain.CheckoutItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	var uid string
	if middleware.RoleFromContext(r.Context()) == middleware.RoleMember {
		uid = middleware.SubjectFromContext(r.Context())
	}

	order, err := h.store.Checkout(uid, in)
	if err != nil {
		h.metrics.observeStock("checkout", err)
		h.fail(w, r, err)
		return
	}
	h.metrics.orderEvent("placed")

	logger.FromContext(r.Context()).InfoContext(r.Context(), "order placed",
		slog.Int64("order_id", order.ID),
		slog.Bool("guest", uid == ""),
		slog.Float64("total", order.TotalAmount),
	)
	httputil.WriteJSON(w, http.StatusCreated, order)
}

// MyOrders handles GET /api/orders/my-orders
func (h *Handler) MyOrders(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.store.MemberOrders(middleware.SubjectFromContext(r.Context())))
}
